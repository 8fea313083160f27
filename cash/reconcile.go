/*
Package cash implements the APA ledger and the checkout reconciliation engine.

PURPOSE:
  APA (Advance Provisioning Allowance) is cash advanced by charter guests and
  held against expenses. At checkout the crew counts the remaining cash and
  reconciles it against what the ledger says should be left:

    expected  = APA total - expense total
    difference = actual counted - expected
    balanced   = |difference| < 0.01

  The 0.01 epsilon is a deliberate tolerance absorbing rounding from currency
  arithmetic upstream (card-terminal exports, float JSON payloads).

TOTALS ARE NEVER CACHED:
  Both totals are summed from the full entry set at calculation time, so any
  sequence of adds and deletes leaves the booking's APA total exactly equal
  to the sum of its surviving entries.

AT-MOST-ONCE:
  A booking is reconciled at most once. Saving again must fail rather than
  overwrite: the record is an audit artifact.

SEE ALSO:
  - service.go: Store orchestration and the completion transition
  - booking/status.go: CanComplete guard consulted before saving
*/
package cash

import (
	"github.com/warp/charter-engine/charter"
)

// balanceEpsilon is the absolute tolerance under which a count is balanced.
var balanceEpsilon = charter.NewMoney(0.01)

// =============================================================================
// TOTALS - Always recomputed from the full entry set
// =============================================================================

// ApaTotal sums a booking's APA entry amounts. Entries are signed: deposits
// positive, guest refunds or corrections negative.
func ApaTotal(entries []charter.ApaEntry) charter.Money {
	total := charter.ZeroMoney()
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}

// ExpenseTotal sums a booking's expense amounts.
func ExpenseTotal(expenses []charter.Expense) charter.Money {
	total := charter.ZeroMoney()
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// =============================================================================
// RECONCILIATION CALCULATION
// =============================================================================

// Result is the pure output of a reconciliation calculation.
type Result struct {
	ExpectedCash charter.Money
	Difference   charter.Money // actual - expected, signed
	IsBalanced   bool
}

// Calculate compares expected against counted cash.
func Calculate(apaTotal, expenseTotal, actualCash charter.Money) Result {
	expected := apaTotal.Sub(expenseTotal)
	diff := actualCash.Sub(expected)
	return Result{
		ExpectedCash: expected,
		Difference:   diff,
		IsBalanced:   diff.Abs().LessThan(balanceEpsilon),
	}
}
