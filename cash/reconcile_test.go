package cash_test

import (
	"testing"

	"github.com/warp/charter-engine/cash"
	"github.com/warp/charter-engine/charter"
)

func money(f float64) charter.Money { return charter.NewMoney(f) }

// =============================================================================
// TOTALS
// =============================================================================

func TestApaTotal_SignedEntries(t *testing.T) {
	// Deposits positive, refunds negative; the total is their plain sum.
	entries := []charter.ApaEntry{
		{ID: "a1", Amount: money(1000)},
		{ID: "a2", Amount: money(500)},
		{ID: "a3", Amount: money(-200)},
	}

	total := cash.ApaTotal(entries)
	if !total.Equal(money(1300)) {
		t.Errorf("expected 1300.00, got %s", total)
	}
}

func TestApaTotal_Empty(t *testing.T) {
	if total := cash.ApaTotal(nil); !total.IsZero() {
		t.Errorf("empty ledger must total zero, got %s", total)
	}
}

func TestApaTotal_DeleteLeavesSurvivorsSum(t *testing.T) {
	// GIVEN: A ledger of three entries
	// WHEN: One is removed
	// THEN: The recomputed total equals the sum of the survivors exactly
	entries := []charter.ApaEntry{
		{ID: "a1", Amount: money(1000)},
		{ID: "a2", Amount: money(250.50)},
		{ID: "a3", Amount: money(-100.25)},
	}
	before := cash.ApaTotal(entries)

	survivors := []charter.ApaEntry{entries[0], entries[2]}
	after := cash.ApaTotal(survivors)

	if !before.Sub(after).Equal(money(250.50)) {
		t.Errorf("removing a 250.50 entry must lower the total by exactly that: %s -> %s", before, after)
	}
}

func TestExpenseTotal(t *testing.T) {
	expenses := []charter.Expense{
		{ID: "e1", Amount: money(120.40)},
		{ID: "e2", Amount: money(79.60)},
	}
	if total := cash.ExpenseTotal(expenses); !total.Equal(money(200)) {
		t.Errorf("expected 200.00, got %s", total)
	}
}

// =============================================================================
// CALCULATION
// =============================================================================

func TestCalculate_Balanced(t *testing.T) {
	// 1000 APA, 300 spent, 700 counted: exactly balanced.
	r := cash.Calculate(money(1000), money(300), money(700))

	if !r.ExpectedCash.Equal(money(700)) {
		t.Errorf("expected cash 700.00, got %s", r.ExpectedCash)
	}
	if !r.Difference.IsZero() {
		t.Errorf("difference must be zero, got %s", r.Difference)
	}
	if !r.IsBalanced {
		t.Error("exact count must be balanced")
	}
}

func TestCalculate_Surplus(t *testing.T) {
	// 100 more in the box than the ledger explains.
	r := cash.Calculate(money(1000), money(300), money(800))

	if !r.Difference.Equal(money(100)) {
		t.Errorf("expected difference +100.00, got %s", r.Difference)
	}
	if r.IsBalanced {
		t.Error("a 100 surplus is not balanced")
	}
}

func TestCalculate_Shortfall(t *testing.T) {
	r := cash.Calculate(money(1000), money(300), money(650))

	if !r.Difference.Equal(money(-50)) {
		t.Errorf("expected difference -50.00, got %s", r.Difference)
	}
	if r.IsBalanced {
		t.Error("a shortfall is not balanced")
	}
}

func TestCalculate_Epsilon(t *testing.T) {
	cases := []struct {
		name     string
		actual   charter.Money
		balanced bool
	}{
		{"half a cent over", money(700.005), true},
		{"half a cent short", money(699.995), true},
		{"exactly one cent over", money(700.01), false},
		{"exactly one cent short", money(699.99), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := cash.Calculate(money(1000), money(300), tc.actual)
			if r.IsBalanced != tc.balanced {
				t.Errorf("count %s: balanced=%v, want %v (diff %s)", tc.actual, r.IsBalanced, tc.balanced, r.Difference)
			}
		})
	}
}

func TestCalculate_NegativeExpected(t *testing.T) {
	// Overspent APA: expected goes negative and an empty cash box balances
	// only if it matches.
	r := cash.Calculate(money(300), money(450), money(0))

	if !r.ExpectedCash.Equal(money(-150)) {
		t.Errorf("expected -150.00, got %s", r.ExpectedCash)
	}
	if !r.Difference.Equal(money(150)) {
		t.Errorf("expected difference +150.00, got %s", r.Difference)
	}
	if r.IsBalanced {
		t.Error("overspend with empty box is not balanced")
	}
}

func TestCalculate_DecimalExact(t *testing.T) {
	// Classic float trap: 0.1 + 0.2 style cents must still reconcile to a
	// zero difference through the decimal pipeline.
	apa := money(0.10).Add(money(0.20))
	r := cash.Calculate(apa, money(0), money(0.30))

	if !r.Difference.IsZero() {
		t.Errorf("cent arithmetic drifted: %s", r.Difference)
	}
	if !r.IsBalanced {
		t.Error("0.10 + 0.20 counted as 0.30 must balance")
	}
}
