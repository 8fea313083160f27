/*
service.go - APA entry lifecycle and the reconcile-and-complete transition

PURPOSE:
  Orchestrates the cash stores around the pure calculation:

  Reconcile flow:
    1. Fetch the booking; CanComplete guard (not already reconciled,
       active or past departure)
    2. Sum APA entries and expenses fresh from the stores
    3. Calculate expected / difference / balanced
    4. Complete: attach the record and flip status to completed in one
       store write; a concurrent second save fails with ErrAlreadyReconciled

  The completion transition is not idempotent and is never retried here;
  a failed save leaves the booking untouched for the caller to re-invoke.

SEE ALSO:
  - reconcile.go: The pure calculation
  - charter/store.go: Complete's at-most-once contract
*/
package cash

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/charter-engine/booking"
	"github.com/warp/charter-engine/charter"
)

// Service orchestrates APA entries, expenses, and reconciliation.
type Service struct {
	Bookings charter.BookingStore
	Apa      charter.ApaStore
	Expenses charter.ExpenseStore
	Clock    func() charter.Date
}

func NewService(store charter.Store) *Service {
	return &Service{Bookings: store, Apa: store, Expenses: store, Clock: charter.Today}
}

func (s *Service) now() charter.Date {
	if s.Clock != nil {
		return s.Clock()
	}
	return charter.Today()
}

// =============================================================================
// APA ENTRIES
// =============================================================================

// AddEntry records a signed APA movement on a booking. Zero amounts are
// rejected; an entry must move the total.
func (s *Service) AddEntry(ctx context.Context, bookingID charter.BookingID, amount charter.Money, note string, createdBy charter.UserID) (charter.ApaEntry, error) {
	if bookingID == "" {
		return charter.ApaEntry{}, charter.ErrMissingBooking
	}
	if amount.IsZero() {
		return charter.ApaEntry{}, charter.ErrZeroAmount
	}
	if _, err := s.Bookings.GetBooking(ctx, bookingID); err != nil {
		return charter.ApaEntry{}, err
	}

	e := charter.ApaEntry{
		ID:        charter.EntryID(fmt.Sprintf("apa-%d", time.Now().UnixNano())),
		BookingID: bookingID,
		Amount:    amount,
		Note:      note,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
	if err := s.Apa.AddApaEntry(ctx, e); err != nil {
		return charter.ApaEntry{}, err
	}
	return e, nil
}

// DeleteEntry removes an APA entry. Entries are otherwise immutable.
func (s *Service) DeleteEntry(ctx context.Context, id charter.EntryID) error {
	return s.Apa.DeleteApaEntry(ctx, id)
}

// Total returns the booking's current APA total, summed from its entries.
func (s *Service) Total(ctx context.Context, bookingID charter.BookingID) (charter.Money, error) {
	entries, err := s.Apa.ListApaEntries(ctx, bookingID)
	if err != nil {
		return charter.Money{}, err
	}
	return ApaTotal(entries), nil
}

// =============================================================================
// EXPENSES (collaborator-owned; the engine only records and sums)
// =============================================================================

// AddExpense records an expense against a booking on behalf of the expense
// collaborator.
func (s *Service) AddExpense(ctx context.Context, bookingID charter.BookingID, amount charter.Money, category, merchant string) (charter.Expense, error) {
	if bookingID == "" {
		return charter.Expense{}, charter.ErrMissingBooking
	}
	if amount.IsZero() {
		return charter.Expense{}, charter.ErrZeroAmount
	}
	if _, err := s.Bookings.GetBooking(ctx, bookingID); err != nil {
		return charter.Expense{}, err
	}

	e := charter.Expense{
		ID:        charter.EntryID(fmt.Sprintf("exp-%d", time.Now().UnixNano())),
		BookingID: bookingID,
		Amount:    amount,
		Category:  category,
		Merchant:  merchant,
		CreatedAt: time.Now(),
	}
	if err := s.Expenses.AddExpense(ctx, e); err != nil {
		return charter.Expense{}, err
	}
	return e, nil
}

// =============================================================================
// RECONCILE AND COMPLETE
// =============================================================================

// Preview computes the reconciliation figures for a booking without saving,
// for the checkout screen. Totals are summed fresh from the stores.
func (s *Service) Preview(ctx context.Context, bookingID charter.BookingID, actualCash charter.Money) (Result, error) {
	entries, err := s.Apa.ListApaEntries(ctx, bookingID)
	if err != nil {
		return Result{}, err
	}
	expenses, err := s.Expenses.ListExpenses(ctx, bookingID)
	if err != nil {
		return Result{}, err
	}
	return Calculate(ApaTotal(entries), ExpenseTotal(expenses), actualCash), nil
}

// Reconcile computes the checkout figures and completes the booking,
// attaching the reconciliation record atomically with the status change.
// A booking is reconciled at most once; repeats fail with ErrAlreadyReconciled.
func (s *Service) Reconcile(ctx context.Context, bookingID charter.BookingID, actualCash charter.Money, reconciler charter.UserID) (charter.Reconciliation, error) {
	b, err := s.Bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return charter.Reconciliation{}, err
	}
	if err := booking.CanComplete(b, s.now()); err != nil {
		return charter.Reconciliation{}, err
	}

	result, err := s.Preview(ctx, bookingID, actualCash)
	if err != nil {
		return charter.Reconciliation{}, err
	}

	rec := charter.Reconciliation{
		BookingID:    bookingID,
		ExpectedCash: result.ExpectedCash,
		ActualCash:   actualCash,
		Difference:   result.Difference,
		IsBalanced:   result.IsBalanced,
		ReconciledBy: reconciler,
		ReconciledAt: time.Now(),
	}

	// The store refuses a second completion, which closes the race between
	// two captains checking out the same booking.
	if err := s.Bookings.Complete(ctx, bookingID, rec); err != nil {
		return charter.Reconciliation{}, err
	}
	return rec, nil
}
