/*
store.go - Persistence interfaces for booking, cash, and scoring records

PURPOSE:
  Defines the contract between the engines and the storage collaborator.
  The engines never touch storage directly; the service layers fetch a
  snapshot through these interfaces, run the pure computations, and write
  the results back.

APPEND-ONLY CONTRACTS:
  - ScoreStore has Append and reads only. No update, no delete. Corrections
    are compensating entries of opposite sign.
  - ApaStore allows Delete but no update: an entry is either present with
    its original amount or gone.
  - BookingStore.Complete attaches the reconciliation and flips the status
    in one write; implementations must reject a second completion so the
    audit record is never overwritten.

CONSISTENCY:
  Last-write-wins beyond the completion guard. No optimistic locking; two
  captains editing simultaneously resolve at the storage layer.

IMPLEMENTATIONS:
  - charter/store/memory.go: In-memory, for tests and development
  - store/sqlite/sqlite.go:  Production SQLite

SEE ALSO:
  - booking/service.go, cash/service.go, scoring/service.go: Consumers
*/
package charter

import "context"

// =============================================================================
// BOOKING STORE
// =============================================================================

type BookingStore interface {
	CreateBooking(ctx context.Context, b Booking) error

	// GetBooking returns ErrBookingNotFound when the id is unknown.
	GetBooking(ctx context.Context, id BookingID) (Booking, error)

	// ListSeasonBookings returns every booking in the season, all statuses,
	// ordered by arrival. Callers filter cancelled bookings themselves.
	ListSeasonBookings(ctx context.Context, seasonID SeasonID) ([]Booking, error)

	// UpdateBooking rewrites dates, guest count, notes, tip, and status.
	// It must refuse to touch the reconciliation record.
	UpdateBooking(ctx context.Context, b Booking) error

	// SetStatus flips only the status column (cancel, archive, refresh).
	SetStatus(ctx context.Context, id BookingID, status Status) error

	// Complete attaches the reconciliation and sets status to completed in
	// one write. Returns ErrAlreadyReconciled if a reconciliation exists.
	Complete(ctx context.Context, id BookingID, rec Reconciliation) error

	// DeleteBooking removes the record. The lifecycle guard (upcoming only)
	// is enforced by the service before this is called.
	DeleteBooking(ctx context.Context, id BookingID) error
}

// =============================================================================
// APA STORE - Advance-payment entries (no update; delete only)
// =============================================================================

type ApaStore interface {
	AddApaEntry(ctx context.Context, e ApaEntry) error
	DeleteApaEntry(ctx context.Context, id EntryID) error

	// ListApaEntries returns a booking's entries ordered by creation time.
	ListApaEntries(ctx context.Context, bookingID BookingID) ([]ApaEntry, error)
}

// =============================================================================
// EXPENSE STORE - Read-mostly; owned by the expense collaborator
// =============================================================================

type ExpenseStore interface {
	AddExpense(ctx context.Context, e Expense) error
	ListExpenses(ctx context.Context, bookingID BookingID) ([]Expense, error)
}

// =============================================================================
// SCORE STORE - Append-only
// =============================================================================

type ScoreStore interface {
	// AppendScoreEntry is the ONLY write. No update or delete exists.
	AppendScoreEntry(ctx context.Context, e ScoreEntry) error

	ListScoreEntries(ctx context.Context, bookingID BookingID) ([]ScoreEntry, error)

	// ListSeasonScoreEntries returns every entry on every booking of the
	// season, for season-wide aggregation.
	ListSeasonScoreEntries(ctx context.Context, seasonID SeasonID) ([]ScoreEntry, error)
}

// =============================================================================
// CREW STORE
// =============================================================================

type CrewStore interface {
	AddCrewMember(ctx context.Context, m CrewMember) error
	GetCrewMember(ctx context.Context, id UserID) (CrewMember, error)

	// ListCrew returns the roster in insertion order. Order matters: the
	// scoring tie-break resolves by roster position.
	ListCrew(ctx context.Context) ([]CrewMember, error)
}

// Store is the full persistence surface; both the memory and SQLite
// implementations satisfy it.
type Store interface {
	BookingStore
	ApaStore
	ExpenseStore
	ScoreStore
	CrewStore
}
