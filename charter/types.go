/*
Package charter provides the core domain model for the charter booking engine.

PURPOSE:
  This package contains the shared types every engine module computes over:
  bookings, APA entries, expenses, score entries, and the crew roster. The
  engines themselves live in the booking/, cash/, and scoring/ packages; they
  take snapshots of these records as plain arguments and return derived
  results, never reading ambient state.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A currency amount backed by decimal.Decimal
  - Status: The booking lifecycle state (derived or frozen)
  - Booking/ApaEntry/Expense/ScoreEntry: The persisted record shapes
  - Reconciliation: The immutable checkout record attached on completion

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for all cash amounts, never float64
  2. Snapshots in, results out: records are plain data with no behavior
     beyond arithmetic helpers
  3. Append-only scoring: ScoreEntry has no update or delete anywhere;
     corrections are compensating entries of opposite sign

SEE ALSO:
  - time.go: Date, the day-granularity time point for booking ranges
  - errors.go: Input/policy error taxonomy
  - store.go: Persistence interfaces implemented by charter/store and store/sqlite
*/
package charter

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Currency amount backed by decimal
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func NewMoneyFromInt(value int) Money {
	return Money{Value: decimal.NewFromInt(int64(value))}
}

func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Value: d}, nil
}

func ZeroMoney() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money        { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money        { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Neg() Money               { return Money{Value: m.Value.Neg()} }
func (m Money) Abs() Money               { return Money{Value: m.Value.Abs()} }
func (m Money) IsZero() bool             { return m.Value.IsZero() }
func (m Money) IsNegative() bool         { return m.Value.IsNegative() }
func (m Money) Equal(o Money) bool       { return m.Value.Equal(o.Value) }
func (m Money) LessThan(o Money) bool    { return m.Value.LessThan(o.Value) }
func (m Money) GreaterThan(o Money) bool { return m.Value.GreaterThan(o.Value) }
func (m Money) Float64() float64         { f, _ := m.Value.Float64(); return f }
func (m Money) String() string           { return m.Value.StringFixed(2) }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type BookingID string
type SeasonID string
type UserID string
type EntryID string

// =============================================================================
// STATUS - Booking lifecycle state
// =============================================================================

// Status is either derived from `now` relative to [arrival, departure], or
// frozen by an explicit terminal action. A cancelled/completed/archived
// booking is never re-derived from its dates.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status freezes the booking: date-based
// derivation no longer applies once a booking reaches a terminal status.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusArchived, StatusCancelled:
		return true
	}
	return false
}

// Derived reports whether the status is recomputed from dates on read.
func (s Status) Derived() bool { return !s.Terminal() }

// =============================================================================
// RECORDS - Persisted shapes consumed from the storage collaborator
// =============================================================================

// Booking is a charter booking within a season. ApaTotal is recomputed from
// the booking's APA entries on every read; it is never a cached source of truth.
type Booking struct {
	ID         BookingID
	SeasonID   SeasonID
	Arrival    Date
	Departure  Date
	GuestCount int
	Status     Status
	Notes      string
	Tip        *Money

	// Set exactly once, when the booking is completed.
	Reconciliation *Reconciliation

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApaEntry is a signed advance-payment movement on a booking. Entries are
// immutable once created; the only permitted mutation is deletion.
type ApaEntry struct {
	ID        EntryID
	BookingID BookingID
	Amount    Money
	Note      string
	CreatedBy UserID
	CreatedAt time.Time
}

// Expense is a cash outflow recorded against a booking. Read-only input to
// reconciliation; owned by the expense collaborator.
type Expense struct {
	ID        EntryID
	BookingID BookingID
	Amount    Money
	Category  string
	Merchant  string
	CreatedAt time.Time
}

// Reconciliation is the end-of-booking cash count. Created exactly once at
// completion, immutable thereafter.
type Reconciliation struct {
	BookingID    BookingID
	ExpectedCash Money // APA total - expense total at reconciliation time
	ActualCash   Money // physically counted
	Difference   Money // actual - expected, signed
	IsBalanced   bool  // |difference| < 0.01
	ReconciledBy UserID
	ReconciledAt time.Time
}

// ScoreEntry is an append-only point award in the crew scoring game.
type ScoreEntry struct {
	ID        EntryID
	BookingID BookingID
	ToUser    UserID
	Points    int // in {-3, -2, -1, 1, 2, 3}
	Reason    string
	FromUser  UserID // must hold captain privilege (enforced by the caller)
	CreatedAt time.Time
}

// CrewMember is a roster entry. Roster order is significant: scoring
// tie-breaks resolve by first-encountered roster position.
type CrewMember struct {
	ID      UserID
	Name    string
	Captain bool
}
