// Package store provides the in-memory charter.Store implementation,
// used by tests and in-memory development servers. It mirrors the SQLite
// store's behavior, including the at-most-once completion guard.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/charter-engine/charter"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	bookings map[charter.BookingID]charter.Booking
	apa      map[charter.BookingID][]charter.ApaEntry
	expenses map[charter.BookingID][]charter.Expense
	scores   map[charter.BookingID][]charter.ScoreEntry
	crew     []charter.CrewMember
}

func NewMemory() *Memory {
	return &Memory{
		bookings: make(map[charter.BookingID]charter.Booking),
		apa:      make(map[charter.BookingID][]charter.ApaEntry),
		expenses: make(map[charter.BookingID][]charter.Expense),
		scores:   make(map[charter.BookingID][]charter.ScoreEntry),
	}
}

var _ charter.Store = (*Memory)(nil)

// =============================================================================
// BOOKINGS
// =============================================================================

func (m *Memory) CreateBooking(_ context.Context, b charter.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = b
	return nil
}

func (m *Memory) GetBooking(_ context.Context, id charter.BookingID) (charter.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok {
		return charter.Booking{}, charter.ErrBookingNotFound
	}
	return b, nil
}

func (m *Memory) ListSeasonBookings(_ context.Context, seasonID charter.SeasonID) ([]charter.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []charter.Booking
	for _, b := range m.bookings {
		if b.SeasonID == seasonID {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Arrival.Equal(result[j].Arrival) {
			return result[i].Arrival.Before(result[j].Arrival)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) UpdateBooking(_ context.Context, b charter.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.bookings[b.ID]
	if !ok {
		return charter.ErrBookingNotFound
	}
	// The reconciliation record is immutable through this path.
	b.Reconciliation = existing.Reconciliation
	m.bookings[b.ID] = b
	return nil
}

func (m *Memory) SetStatus(_ context.Context, id charter.BookingID, status charter.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return charter.ErrBookingNotFound
	}
	b.Status = status
	m.bookings[id] = b
	return nil
}

func (m *Memory) Complete(_ context.Context, id charter.BookingID, rec charter.Reconciliation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return charter.ErrBookingNotFound
	}
	if b.Reconciliation != nil {
		return charter.ErrAlreadyReconciled
	}
	b.Reconciliation = &rec
	b.Status = charter.StatusCompleted
	m.bookings[id] = b
	return nil
}

func (m *Memory) DeleteBooking(_ context.Context, id charter.BookingID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return charter.ErrBookingNotFound
	}
	delete(m.bookings, id)
	delete(m.apa, id)
	delete(m.expenses, id)
	delete(m.scores, id)
	return nil
}

// =============================================================================
// APA ENTRIES
// =============================================================================

func (m *Memory) AddApaEntry(_ context.Context, e charter.ApaEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apa[e.BookingID] = append(m.apa[e.BookingID], e)
	return nil
}

func (m *Memory) DeleteApaEntry(_ context.Context, id charter.EntryID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for bookingID, entries := range m.apa {
		for i, e := range entries {
			if e.ID == id {
				m.apa[bookingID] = append(entries[:i:i], entries[i+1:]...)
				return nil
			}
		}
	}
	return charter.ErrEntryNotFound
}

func (m *Memory) ListApaEntries(_ context.Context, bookingID charter.BookingID) ([]charter.ApaEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]charter.ApaEntry, len(m.apa[bookingID]))
	copy(result, m.apa[bookingID])
	return result, nil
}

// =============================================================================
// EXPENSES
// =============================================================================

func (m *Memory) AddExpense(_ context.Context, e charter.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[e.BookingID] = append(m.expenses[e.BookingID], e)
	return nil
}

func (m *Memory) ListExpenses(_ context.Context, bookingID charter.BookingID) ([]charter.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]charter.Expense, len(m.expenses[bookingID]))
	copy(result, m.expenses[bookingID])
	return result, nil
}

// =============================================================================
// SCORE ENTRIES - Append-only
// =============================================================================

func (m *Memory) AppendScoreEntry(_ context.Context, e charter.ScoreEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[e.BookingID] = append(m.scores[e.BookingID], e)
	return nil
}

func (m *Memory) ListScoreEntries(_ context.Context, bookingID charter.BookingID) ([]charter.ScoreEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]charter.ScoreEntry, len(m.scores[bookingID]))
	copy(result, m.scores[bookingID])
	return result, nil
}

func (m *Memory) ListSeasonScoreEntries(_ context.Context, seasonID charter.SeasonID) ([]charter.ScoreEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []charter.ScoreEntry
	for bookingID, entries := range m.scores {
		b, ok := m.bookings[bookingID]
		if !ok || b.SeasonID != seasonID {
			continue
		}
		result = append(result, entries...)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// =============================================================================
// CREW
// =============================================================================

func (m *Memory) AddCrewMember(_ context.Context, member charter.CrewMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.crew {
		if existing.ID == member.ID {
			m.crew[i] = member
			return nil
		}
	}
	m.crew = append(m.crew, member)
	return nil
}

func (m *Memory) GetCrewMember(_ context.Context, id charter.UserID) (charter.CrewMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, member := range m.crew {
		if member.ID == id {
			return member, nil
		}
	}
	return charter.CrewMember{}, charter.ErrCrewNotFound
}

func (m *Memory) ListCrew(_ context.Context) ([]charter.CrewMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]charter.CrewMember, len(m.crew))
	copy(result, m.crew)
	return result, nil
}
