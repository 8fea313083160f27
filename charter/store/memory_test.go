package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/warp/charter-engine/charter"
	"github.com/warp/charter-engine/charter/store"
)

func seedBooking(t *testing.T, m *store.Memory, id string) charter.BookingID {
	t.Helper()
	b := charter.Booking{
		ID:        charter.BookingID(id),
		SeasonID:  "season-2026",
		Arrival:   charter.NewDate(2026, time.July, 10),
		Departure: charter.NewDate(2026, time.July, 17),
		Status:    charter.StatusUpcoming,
	}
	if err := m.CreateBooking(context.Background(), b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b.ID
}

func TestMemoryDeleteBooking_CascadesChildren(t *testing.T) {
	// GIVEN: An upcoming booking carrying cash and score rows
	// WHEN: It is hard-deleted
	// THEN: All of its child rows go with it, matching the SQLite cascade
	m := store.NewMemory()
	ctx := context.Background()
	id := seedBooking(t, m, "b1")

	if err := m.AddApaEntry(ctx, charter.ApaEntry{ID: "a1", BookingID: id, Amount: charter.NewMoney(500)}); err != nil {
		t.Fatalf("apa: %v", err)
	}
	if err := m.AddExpense(ctx, charter.Expense{ID: "e1", BookingID: id, Amount: charter.NewMoney(120)}); err != nil {
		t.Fatalf("expense: %v", err)
	}
	if err := m.AppendScoreEntry(ctx, charter.ScoreEntry{ID: "s1", BookingID: id, ToUser: "user2", Points: 2, FromUser: "captain1"}); err != nil {
		t.Fatalf("score: %v", err)
	}

	if err := m.DeleteBooking(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if entries, _ := m.ListApaEntries(ctx, id); len(entries) != 0 {
		t.Errorf("apa entries survived deletion: %d", len(entries))
	}
	if expenses, _ := m.ListExpenses(ctx, id); len(expenses) != 0 {
		t.Errorf("expenses survived deletion: %d", len(expenses))
	}
	if scores, _ := m.ListScoreEntries(ctx, id); len(scores) != 0 {
		t.Errorf("score entries survived deletion: %d", len(scores))
	}

	if _, err := m.GetBooking(ctx, id); !errors.Is(err, charter.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}
