package scoring_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/warp/charter-engine/charter"
	"github.com/warp/charter-engine/charter/store"
	"github.com/warp/charter-engine/scoring"
)

func newTestScoringService(t *testing.T, crewIDs ...string) (*scoring.Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()
	for _, id := range crewIDs {
		if err := mem.AddCrewMember(ctx, charter.CrewMember{ID: charter.UserID(id), Name: id}); err != nil {
			t.Fatalf("seed crew: %v", err)
		}
	}
	return scoring.NewService(mem), mem
}

func seedScoredBooking(t *testing.T, mem *store.Memory, id string) charter.BookingID {
	t.Helper()
	b := charter.Booking{
		ID:        charter.BookingID(id),
		SeasonID:  "season-2026",
		Arrival:   charter.NewDate(2026, time.July, 10),
		Departure: charter.NewDate(2026, time.July, 17),
		Status:    charter.StatusActive,
	}
	if err := mem.CreateBooking(context.Background(), b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b.ID
}

func TestAward_AppendsValidated(t *testing.T) {
	svc, mem := newTestScoringService(t, "user1", "user2")
	ctx := context.Background()
	id := seedScoredBooking(t, mem, "b1")

	e, err := svc.Award(ctx, id, "user2", 3, "saved the anchor", "captain1")
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if e.Points != 3 || e.ToUser != "user2" || e.FromUser != "captain1" {
		t.Errorf("entry fields wrong: %+v", e)
	}

	entries, err := svc.Entries(ctx, id)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}

func TestAward_Rejections(t *testing.T) {
	svc, mem := newTestScoringService(t, "user1")
	ctx := context.Background()
	id := seedScoredBooking(t, mem, "b1")

	if _, err := svc.Award(ctx, id, "user1", 0, "", "captain1"); !errors.Is(err, charter.ErrInvalidPoints) {
		t.Errorf("zero points must be rejected, got %v", err)
	}
	if _, err := svc.Award(ctx, "ghost", "user1", 2, "", "captain1"); !errors.Is(err, charter.ErrBookingNotFound) {
		t.Errorf("unknown booking must be rejected, got %v", err)
	}

	// Nothing appended by the failures.
	entries, _ := svc.Entries(ctx, id)
	if len(entries) != 0 {
		t.Errorf("rejected awards must not append, got %d entries", len(entries))
	}
}

func TestSeason_GroupsByBooking(t *testing.T) {
	// GIVEN: Awards across two bookings in one season
	// WHEN: Season standings are computed
	// THEN: Wins are counted per booking, points across the season
	svc, mem := newTestScoringService(t, "user2", "user3")
	ctx := context.Background()
	b1 := seedScoredBooking(t, mem, "b1")
	b2 := seedScoredBooking(t, mem, "b2")

	awards := []struct {
		booking charter.BookingID
		to      charter.UserID
		points  int
	}{
		{b1, "user2", 3},
		{b1, "user3", -1},
		{b2, "user2", 2},
		{b2, "user3", 1},
	}
	for _, a := range awards {
		if _, err := svc.Award(ctx, a.booking, a.to, a.points, "", "captain1"); err != nil {
			t.Fatalf("award: %v", err)
		}
	}

	stats, err := svc.Season(ctx, "season-2026")
	if err != nil {
		t.Fatalf("season: %v", err)
	}
	if stats.Members[0].Points != 5 || stats.Members[0].Wins != 2 {
		t.Errorf("user2 standings wrong: %+v", stats.Members[0])
	}
	if stats.TrophyHolder == nil || *stats.TrophyHolder != "user2" {
		t.Errorf("trophy holder wrong: %v", stats.TrophyHolder)
	}
}

func TestBookingLeaderboard_UsesRoster(t *testing.T) {
	svc, mem := newTestScoringService(t, "user1", "user2", "user3")
	ctx := context.Background()
	id := seedScoredBooking(t, mem, "b1")

	if _, err := svc.Award(ctx, id, "user3", 2, "", "captain1"); err != nil {
		t.Fatalf("award: %v", err)
	}

	rows, err := svc.BookingLeaderboard(ctx, id)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("every roster member must appear, got %d rows", len(rows))
	}
	if rows[0].UserID != "user3" || rows[0].Total != 2 {
		t.Errorf("leader wrong: %+v", rows[0])
	}
}
