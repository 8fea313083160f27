/*
service.go - Score entry recording and aggregate reads

PURPOSE:
  Wires the pure scoring computations to the stores. Award validates and
  appends; the reads fetch the full entry set and the roster, then hand
  both to the aggregation functions. Nothing is ever updated or deleted.

SEE ALSO:
  - scoring.go: ValidateEntry, Leaderboard, SeasonStats
*/
package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/charter-engine/charter"
)

// Service orchestrates score entries over the stores.
type Service struct {
	Scores   charter.ScoreStore
	Crew     charter.CrewStore
	Bookings charter.BookingStore
}

func NewService(store charter.Store) *Service {
	return &Service{Scores: store, Crew: store, Bookings: store}
}

// Award validates and appends a score entry. Caller authorization (captain
// privilege on fromUser) happens at the API layer; the engine only enforces
// the input domain.
func (s *Service) Award(ctx context.Context, bookingID charter.BookingID, toUser charter.UserID, points int, reason string, fromUser charter.UserID) (charter.ScoreEntry, error) {
	e := charter.ScoreEntry{
		ID:        charter.EntryID(fmt.Sprintf("score-%d", time.Now().UnixNano())),
		BookingID: bookingID,
		ToUser:    toUser,
		Points:    points,
		Reason:    reason,
		FromUser:  fromUser,
		CreatedAt: time.Now(),
	}
	if err := ValidateEntry(e); err != nil {
		return charter.ScoreEntry{}, err
	}
	if _, err := s.Bookings.GetBooking(ctx, bookingID); err != nil {
		return charter.ScoreEntry{}, err
	}
	if err := s.Scores.AppendScoreEntry(ctx, e); err != nil {
		return charter.ScoreEntry{}, err
	}
	return e, nil
}

// Entries returns a booking's raw score entries.
func (s *Service) Entries(ctx context.Context, bookingID charter.BookingID) ([]charter.ScoreEntry, error) {
	return s.Scores.ListScoreEntries(ctx, bookingID)
}

// BookingLeaderboard recomputes the leaderboard from the booking's full
// entry set and the current roster.
func (s *Service) BookingLeaderboard(ctx context.Context, bookingID charter.BookingID) ([]Summary, error) {
	entries, err := s.Scores.ListScoreEntries(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	crew, err := s.Crew.ListCrew(ctx)
	if err != nil {
		return nil, err
	}
	return Leaderboard(entries, crew), nil
}

// Season recomputes the season standings from every entry in the season.
func (s *Service) Season(ctx context.Context, seasonID charter.SeasonID) (Stats, error) {
	entries, err := s.Scores.ListSeasonScoreEntries(ctx, seasonID)
	if err != nil {
		return Stats{}, err
	}
	crew, err := s.Crew.ListCrew(ctx)
	if err != nil {
		return Stats{}, err
	}

	grouped := make(map[charter.BookingID][]charter.ScoreEntry)
	for _, e := range entries {
		grouped[e.BookingID] = append(grouped[e.BookingID], e)
	}
	return SeasonStats(grouped, crew), nil
}
