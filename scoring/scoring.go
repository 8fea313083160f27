/*
Package scoring implements the crew scoring game: per-booking leaderboards
and season-wide standings.

PURPOSE:
  Captains award points in {-3,-2,-1,1,2,3} to crew members during a booking.
  The engine never mutates history: entries are append-only, corrections are
  compensating entries of opposite sign, and every aggregate is recomputed
  from the full entry set on each read.

AGGREGATES:
  Leaderboard (per booking):
    Every roster member appears, zero entries included. Totals are the sum
    of received points, sorted descending; ties keep input order.

  SeasonStats (per season):
    Each booking with at least one entry has a single winner (highest total)
    and a single loser (lowest total). Ties resolve by roster order, first
    encountered wins. Wins, losses, and points accumulate per member; the
    trophy holder has strictly more wins than anyone else, the horns holder
    strictly more losses. A tie at the top leaves the title vacant.

TIE-BREAK NOTE:
  Roster order is the explicit, deterministic tie-break. The roster is a
  slice, never a map, so iteration order is stable across reads.

OFF-ROSTER TARGETS:
  The two aggregates treat departed crew differently. Leaderboard appends
  off-roster recipients after the roster so a booking's points never vanish
  from its board. SeasonStats does not: the standings, wins/losses, and the
  trophy/horns titles are a competition among the current roster, and a
  member who left the boat holds no title.

SEE ALSO:
  - service.go: Entry validation and store orchestration
  - charter/store.go: ScoreStore's append-only contract
*/
package scoring

import (
	"sort"

	"github.com/warp/charter-engine/charter"
)

// =============================================================================
// ENTRY VALIDATION
// =============================================================================

// validPoints is the closed score domain. Zero is disallowed: an award must
// move the ledger.
func validPoints(p int) bool {
	return p >= -3 && p <= 3 && p != 0
}

// ValidateEntry rejects out-of-domain input before anything is appended.
// Captain privilege on FromUser is the caller's authorization concern, not
// the engine's.
func ValidateEntry(e charter.ScoreEntry) error {
	if e.BookingID == "" {
		return charter.ErrMissingBooking
	}
	if e.ToUser == "" {
		return charter.ErrMissingTarget
	}
	if e.FromUser == "" {
		return charter.ErrMissingAwarder
	}
	if !validPoints(e.Points) {
		return charter.ErrInvalidPoints
	}
	return nil
}

// =============================================================================
// LEADERBOARD - Per-booking aggregate
// =============================================================================

// Summary is one row of a booking leaderboard.
type Summary struct {
	UserID  charter.UserID
	Name    string
	Total   int
	Entries int
}

// Leaderboard aggregates a booking's entries over the crew roster. Members
// with no entries appear with total 0 and count 0; entries targeting users
// off the roster are appended after it in first-encounter order, so no
// points ever vanish from the board.
func Leaderboard(entries []charter.ScoreEntry, crew []charter.CrewMember) []Summary {
	index := make(map[charter.UserID]int, len(crew))
	rows := make([]Summary, 0, len(crew))
	for _, m := range crew {
		index[m.ID] = len(rows)
		rows = append(rows, Summary{UserID: m.ID, Name: m.Name})
	}

	for _, e := range entries {
		i, ok := index[e.ToUser]
		if !ok {
			i = len(rows)
			index[e.ToUser] = i
			rows = append(rows, Summary{UserID: e.ToUser})
		}
		rows[i].Total += e.Points
		rows[i].Entries++
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total > rows[j].Total
	})
	return rows
}

// =============================================================================
// SEASON STATS - Wins, losses, trophy and horns holders
// =============================================================================

// MemberStats accumulates one member's season totals.
type MemberStats struct {
	UserID charter.UserID
	Name   string
	Points int
	Wins   int
	Losses int
}

// Stats is the season-wide standings table.
type Stats struct {
	Members []MemberStats // roster order

	// TrophyHolder has strictly more wins than every other member; nil when
	// nobody has a win or the top is tied. HornsHolder mirrors it for losses.
	TrophyHolder *charter.UserID
	HornsHolder  *charter.UserID
}

// SeasonStats folds every booking's entries into season standings. Bookings
// with no entries contribute nothing: with an empty board there is nothing
// to win or lose.
func SeasonStats(entriesByBooking map[charter.BookingID][]charter.ScoreEntry, crew []charter.CrewMember) Stats {
	index := make(map[charter.UserID]int, len(crew))
	members := make([]MemberStats, len(crew))
	for i, m := range crew {
		index[m.ID] = i
		members[i] = MemberStats{UserID: m.ID, Name: m.Name}
	}

	// Deterministic booking order: map iteration order must never decide
	// standings, so bookings are visited sorted by id.
	bookingIDs := make([]charter.BookingID, 0, len(entriesByBooking))
	for id := range entriesByBooking {
		bookingIDs = append(bookingIDs, id)
	}
	sort.Slice(bookingIDs, func(i, j int) bool { return bookingIDs[i] < bookingIDs[j] })

	for _, id := range bookingIDs {
		entries := entriesByBooking[id]
		if len(entries) == 0 {
			continue
		}

		totals := make(map[charter.UserID]int, len(crew))
		for _, e := range entries {
			totals[e.ToUser] += e.Points
			if i, ok := index[e.ToUser]; ok {
				members[i].Points += e.Points
			}
		}

		// Winner and loser over the full roster, zero totals included.
		// First encountered in roster order wins ties.
		var winner, loser *int
		for i := range members {
			t := totals[members[i].UserID]
			if winner == nil || t > totals[members[*winner].UserID] {
				idx := i
				winner = &idx
			}
			if loser == nil || t < totals[members[*loser].UserID] {
				idx := i
				loser = &idx
			}
		}
		if winner != nil {
			members[*winner].Wins++
		}
		if loser != nil {
			members[*loser].Losses++
		}
	}

	stats := Stats{Members: members}
	stats.TrophyHolder = strictMax(members, func(m MemberStats) int { return m.Wins })
	stats.HornsHolder = strictMax(members, func(m MemberStats) int { return m.Losses })
	return stats
}

// strictMax returns the member whose count strictly exceeds every other's,
// or nil when the maximum is zero or shared.
func strictMax(members []MemberStats, count func(MemberStats) int) *charter.UserID {
	best, bestCount, tied := -1, 0, false
	for i, m := range members {
		c := count(m)
		switch {
		case c > bestCount:
			best, bestCount, tied = i, c, false
		case c == bestCount && c > 0:
			tied = true
		}
	}
	if best < 0 || tied {
		return nil
	}
	id := members[best].UserID
	return &id
}
