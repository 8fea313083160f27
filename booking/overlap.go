package booking

import "github.com/warp/charter-engine/charter"

// =============================================================================
// OVERLAP VALIDATOR - Closed-interval date collision check
// =============================================================================

// HasOverlap reports whether [start, end] collides with any active booking in
// the season snapshot. Cancelled bookings never block a range, and `exclude`
// skips the booking being edited (pass "" on create). Boundaries are
// inclusive: a booking ending the day another begins overlaps it.
//
// Pure query, first match wins. Symmetric by construction:
// overlap(A, B) == overlap(B, A).
func HasOverlap(seasonBookings []charter.Booking, start, end charter.Date, exclude charter.BookingID) bool {
	for _, b := range seasonBookings {
		if b.ID == exclude {
			continue
		}
		if b.Status == charter.StatusCancelled {
			continue
		}
		if start.BeforeOrEqual(b.Departure) && b.Arrival.BeforeOrEqual(end) {
			return true
		}
	}
	return false
}
