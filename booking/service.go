/*
service.go - Booking lifecycle orchestration

PURPOSE:
  Wires the pure status/overlap computations to the storage collaborator.
  Every operation fetches a snapshot, runs the guards, and writes back the
  validated mutation. The service holds no state between calls.

REQUEST FLOW (edit example):
  1. Fetch the booking and its season's bookings
  2. CanEdit guard against the effective status
  3. HasOverlap against the season snapshot, excluding the booking itself
  4. Recompute status from the new dates
  5. Write the updated record

CLOCK:
  `Clock` supplies "today" so the state machine is testable at any date.
  Production wiring leaves it nil and gets charter.Today.

SEE ALSO:
  - status.go: The guards this service enforces
  - cash/service.go: Completion (reconcile) lives with the cash engine
*/
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/charter-engine/charter"
)

// Service orchestrates booking lifecycle operations over a BookingStore.
type Service struct {
	Bookings charter.BookingStore
	Clock    func() charter.Date
}

func NewService(store charter.BookingStore) *Service {
	return &Service{Bookings: store, Clock: charter.Today}
}

func (s *Service) now() charter.Date {
	if s.Clock != nil {
		return s.Clock()
	}
	return charter.Today()
}

// =============================================================================
// CREATE / EDIT
// =============================================================================

// CreateInput carries the caller-supplied fields for a new booking.
type CreateInput struct {
	SeasonID   charter.SeasonID
	Arrival    charter.Date
	Departure  charter.Date
	GuestCount int
	Notes      string
}

// Create validates the range against the season and persists a new booking
// with its derived status.
func (s *Service) Create(ctx context.Context, in CreateInput) (charter.Booking, error) {
	now := s.now()

	status, err := DeriveStatus(in.Arrival, in.Departure, now)
	if err != nil {
		return charter.Booking{}, err
	}

	season, err := s.Bookings.ListSeasonBookings(ctx, in.SeasonID)
	if err != nil {
		return charter.Booking{}, fmt.Errorf("load season bookings: %w", err)
	}
	if HasOverlap(season, in.Arrival, in.Departure, "") {
		return charter.Booking{}, charter.ErrDateOverlap
	}

	b := charter.Booking{
		ID:         charter.BookingID(fmt.Sprintf("bkg-%d", time.Now().UnixNano())),
		SeasonID:   in.SeasonID,
		Arrival:    in.Arrival,
		Departure:  in.Departure,
		GuestCount: in.GuestCount,
		Status:     status,
		Notes:      in.Notes,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := s.Bookings.CreateBooking(ctx, b); err != nil {
		return charter.Booking{}, err
	}
	return b, nil
}

// EditInput carries the editable fields. Nil pointers leave a field untouched.
type EditInput struct {
	Arrival    *charter.Date
	Departure  *charter.Date
	GuestCount *int
	Notes      *string
	Tip        *charter.Money
}

// Edit applies an edit to an upcoming or active booking. Date changes are
// overlap-checked (excluding the booking itself) and the status is recomputed.
func (s *Service) Edit(ctx context.Context, id charter.BookingID, in EditInput) (charter.Booking, error) {
	b, err := s.Bookings.GetBooking(ctx, id)
	if err != nil {
		return charter.Booking{}, err
	}
	now := s.now()

	if err := CanEdit(b, now); err != nil {
		return charter.Booking{}, err
	}

	datesChanged := false
	if in.Arrival != nil {
		b.Arrival = *in.Arrival
		datesChanged = true
	}
	if in.Departure != nil {
		b.Departure = *in.Departure
		datesChanged = true
	}
	if in.GuestCount != nil {
		b.GuestCount = *in.GuestCount
	}
	if in.Notes != nil {
		b.Notes = *in.Notes
	}
	if in.Tip != nil {
		tip := *in.Tip
		b.Tip = &tip
	}

	if datesChanged {
		status, err := DeriveStatus(b.Arrival, b.Departure, now)
		if err != nil {
			return charter.Booking{}, err
		}

		season, err := s.Bookings.ListSeasonBookings(ctx, b.SeasonID)
		if err != nil {
			return charter.Booking{}, fmt.Errorf("load season bookings: %w", err)
		}
		if HasOverlap(season, b.Arrival, b.Departure, b.ID) {
			return charter.Booking{}, charter.ErrDateOverlap
		}
		b.Status = status
	}

	b.UpdatedAt = time.Now()
	if err := s.Bookings.UpdateBooking(ctx, b); err != nil {
		return charter.Booking{}, err
	}
	return b, nil
}

// =============================================================================
// TERMINAL TRANSITIONS
// =============================================================================

// Cancel freezes an upcoming booking as cancelled.
func (s *Service) Cancel(ctx context.Context, id charter.BookingID) error {
	b, err := s.Bookings.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if err := CanCancel(b, s.now()); err != nil {
		return err
	}
	return s.Bookings.SetStatus(ctx, id, charter.StatusCancelled)
}

// Archive locks a completed booking for good.
func (s *Service) Archive(ctx context.Context, id charter.BookingID) error {
	b, err := s.Bookings.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if err := CanArchive(b, s.now()); err != nil {
		return err
	}
	return s.Bookings.SetStatus(ctx, id, charter.StatusArchived)
}

// Delete hard-deletes an upcoming booking. Any other status is a policy error
// and storage is left untouched.
func (s *Service) Delete(ctx context.Context, id charter.BookingID) error {
	b, err := s.Bookings.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if err := CanDelete(b, s.now()); err != nil {
		return err
	}
	return s.Bookings.DeleteBooking(ctx, id)
}

// =============================================================================
// READS
// =============================================================================

// Get returns the booking with its effective status resolved for `now`.
func (s *Service) Get(ctx context.Context, id charter.BookingID) (charter.Booking, error) {
	b, err := s.Bookings.GetBooking(ctx, id)
	if err != nil {
		return charter.Booking{}, err
	}
	status, err := EffectiveStatus(b, s.now())
	if err != nil {
		return charter.Booking{}, err
	}
	b.Status = status
	return b, nil
}

// ListSeason returns the season's bookings with effective statuses resolved.
func (s *Service) ListSeason(ctx context.Context, seasonID charter.SeasonID) ([]charter.Booking, error) {
	bookings, err := s.Bookings.ListSeasonBookings(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range bookings {
		status, err := EffectiveStatus(bookings[i], now)
		if err != nil {
			return nil, err
		}
		bookings[i].Status = status
	}
	return bookings, nil
}

// RefreshStatus persists the upcoming -> active advance when the arrival day
// has passed, so listings stay honest without recomputing on every consumer.
// The completed status is never persisted here: completion is an explicit
// action that must attach a reconciliation.
func (s *Service) RefreshStatus(ctx context.Context, id charter.BookingID) (charter.Status, error) {
	b, err := s.Bookings.GetBooking(ctx, id)
	if err != nil {
		return "", err
	}
	status, err := EffectiveStatus(b, s.now())
	if err != nil {
		return "", err
	}
	if status == charter.StatusActive && b.Status == charter.StatusUpcoming {
		if err := s.Bookings.SetStatus(ctx, id, status); err != nil {
			return "", err
		}
	}
	return status, nil
}
