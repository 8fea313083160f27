/*
Package booking implements the booking lifecycle: status derivation, the
transition state machine, and date-overlap validation.

PURPOSE:
  A booking's status is derived from where `now` falls in [arrival, departure]
  unless a terminal action (cancel / complete / archive) has frozen it.
  Transitions are explicit edges, not free-form writes:

    upcoming  -> cancelled   (any time before arrival)
    upcoming/
    active    -> edited      (dates/guests/notes; status recomputed on date edits)
    active/
    completed -> completed   (explicit completion attaches a Reconciliation, once)
    completed -> archived    (one-way; archived is fully locked)
    upcoming  -> deleted     (the only status permitting hard deletion)

  Every forbidden edge reports a policy error, never a silent no-op.

KEY PROPERTY:
  Derivation is monotonic in `now`: as time advances a booking only moves
  forward through upcoming -> active -> completed.

SEE ALSO:
  - overlap.go: Date-range collision check used on create/edit
  - service.go: Store orchestration around these pure guards
*/
package booking

import (
	"github.com/warp/charter-engine/charter"
)

// =============================================================================
// STATUS DERIVATION
// =============================================================================

// DeriveStatus computes the date-based status for a booking not frozen in a
// terminal state. departure < arrival is a caller input error.
func DeriveStatus(arrival, departure, now charter.Date) (charter.Status, error) {
	if departure.Before(arrival) {
		return "", charter.ErrInvalidDateRange
	}
	switch {
	case now.Before(arrival):
		return charter.StatusUpcoming, nil
	case now.After(departure):
		return charter.StatusCompleted, nil
	default:
		return charter.StatusActive, nil
	}
}

// EffectiveStatus returns the status a reader should see: the frozen terminal
// status if one is set, otherwise the date derivation.
func EffectiveStatus(b charter.Booking, now charter.Date) (charter.Status, error) {
	if b.Status.Terminal() {
		return b.Status, nil
	}
	return DeriveStatus(b.Arrival, b.Departure, now)
}

// =============================================================================
// TRANSITION GUARDS
// =============================================================================
// Each guard evaluates the booking's effective status at `now` and returns a
// PolicyViolationError wrapping the matching sentinel when the edge is illegal.

// CanCancel permits cancellation only while the booking is still upcoming.
// Active and completed bookings have their own terminal transitions.
func CanCancel(b charter.Booking, now charter.Date) error {
	status, err := EffectiveStatus(b, now)
	if err != nil {
		return err
	}
	if status != charter.StatusUpcoming {
		return &charter.PolicyViolationError{
			Op: "cancel", BookingID: b.ID, Status: status, Err: charter.ErrNotCancellable,
		}
	}
	return nil
}

// CanEdit permits edits while upcoming or active. Terminal bookings are locked.
func CanEdit(b charter.Booking, now charter.Date) error {
	status, err := EffectiveStatus(b, now)
	if err != nil {
		return err
	}
	if status != charter.StatusUpcoming && status != charter.StatusActive {
		return &charter.PolicyViolationError{
			Op: "edit", BookingID: b.ID, Status: status, Err: charter.ErrNotEditable,
		}
	}
	return nil
}

// CanComplete permits the explicit completion action from active or
// past-departure bookings, and only if no reconciliation is attached yet.
func CanComplete(b charter.Booking, now charter.Date) error {
	if b.Reconciliation != nil {
		return &charter.PolicyViolationError{
			Op: "complete", BookingID: b.ID, Status: b.Status, Err: charter.ErrAlreadyReconciled,
		}
	}
	status, err := EffectiveStatus(b, now)
	if err != nil {
		return err
	}
	if status != charter.StatusActive && status != charter.StatusCompleted {
		return &charter.PolicyViolationError{
			Op: "complete", BookingID: b.ID, Status: status, Err: charter.ErrNotCompletable,
		}
	}
	return nil
}

// CanArchive permits archival from completed only. Archived is one-way.
func CanArchive(b charter.Booking, now charter.Date) error {
	status, err := EffectiveStatus(b, now)
	if err != nil {
		return err
	}
	if status != charter.StatusCompleted {
		return &charter.PolicyViolationError{
			Op: "archive", BookingID: b.ID, Status: status, Err: charter.ErrNotArchivable,
		}
	}
	return nil
}

// CanDelete permits hard deletion only while upcoming. Once a booking has
// hosted guests or money it stays in the record, cancelled or completed.
func CanDelete(b charter.Booking, now charter.Date) error {
	status, err := EffectiveStatus(b, now)
	if err != nil {
		return err
	}
	if status != charter.StatusUpcoming {
		return &charter.PolicyViolationError{
			Op: "delete", BookingID: b.ID, Status: status, Err: charter.ErrNotDeletable,
		}
	}
	return nil
}
