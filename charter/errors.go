/*
errors.go - Centralized error types for the charter engine

PURPOSE:
  All domain errors in one place for consistency and discoverability.
  The taxonomy mirrors how callers must react:

  1. Input errors  - malformed arguments, rejected synchronously, never
     partially applied (bad date range, out-of-domain points, missing ids)
  2. Policy errors - the operation is forbidden by the booking's current
     state (deleting a non-upcoming booking, re-reconciling)
  3. Not-found     - the referenced record does not exist

  Storage failures are NOT wrapped here; the service layer surfaces them
  as-is and the caller treats them as retryable.

USAGE:
  if charter.IsPolicyError(err) {
      // 409 with a specific user-facing message
  } else if charter.IsInputError(err) {
      // 400
  }

SEE ALSO:
  - booking/status.go: Transition guards returning policy errors
  - cash/reconcile.go: ErrAlreadyReconciled on double completion
*/
package charter

import (
	"errors"
	"fmt"
)

// =============================================================================
// INPUT ERRORS - Malformed arguments, use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDateRange is returned when departure precedes arrival.
	ErrInvalidDateRange = errors.New("invalid date range: departure before arrival")

	// ErrInvalidPoints is returned for score values outside {-3,-2,-1,1,2,3}.
	// Zero is deliberately excluded: an award must move the ledger.
	ErrInvalidPoints = errors.New("points must be in -3..-1 or 1..3")

	// ErrMissingTarget is returned when a score entry names no target user.
	ErrMissingTarget = errors.New("score entry requires a target user")

	// ErrMissingAwarder is returned when a score entry names no awarding user.
	ErrMissingAwarder = errors.New("score entry requires an awarding user")

	// ErrZeroAmount is returned for APA entries that would not move the total.
	ErrZeroAmount = errors.New("amount must be non-zero")

	// ErrMissingBooking is returned when an operation names no booking.
	ErrMissingBooking = errors.New("booking id required")
)

// =============================================================================
// POLICY ERRORS - Operation forbidden by current booking state
// =============================================================================

var (
	// ErrNotCancellable: only upcoming bookings can be cancelled.
	ErrNotCancellable = errors.New("booking cannot be cancelled in its current status")

	// ErrNotDeletable: hard deletion is permitted only while upcoming.
	ErrNotDeletable = errors.New("booking can only be deleted while upcoming")

	// ErrNotEditable: completed/archived/cancelled bookings are locked.
	ErrNotEditable = errors.New("booking cannot be edited in its current status")

	// ErrNotArchivable: only completed bookings can be archived.
	ErrNotArchivable = errors.New("only completed bookings can be archived")

	// ErrNotCompletable: completion requires an active or past-departure booking.
	ErrNotCompletable = errors.New("booking cannot be completed in its current status")

	// ErrAlreadyReconciled guards the at-most-once reconciliation write.
	// Re-invoking save must fail rather than overwrite the audit record.
	ErrAlreadyReconciled = errors.New("booking already reconciled")

	// ErrDateOverlap is returned when a booking range collides with another
	// active booking in the season.
	ErrDateOverlap = errors.New("date range overlaps an existing booking")
)

// =============================================================================
// NOT-FOUND ERRORS
// =============================================================================

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrEntryNotFound   = errors.New("entry not found")
	ErrCrewNotFound    = errors.New("crew member not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// PolicyViolationError reports which operation was refused and the status
// that refused it, so the caller can present a specific message.
type PolicyViolationError struct {
	Op        string // "cancel", "delete", "edit", "archive", "complete", "reconcile"
	BookingID BookingID
	Status    Status
	Err       error // the sentinel policy error
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("%s refused for booking %s (status %s): %v", e.Op, e.BookingID, e.Status, e.Err)
}

func (e *PolicyViolationError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsInputError returns true if the error is due to malformed caller input.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrInvalidPoints) ||
		errors.Is(err, ErrMissingTarget) ||
		errors.Is(err, ErrMissingAwarder) ||
		errors.Is(err, ErrZeroAmount) ||
		errors.Is(err, ErrMissingBooking)
}

// IsPolicyError returns true if the operation is forbidden by current state.
func IsPolicyError(err error) bool {
	return errors.Is(err, ErrNotCancellable) ||
		errors.Is(err, ErrNotDeletable) ||
		errors.Is(err, ErrNotEditable) ||
		errors.Is(err, ErrNotArchivable) ||
		errors.Is(err, ErrNotCompletable) ||
		errors.Is(err, ErrAlreadyReconciled) ||
		errors.Is(err, ErrDateOverlap)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrCrewNotFound)
}
