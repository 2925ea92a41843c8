package domain

import "errors"

// Sentinel errors shared across services. Controllers map these to HTTP
// statuses at the request boundary; nothing here ever crashes the process.
var (
	// ErrNotFound is returned when an event or referenced resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when a non-organizer attempts an organizer-only action.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is returned for bad or missing input. Wrap it with a
	// human-readable message: fmt.Errorf("%w: capacity must be at least 1", ErrValidation).
	ErrValidation = errors.New("validation error")

	// ErrAlreadyJoined is returned when the user is already an attendee of the event.
	ErrAlreadyJoined = errors.New("already joined")

	// ErrNotAttending is returned when leaving an event the user never joined.
	ErrNotAttending = errors.New("not attending")

	// ErrCapacityFull is returned when the event has reached its attendee capacity.
	ErrCapacityFull = errors.New("event is at full capacity")

	// ErrConditionFailed is returned by conditional repository updates when no
	// row matched the predicate. It carries no reason; callers that need one
	// perform a separate diagnostic read.
	ErrConditionFailed = errors.New("conditional update matched no rows")
)
