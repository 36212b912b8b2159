// ABOUTME: Caller errors raised by the workflow before any network call
// ABOUTME: Checked with errors.Is by the CLI and TUI

package workflow

import "errors"

var (
	// ErrNoSession means the intent needs a logged-in session
	ErrNoSession = errors.New("not logged in")

	// ErrNotPermitted means the session role may not perform the action
	ErrNotPermitted = errors.New("action requires admin role")

	// ErrUnknownBooking means the id is not in the last fetched list
	ErrUnknownBooking = errors.New("booking not found in current list")

	// ErrIneligible means the booking's status does not allow the action
	ErrIneligible = errors.New("booking is not eligible for this action")
)

// IsCallerError reports whether err was raised locally without contacting the backend
func IsCallerError(err error) bool {
	return errors.Is(err, ErrNoSession) ||
		errors.Is(err, ErrNotPermitted) ||
		errors.Is(err, ErrUnknownBooking) ||
		errors.Is(err, ErrIneligible)
}
