// ABOUTME: Observable state of the booking workflow
// ABOUTME: Snapshots are copies so views can hold them without locking

package workflow

import (
	"github.com/nandasurya23/resource-booking-cli/internal/booking"
	"github.com/nandasurya23/resource-booking-cli/internal/session"
)

// Kind identifies the workflow state
type Kind int

const (
	KindUnauthenticated Kind = iota
	KindAuthenticated
	KindLoading
	KindReady
	KindSubmitting
	KindError
)

// String returns a lowercase name for the state kind
func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindAuthenticated:
		return "authenticated"
	case KindLoading:
		return "loading"
	case KindReady:
		return "ready"
	case KindSubmitting:
		return "submitting"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// State is a snapshot of the workflow.
// Bookings holds the last list fetched from the backend, even in Loading,
// Submitting and Error states, so a transient failure never blanks the view.
type State struct {
	Kind     Kind
	Role     session.Role
	Bookings []booking.Booking
	HasData  bool
	Message  string
	Err      error
}

func (s State) clone() State {
	if s.Bookings != nil {
		s.Bookings = append([]booking.Booking(nil), s.Bookings...)
	}
	return s
}

// Busy reports whether a network call is in flight for this state
func (s State) Busy() bool {
	return s.Kind == KindLoading || s.Kind == KindSubmitting
}
