// ABOUTME: Booking domain types shared by the API client, workflow, and views
// ABOUTME: Defines booking status lifecycle and admin action eligibility

package booking

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a booking as reported by the backend
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the backend is expected to accept a move from s to next.
// The client only uses this to disable actions; the backend stays authoritative.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusApproved || next == StatusCancelled
	case StatusApproved:
		return next == StatusCancelled
	default:
		return false
	}
}

// Label returns a capitalized display label
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusApproved:
		return "Approved"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// Booking is a reservation of a resource for a time interval
type Booking struct {
	ID         int       `json:"id"`
	ResourceID int       `json:"resource_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     Status    `json:"status"`
}

// Duration returns the length of the booked interval
func (b Booking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

// CanApprove reports whether an admin may approve b
func CanApprove(b Booking) bool {
	return b.Status.CanTransitionTo(StatusApproved)
}

// CanCancel reports whether an admin may cancel b. Any booking not already
// cancelled qualifies, including statuses this client does not recognise.
func CanCancel(b Booking) bool {
	return b.Status != StatusCancelled
}

// Find returns the booking with the given id from list
func Find(list []Booking, id int) (Booking, bool) {
	for _, b := range list {
		if b.ID == id {
			return b, true
		}
	}
	return Booking{}, false
}

// Draft is in-progress form state for a new booking. Nil times are not yet chosen.
type Draft struct {
	ResourceID int
	StartTime  *time.Time
	EndTime    *time.Time
}

// NewDraft builds a draft with both times set
func NewDraft(resourceID int, start, end time.Time) Draft {
	return Draft{ResourceID: resourceID, StartTime: &start, EndTime: &end}
}

func (d Draft) String() string {
	format := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format(time.RFC3339)
	}
	return fmt.Sprintf("resource=%d start=%s end=%s", d.ResourceID, format(d.StartTime), format(d.EndTime))
}
