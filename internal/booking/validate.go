// ABOUTME: Client-side validation of booking drafts before submission
// ABOUTME: Pure rules applied in order, first failure wins

package booking

import "errors"

// Rejection reasons returned by Validate
const (
	ReasonStartRequired  = "start time required"
	ReasonEndRequired    = "end time required"
	ReasonEndBeforeStart = "end time must be after start time"
)

// RejectedError reports why a draft was refused locally
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return e.Reason
}

// IsRejected reports whether err is a local validation rejection
func IsRejected(err error) bool {
	var rej *RejectedError
	return errors.As(err, &rej)
}

// Validate checks a draft and returns a *RejectedError describing the first failed rule
func Validate(d Draft) error {
	if d.StartTime == nil {
		return &RejectedError{Reason: ReasonStartRequired}
	}
	if d.EndTime == nil {
		return &RejectedError{Reason: ReasonEndRequired}
	}
	if !d.EndTime.After(*d.StartTime) {
		return &RejectedError{Reason: ReasonEndBeforeStart}
	}
	return nil
}
