package calendar

import (
	"fmt"
	"time"
)

// DefaultMinDuration is the shortest event the calendar accepts.
const DefaultMinDuration = 15 * time.Minute

const invalidRangeMessage = "La fecha de inicio debe ser anterior a la fecha de fin"

// ValidationError carries a user facing message describing why an event range was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateDates rejects events that do not start strictly before they end.
func ValidateDates(event Event) error {
	if !event.StartTime.Before(event.EndTime) {
		return &ValidationError{Field: "end_time", Message: invalidRangeMessage}
	}
	return nil
}

// CanResize reports whether the UI may offer drag handles for the event.
func CanResize(event Event) bool {
	if event.ReadOnly {
		return false
	}
	return event.SourceType != SourceTask
}

// MinimumDuration returns the shortest duration allowed for the event.
// The event is not consulted yet; it is accepted for per-event minimums.
func MinimumDuration(event Event) time.Duration {
	return DefaultMinDuration
}

// ValidateDuration checks the event, with optional replacement boundaries, against MinimumDuration.
func ValidateDuration(event Event, newStart, newEnd *time.Time) error {
	return validateDurationAtLeast(event, newStart, newEnd, MinimumDuration(event))
}

func validateDurationAtLeast(event Event, newStart, newEnd *time.Time, minimum time.Duration) error {
	start := event.StartTime
	if newStart != nil {
		start = *newStart
	}
	end := event.EndTime
	if newEnd != nil {
		end = *newEnd
	}
	if end.Sub(start) < minimum {
		return &ValidationError{
			Field:   "duration",
			Message: fmt.Sprintf("La duración mínima del evento es de %d minutos", int(minimum.Minutes())),
		}
	}
	return nil
}
