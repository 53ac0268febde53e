package event_bus

import "time"

const CalendarEventRescheduled EventType = "calendar.event.rescheduled"

type RescheduleKind string

const (
	RescheduleMove   RescheduleKind = "move"
	RescheduleResize RescheduleKind = "resize"
)

// EventRescheduled is published after a drag gesture has been persisted.
type EventRescheduled struct {
	UID      string
	Kind     RescheduleKind
	OldStart time.Time
	OldEnd   time.Time
	NewStart time.Time
	NewEnd   time.Time
}
