package calendar

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type SourceType string

const (
	SourceEvent SourceType = "event"
	SourceTask  SourceType = "task"
)

type Event struct {
	UID        uuid.UUID
	Title      string
	StartTime  time.Time
	EndTime    time.Time
	AllDay     bool
	ReadOnly   bool
	SourceType SourceType
}

// Duration returns the time between the event boundaries. It is negative for inverted events.
func (e Event) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// Patch holds the new boundaries computed for a drag gesture. A move sets both
// edges, a resize sets exactly one.
type Patch struct {
	StartTime *time.Time
	EndTime   *time.Time
}

// Apply returns a copy of the event with the patched boundaries.
func (p Patch) Apply(e Event) Event {
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	return e
}

const patchTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// MarshalJSON encodes the patch with UTC millisecond timestamps, omitting unset edges.
func (p Patch) MarshalJSON() ([]byte, error) {
	format := func(t *time.Time) *string {
		if t == nil {
			return nil
		}
		s := t.UTC().Format(patchTimeLayout)
		return &s
	}
	return json.Marshal(struct {
		StartTime *string `json:"start_time,omitempty"`
		EndTime   *string `json:"end_time,omitempty"`
	}{format(p.StartTime), format(p.EndTime)})
}

// Direction selects the edge affected by a resize.
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

func (d Direction) Valid() bool {
	return d == DirectionLeft || d == DirectionRight
}
