package calendar

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotEditable  = errors.New("event is read-only or mirrored from another module")
	ErrInvalidRange = errors.New("event would end before it starts")
)

// Scheduler runs a complete drag gesture: capability check, snapping, calculation
// and validation. The zero value is not usable, see NewScheduler.
type Scheduler struct {
	Location *time.Location
	// SnapInterval in minutes. Zero disables snapping.
	SnapInterval int
	MinDuration  time.Duration
	PreserveTime bool
}

func NewScheduler(loc *time.Location, snapInterval int, minDuration time.Duration, preserveTime bool) (Scheduler, error) {
	if snapInterval < 0 {
		return Scheduler{}, ErrInvalidInterval
	}
	if loc == nil {
		loc = time.UTC
	}
	if minDuration <= 0 {
		minDuration = DefaultMinDuration
	}
	return Scheduler{
		Location:     loc,
		SnapInterval: snapInterval,
		MinDuration:  minDuration,
		PreserveTime: preserveTime,
	}, nil
}

// InLocation returns a copy of the scheduler doing its date arithmetic in loc.
func (s Scheduler) InLocation(loc *time.Location) Scheduler {
	if loc != nil {
		s.Location = loc
	}
	return s
}

// Move computes the new boundaries for an event dropped on target. The target is
// snapped only when its clock time is adopted, so preserving moves keep the drop date.
func (s Scheduler) Move(event Event, target time.Time, preserveTime bool) (Patch, error) {
	if !CanResize(event) {
		return Patch{}, ErrNotEditable
	}
	if !preserveTime {
		var err error
		if target, err = s.snap(event, target); err != nil {
			return Patch{}, err
		}
	}

	patch := ComputeMove(event, target, preserveTime, s.Location)
	if err := ValidateDates(patch.Apply(event)); err != nil {
		return Patch{}, err
	}
	return patch, nil
}

// Resize computes the new boundary for one edge of the event dragged to target.
func (s Scheduler) Resize(event Event, target time.Time, direction Direction, preserveTime bool) (Patch, error) {
	if !direction.Valid() {
		return Patch{}, fmt.Errorf("unknown resize direction %q", direction)
	}
	if !CanResize(event) {
		return Patch{}, ErrNotEditable
	}
	target, err := s.snap(event, target)
	if err != nil {
		return Patch{}, err
	}

	patch, ok := ComputeResizeWithValidation(event, target, direction, preserveTime, s.Location)
	if !ok {
		return Patch{}, ErrInvalidRange
	}
	if err := validateDurationAtLeast(event, patch.StartTime, patch.EndTime, s.MinDuration); err != nil {
		return Patch{}, err
	}
	return patch, nil
}

func (s Scheduler) snap(event Event, target time.Time) (time.Time, error) {
	if s.SnapInterval == 0 || event.AllDay {
		return target, nil
	}
	return Snap(target, s.SnapInterval)
}
