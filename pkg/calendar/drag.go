package calendar

import (
	"errors"
	"math"
	"time"
)

// DefaultSnapInterval is the grid used by the calendar views, in minutes.
const DefaultSnapInterval = 15

var ErrInvalidInterval = errors.New("snap interval must be a positive number of minutes")

// Snap rounds t to the nearest multiple of intervalMinutes counted from the Unix epoch.
// Halfway values round away from zero.
func Snap(t time.Time, intervalMinutes int) (time.Time, error) {
	if intervalMinutes <= 0 {
		return time.Time{}, ErrInvalidInterval
	}
	intervalMs := int64(intervalMinutes) * time.Minute.Milliseconds()
	slots := math.Round(float64(t.UnixMilli()) / float64(intervalMs))
	return time.UnixMilli(int64(slots) * intervalMs).In(t.Location()), nil
}

// ComputeMove calculates the boundaries of an event dropped on target. The duration
// of the event never changes. All-day events start at midnight of the target day;
// otherwise preserveTime keeps the original clock time and only swaps the date.
//
// Dates and clock times are read in loc; a nil loc means time.Local.
func ComputeMove(event Event, target time.Time, preserveTime bool, loc *time.Location) Patch {
	loc = locationOrLocal(loc)
	duration := event.Duration()

	var start time.Time
	switch {
	case event.AllDay:
		start = startOfDay(target, loc)
	case preserveTime:
		start = withClockOf(target, event.StartTime, loc)
	default:
		start = target
	}
	end := start.Add(duration)

	return Patch{StartTime: &start, EndTime: &end}
}

// ComputeResize moves the end edge of the event to target. The second return value
// is false when the new end would not be after the event start; the patch must then
// be discarded.
func ComputeResize(event Event, target time.Time, preserveTime bool, loc *time.Location) (Patch, bool) {
	loc = locationOrLocal(loc)

	end := target
	if !event.AllDay && preserveTime {
		end = withClockOf(target, event.EndTime, loc)
	}
	if !end.After(event.StartTime) {
		return Patch{}, false
	}
	return Patch{EndTime: &end}, true
}

// ComputeResizeWithValidation moves either edge of the event and validates the
// resulting range. All-day events snap the moved edge to the day boundary.
// Timed events take target as-is whatever preserveTime says, unlike ComputeResize.
func ComputeResizeWithValidation(event Event, target time.Time, direction Direction, preserveTime bool, loc *time.Location) (Patch, bool) {
	loc = locationOrLocal(loc)

	var patch Patch
	switch direction {
	case DirectionLeft:
		start := target
		if event.AllDay {
			start = startOfDay(target, loc)
		}
		patch.StartTime = &start
	case DirectionRight:
		end := target
		if event.AllDay {
			end = endOfDay(target, loc)
		}
		patch.EndTime = &end
	default:
		return Patch{}, false
	}

	if err := ValidateDates(patch.Apply(event)); err != nil {
		return Patch{}, false
	}
	return patch, true
}

func locationOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

// withClockOf returns the calendar date of date combined with the clock time of clock.
func withClockOf(date, clock time.Time, loc *time.Location) time.Time {
	d := date.In(loc)
	c := clock.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), c.Nanosecond(), loc)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	d := t.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

func endOfDay(t time.Time, loc *time.Location) time.Time {
	d := t.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
}
