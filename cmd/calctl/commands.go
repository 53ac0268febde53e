package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aiutox/erp-calendar/pkg/calendar"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "calctl",
		Usage: "Compute calendar move and resize patches.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "warn", EnvVars: []string{"LOG_LEVEL"}},
		},
		Before: func(c *cli.Context) error {
			level, err := log.ParseLevel(c.String("log-level"))
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
		Commands: []*cli.Command{
			snapCommand(),
			moveCommand(),
			resizeCommand(),
			checkCommand(),
		},
	}
}

func eventFlags() []cli.Flag {
	return []cli.Flag{
		&cli.TimestampFlag{Name: "start", Layout: time.RFC3339, Required: true, Usage: "event start (RFC3339)"},
		&cli.TimestampFlag{Name: "end", Layout: time.RFC3339, Required: true, Usage: "event end (RFC3339)"},
		&cli.BoolFlag{Name: "all-day"},
		&cli.BoolFlag{Name: "read-only"},
		&cli.StringFlag{Name: "source", Value: string(calendar.SourceEvent), Usage: "event source type"},
		&cli.StringFlag{Name: "timezone", Value: "UTC", Usage: "IANA timezone for date arithmetic"},
	}
}

func gestureFlags() []cli.Flag {
	return append(eventFlags(),
		&cli.TimestampFlag{Name: "target", Layout: time.RFC3339, Required: true, Usage: "drop target (RFC3339)"},
		&cli.BoolFlag{Name: "preserve-time", Value: true},
		&cli.IntFlag{Name: "snap", Value: calendar.DefaultSnapInterval, Usage: "grid in minutes, 0 disables snapping"},
		&cli.IntFlag{Name: "min-duration", Value: int(calendar.DefaultMinDuration.Minutes()), Usage: "minimum duration in minutes"},
	)
}

func snapCommand() *cli.Command {
	return &cli.Command{
		Name:  "snap",
		Usage: "Round an instant to the grid.",
		Flags: []cli.Flag{
			&cli.TimestampFlag{Name: "at", Layout: time.RFC3339, Required: true},
			&cli.IntFlag{Name: "interval", Value: calendar.DefaultSnapInterval},
		},
		Action: func(c *cli.Context) error {
			snapped, err := calendar.Snap(*c.Timestamp("at"), c.Int("interval"))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, snapped.UTC().Format(time.RFC3339))
			return err
		},
	}
}

func moveCommand() *cli.Command {
	return &cli.Command{
		Name:  "move",
		Usage: "Move an event to a new date, keeping its duration.",
		Flags: gestureFlags(),
		Action: func(c *cli.Context) error {
			event, scheduler, err := gestureFromFlags(c)
			if err != nil {
				return err
			}
			patch, err := scheduler.Move(event, *c.Timestamp("target"), c.Bool("preserve-time"))
			if err != nil {
				return err
			}
			return printJSON(c, patch)
		},
	}
}

func resizeCommand() *cli.Command {
	flags := append(gestureFlags(),
		&cli.StringFlag{Name: "direction", Value: string(calendar.DirectionRight), Usage: "edge to move: left or right"},
	)
	return &cli.Command{
		Name:  "resize",
		Usage: "Drag one edge of an event.",
		Flags: flags,
		Action: func(c *cli.Context) error {
			event, scheduler, err := gestureFromFlags(c)
			if err != nil {
				return err
			}
			patch, err := scheduler.Resize(event, *c.Timestamp("target"), calendar.Direction(c.String("direction")), c.Bool("preserve-time"))
			if err != nil {
				return err
			}
			return printJSON(c, patch)
		},
	}
}

type checkResult struct {
	Resizable       bool   `json:"resizable"`
	DateError       string `json:"date_error,omitempty"`
	DurationError   string `json:"duration_error,omitempty"`
	MinimumDuration string `json:"minimum_duration"`
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Report whether an event can be resized and whether its range is valid.",
		Flags: eventFlags(),
		Action: func(c *cli.Context) error {
			event := eventFromFlags(c)
			result := checkResult{
				Resizable:       calendar.CanResize(event),
				MinimumDuration: calendar.MinimumDuration(event).String(),
			}
			if err := calendar.ValidateDates(event); err != nil {
				result.DateError = err.Error()
			}
			if err := calendar.ValidateDuration(event, nil, nil); err != nil {
				result.DurationError = err.Error()
			}
			return printJSON(c, result)
		},
	}
}

func eventFromFlags(c *cli.Context) calendar.Event {
	return calendar.Event{
		StartTime:  *c.Timestamp("start"),
		EndTime:    *c.Timestamp("end"),
		AllDay:     c.Bool("all-day"),
		ReadOnly:   c.Bool("read-only"),
		SourceType: calendar.SourceType(c.String("source")),
	}
}

func gestureFromFlags(c *cli.Context) (calendar.Event, calendar.Scheduler, error) {
	loc, err := time.LoadLocation(c.String("timezone"))
	if err != nil {
		return calendar.Event{}, calendar.Scheduler{}, fmt.Errorf("invalid timezone: %w", err)
	}
	minDuration := time.Duration(c.Int("min-duration")) * time.Minute
	scheduler, err := calendar.NewScheduler(loc, c.Int("snap"), minDuration, c.Bool("preserve-time"))
	if err != nil {
		return calendar.Event{}, calendar.Scheduler{}, err
	}
	event := eventFromFlags(c)
	log.Debugf("event %s - %s in %s", event.StartTime, event.EndTime, loc)
	return event, scheduler, nil
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	return enc.Encode(v)
}
