package app

import (
	"context"
	"fmt"

	"github.com/aiutox/erp-calendar/internal/config"
	"github.com/aiutox/erp-calendar/internal/event_bus"
	"github.com/aiutox/erp-calendar/pkg/calendar"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus

	Scheduler          calendar.Scheduler
	CalendarRepository calendar.Repository
	CalendarService    *calendar.Service
	CalendarHandler    *calendar.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) (*Dependencies, error) {
	var repo calendar.Repository
	if db != nil {
		repo = calendar.NewRepository(db)
	} else {
		log.Warn("No database pool given, calendar events are kept in memory")
		repo = calendar.NewRepositoryStub()
	}
	return buildDependencies(repo, cfg)
}

func buildDependencies(repo calendar.Repository, cfg config.Application) (*Dependencies, error) {
	loc, err := cfg.Calendar.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid calendar timezone: %w", err)
	}
	scheduler, err := calendar.NewScheduler(loc, cfg.Calendar.SnapInterval, cfg.Calendar.MinDurationValue(), cfg.Calendar.PreserveTime)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{}
	deps.EventBus = event_bus.NewEventBus()
	deps.Scheduler = scheduler
	deps.CalendarRepository = repo
	deps.CalendarService = calendar.NewService(repo, scheduler, deps.EventBus)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService)

	event_bus.SubscribeTyped(deps.EventBus, event_bus.CalendarEventRescheduled, func(ctx context.Context, e event_bus.EventRescheduled) error {
		log.Infof("calendar event %s %s: %s - %s", e.UID, e.Kind, e.NewStart.Format("2006-01-02T15:04Z07:00"), e.NewEnd.Format("2006-01-02T15:04Z07:00"))
		return nil
	})

	return deps, nil
}
