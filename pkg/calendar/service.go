package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/aiutox/erp-calendar/internal/event_bus"
	"github.com/aiutox/erp-calendar/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Service struct {
	repo      Repository
	scheduler Scheduler
	eventBus  *event_bus.EventBus
}

func NewService(repo Repository, scheduler Scheduler, eventBus *event_bus.EventBus) *Service {
	return &Service{
		repo:      repo,
		scheduler: scheduler,
		eventBus:  eventBus,
	}
}

func (s *Service) AddEvent(ctx context.Context, event Event) (*Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := ValidateDates(event); err != nil {
		return nil, err
	}
	if err := validateDurationAtLeast(event, nil, nil, s.scheduler.MinDuration); err != nil {
		return nil, err
	}

	eventUid, err := s.repo.StoreEvent(ctx, userId, event)
	if err != nil {
		return nil, fmt.Errorf("failed to store event: %w", err)
	}
	event.UID = eventUid
	event.SourceType = sourceOrDefault(event.SourceType)
	return &event, nil
}

func (s *Service) GetEvent(ctx context.Context, eventUid uuid.UUID) (*Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	event, err := s.repo.GetEvent(ctx, userId, eventUid)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *Service) GetEvents(ctx context.Context, from time.Time, to time.Time) ([]Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetEvents(ctx, userId, from, to)
}

// MoveEvent drops the event on target, keeping its duration. A nil preserveTime
// uses the configured default.
func (s *Service) MoveEvent(ctx context.Context, eventUid uuid.UUID, target time.Time, preserveTime *bool) (*Event, error) {
	return s.reschedule(ctx, eventUid, event_bus.RescheduleMove, func(sch Scheduler, event Event) (Patch, error) {
		return sch.Move(event, target, s.preserveTime(preserveTime))
	})
}

// ResizeEvent drags one edge of the event to target.
func (s *Service) ResizeEvent(ctx context.Context, eventUid uuid.UUID, target time.Time, direction Direction, preserveTime *bool) (*Event, error) {
	return s.reschedule(ctx, eventUid, event_bus.RescheduleResize, func(sch Scheduler, event Event) (Patch, error) {
		return sch.Resize(event, target, direction, s.preserveTime(preserveTime))
	})
}

func (s *Service) DeleteEvent(ctx context.Context, eventUid uuid.UUID) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.DeleteEvent(ctx, userId, eventUid)
}

// reschedule reads, patches and writes the event in one transaction so that a
// gesture results in exactly one update.
func (s *Service) reschedule(ctx context.Context, eventUid uuid.UUID, kind event_bus.RescheduleKind, compute func(Scheduler, Event) (Patch, error)) (*Event, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	loc, err := currentUser.Location(s.scheduler.Location)
	if err != nil {
		return nil, err
	}
	sch := s.scheduler.InLocation(loc)

	var original, updated Event
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		event, err := repo.GetEvent(ctx, currentUser.Uid, eventUid)
		if err != nil {
			return err
		}
		original = event
		patch, err := compute(sch, original)
		if err != nil {
			return err
		}
		updated = patch.Apply(original)
		return repo.UpdateEventTimes(ctx, currentUser.Uid, eventUid, updated.StartTime, updated.EndTime)
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("event %s rescheduled (%s): %s - %s", eventUid, kind, updated.StartTime, updated.EndTime)

	if s.eventBus != nil {
		err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.CalendarEventRescheduled, event_bus.EventRescheduled{
			UID:      eventUid.String(),
			Kind:     kind,
			OldStart: original.StartTime,
			OldEnd:   original.EndTime,
			NewStart: updated.StartTime,
			NewEnd:   updated.EndTime,
		}))
		if err != nil {
			log.Errorf("failed to publish reschedule of event %s: %v", eventUid, err)
		}
	}
	return &updated, nil
}

func (s *Service) preserveTime(override *bool) bool {
	if override != nil {
		return *override
	}
	return s.scheduler.PreserveTime
}
