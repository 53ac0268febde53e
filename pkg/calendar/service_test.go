package calendar

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/aiutox/erp-calendar/internal/event_bus"
	"github.com/aiutox/erp-calendar/pkg/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	service     *Service
	repo        *RepositoryStub
	ctx         context.Context
	rescheduled []event_bus.EventRescheduled
}

func setupServiceTest(t *testing.T) *serviceFixture {
	repo := NewRepositoryStub()
	scheduler, err := NewScheduler(time.UTC, DefaultSnapInterval, DefaultMinDuration, true)
	require.NoError(t, err)
	bus := event_bus.NewEventBus()

	f := &serviceFixture{
		service: NewService(repo, scheduler, bus),
		repo:    repo,
		ctx:     user.WithUser(context.Background(), user.User{Uid: "user-1"}),
	}
	event_bus.SubscribeTyped(bus, event_bus.CalendarEventRescheduled, func(ctx context.Context, data event_bus.EventRescheduled) error {
		f.rescheduled = append(f.rescheduled, data)
		return nil
	})
	return f
}

func (f *serviceFixture) store(t *testing.T, event Event) Event {
	stored, err := f.service.AddEvent(f.ctx, event)
	require.NoError(t, err)
	return *stored
}

func TestService_AddEvent(t *testing.T) {
	f := setupServiceTest(t)

	stored := f.store(t, Event{Title: "Demo", StartTime: fixtureEvent().StartTime, EndTime: fixtureEvent().EndTime})

	assert.NotEqual(t, uuid.Nil, stored.UID)
	assert.Equal(t, SourceEvent, stored.SourceType)

	found, err := f.service.GetEvent(f.ctx, stored.UID)
	require.NoError(t, err)
	assert.Equal(t, "Demo", found.Title)
}

func TestService_AddEvent_Validation(t *testing.T) {
	f := setupServiceTest(t)
	start := fixtureEvent().StartTime

	_, err := f.service.AddEvent(f.ctx, Event{StartTime: start, EndTime: start})
	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))

	_, err = f.service.AddEvent(f.ctx, Event{StartTime: start, EndTime: start.Add(5 * time.Minute)})
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "duration", validationErr.Field)

	_, err = f.service.AddEvent(context.Background(), fixtureEvent())
	assert.ErrorIs(t, err, user.ErrNoUser)
}

func TestService_MoveEvent(t *testing.T) {
	f := setupServiceTest(t)
	stored := f.store(t, fixtureEvent())

	moved, err := f.service.MoveEvent(f.ctx, stored.UID, time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC), nil)

	require.NoError(t, err)
	assert.Equal(t, "2025-01-12T09:00:00.000Z", iso(&moved.StartTime))
	assert.Equal(t, "2025-01-12T10:00:00.000Z", iso(&moved.EndTime))

	persisted, err := f.repo.GetEvent(f.ctx, "user-1", stored.UID)
	require.NoError(t, err)
	assert.True(t, moved.StartTime.Equal(persisted.StartTime))
	assert.True(t, moved.EndTime.Equal(persisted.EndTime))

	require.Len(t, f.rescheduled, 1)
	assert.Equal(t, event_bus.RescheduleMove, f.rescheduled[0].Kind)
	assert.Equal(t, stored.UID.String(), f.rescheduled[0].UID)
	assert.True(t, stored.StartTime.Equal(f.rescheduled[0].OldStart))
	assert.True(t, moved.StartTime.Equal(f.rescheduled[0].NewStart))
}

func TestService_MoveEvent_UserTimezone(t *testing.T) {
	f := setupServiceTest(t)
	stored := f.store(t, fixtureEvent())
	ctx := user.WithUser(context.Background(), user.User{Uid: "user-1", Settings: user.Settings{Timezone: "America/Bogota"}})

	moved, err := f.service.MoveEvent(ctx, stored.UID, time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC), nil)

	require.NoError(t, err)
	assert.Equal(t, "2025-01-11T09:00:00.000Z", iso(&moved.StartTime))
	assert.Equal(t, "2025-01-11T10:00:00.000Z", iso(&moved.EndTime))
}

func TestService_MoveEvent_PreserveTimeOverride(t *testing.T) {
	f := setupServiceTest(t)
	stored := f.store(t, fixtureEvent())
	preserve := false

	moved, err := f.service.MoveEvent(f.ctx, stored.UID, time.Date(2025, 1, 12, 15, 30, 0, 0, time.UTC), &preserve)

	require.NoError(t, err)
	assert.Equal(t, "2025-01-12T15:30:00.000Z", iso(&moved.StartTime))
	assert.Equal(t, "2025-01-12T16:30:00.000Z", iso(&moved.EndTime))
}

func TestService_MoveEvent_Errors(t *testing.T) {
	f := setupServiceTest(t)
	readOnly := fixtureEvent()
	readOnly.ReadOnly = true
	stored := f.store(t, readOnly)

	_, err := f.service.MoveEvent(f.ctx, stored.UID, time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC), nil)
	assert.ErrorIs(t, err, ErrNotEditable)

	_, err = f.service.MoveEvent(f.ctx, uuid.New(), time.Now(), nil)
	assert.ErrorIs(t, err, ErrEventNotFound)

	otherUser := user.WithUser(context.Background(), user.User{Uid: "user-2"})
	_, err = f.service.MoveEvent(otherUser, stored.UID, time.Now(), nil)
	assert.ErrorIs(t, err, ErrEventNotFound)

	badZone := user.WithUser(context.Background(), user.User{Uid: "user-1", Settings: user.Settings{Timezone: "Mars/Olympus"}})
	_, err = f.service.MoveEvent(badZone, stored.UID, time.Now(), nil)
	assert.Error(t, err)

	assert.Empty(t, f.rescheduled)
}

func TestService_MoveEvent_RollsBack(t *testing.T) {
	f := setupServiceTest(t)
	stored := f.store(t, fixtureEvent())
	f.repo.SetTransactionError(errors.New("connection lost"))

	_, err := f.service.MoveEvent(f.ctx, stored.UID, time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC), nil)

	assert.EqualError(t, err, "connection lost")
	persisted, err := f.repo.GetEvent(f.ctx, "user-1", stored.UID)
	require.NoError(t, err)
	assert.True(t, stored.StartTime.Equal(persisted.StartTime))
	assert.Empty(t, f.rescheduled)
}

func TestService_ResizeEvent(t *testing.T) {
	f := setupServiceTest(t)
	stored := f.store(t, fixtureEvent())

	resized, err := f.service.ResizeEvent(f.ctx, stored.UID, time.Date(2025, 1, 10, 11, 52, 0, 0, time.UTC), DirectionRight, nil)

	require.NoError(t, err)
	assert.True(t, stored.StartTime.Equal(resized.StartTime))
	assert.Equal(t, "2025-01-10T11:45:00.000Z", iso(&resized.EndTime))
	require.Len(t, f.rescheduled, 1)
	assert.Equal(t, event_bus.RescheduleResize, f.rescheduled[0].Kind)

	_, err = f.service.ResizeEvent(f.ctx, stored.UID, time.Date(2025, 1, 10, 9, 5, 0, 0, time.UTC), DirectionRight, nil)
	assert.ErrorIs(t, err, ErrInvalidRange)

	resized, err = f.service.ResizeEvent(f.ctx, stored.UID, time.Date(2025, 1, 10, 8, 7, 0, 0, time.UTC), DirectionLeft, nil)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10T08:00:00.000Z", iso(&resized.StartTime))
	assert.Equal(t, "2025-01-10T11:45:00.000Z", iso(&resized.EndTime))
}

func TestService_GetEventsAndDelete(t *testing.T) {
	f := setupServiceTest(t)
	first := f.store(t, fixtureEvent())
	later := fixtureEvent()
	later.StartTime = later.StartTime.Add(48 * time.Hour)
	later.EndTime = later.EndTime.Add(48 * time.Hour)
	second := f.store(t, later)

	events, err := f.service.GetEvents(f.ctx, first.StartTime.Add(-time.Hour), second.EndTime)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, first.UID, events[0].UID)

	require.NoError(t, f.service.DeleteEvent(f.ctx, first.UID))
	assert.ErrorIs(t, f.service.DeleteEvent(f.ctx, first.UID), ErrEventNotFound)

	events, err = f.service.GetEvents(f.ctx, first.StartTime.Add(-time.Hour), second.EndTime)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, second.UID, events[0].UID)
}
