package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aiutox/erp-calendar/internal/test_utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepositoryTest(t *testing.T) (*RepositoryImpl, context.Context, string) {
	pool := test_utils.SetupPostgres(t)
	return NewRepository(pool), context.Background(), test_utils.TestUserUid
}

func assertEventEqual(t *testing.T, expected Event, actual Event) {
	assert.Equal(t, expected.Title, actual.Title)
	assert.True(t, expected.StartTime.Equal(actual.StartTime), "start: want %s, got %s", expected.StartTime, actual.StartTime)
	assert.True(t, expected.EndTime.Equal(actual.EndTime), "end: want %s, got %s", expected.EndTime, actual.EndTime)
	assert.Equal(t, expected.AllDay, actual.AllDay)
	assert.Equal(t, expected.ReadOnly, actual.ReadOnly)
	assert.Equal(t, expected.SourceType, actual.SourceType)
}

func TestRepositoryImpl_StoreAndGetEvent(t *testing.T) {
	repository, ctx, userId := setupRepositoryTest(t)
	event := fixtureEvent()

	uid, err := repository.StoreEvent(ctx, userId, event)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, uid)

	stored, err := repository.GetEvent(ctx, userId, uid)
	require.NoError(t, err)
	assert.Equal(t, uid, stored.UID)
	assertEventEqual(t, event, stored)

	_, err = repository.GetEvent(ctx, "someone-else", uid)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestRepositoryImpl_GetEvents(t *testing.T) {
	repository, ctx, userId := setupRepositoryTest(t)
	first := fixtureEvent()
	second := fixtureEvent()
	second.StartTime = second.StartTime.Add(24 * time.Hour)
	second.EndTime = second.EndTime.Add(24 * time.Hour)
	// stored out of order on purpose
	_, err := repository.StoreEvent(ctx, userId, second)
	require.NoError(t, err)
	_, err = repository.StoreEvent(ctx, userId, first)
	require.NoError(t, err)

	events, err := repository.GetEvents(ctx, userId, first.StartTime, second.EndTime)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assertEventEqual(t, first, events[0])
	assertEventEqual(t, second, events[1])

	events, err = repository.GetEvents(ctx, userId, first.EndTime.Add(time.Hour), second.StartTime.Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRepositoryImpl_UpdateEventTimes(t *testing.T) {
	repository, ctx, userId := setupRepositoryTest(t)
	event := fixtureEvent()
	uid, err := repository.StoreEvent(ctx, userId, event)
	require.NoError(t, err)

	newStart := event.StartTime.Add(2 * time.Hour)
	newEnd := event.EndTime.Add(2 * time.Hour)
	require.NoError(t, repository.UpdateEventTimes(ctx, userId, uid, newStart, newEnd))

	stored, err := repository.GetEvent(ctx, userId, uid)
	require.NoError(t, err)
	assert.True(t, newStart.Equal(stored.StartTime))
	assert.True(t, newEnd.Equal(stored.EndTime))

	assert.ErrorIs(t, repository.UpdateEventTimes(ctx, userId, uuid.New(), newStart, newEnd), ErrEventNotFound)
	assert.Error(t, repository.UpdateEventTimes(ctx, userId, uid, newEnd, newStart), "range constraint")
}

func TestRepositoryImpl_DeleteEvent(t *testing.T) {
	repository, ctx, userId := setupRepositoryTest(t)
	uid, err := repository.StoreEvent(ctx, userId, fixtureEvent())
	require.NoError(t, err)

	require.NoError(t, repository.DeleteEvent(ctx, userId, uid))
	assert.ErrorIs(t, repository.DeleteEvent(ctx, userId, uid), ErrEventNotFound)
}

func TestRepositoryImpl_WithTransactionRollback(t *testing.T) {
	repository, ctx, userId := setupRepositoryTest(t)
	event := fixtureEvent()
	uid, err := repository.StoreEvent(ctx, userId, event)
	require.NoError(t, err)
	boom := errors.New("boom")

	err = repository.WithTransaction(ctx, func(repo Repository) error {
		if err := repo.UpdateEventTimes(ctx, userId, uid, event.StartTime.Add(time.Hour), event.EndTime.Add(time.Hour)); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	stored, err := repository.GetEvent(ctx, userId, uid)
	require.NoError(t, err)
	assert.True(t, event.StartTime.Equal(stored.StartTime))
}

func TestService_WithPostgres(t *testing.T) {
	repository, _, _ := setupRepositoryTest(t)
	scheduler, err := NewScheduler(time.UTC, DefaultSnapInterval, DefaultMinDuration, true)
	require.NoError(t, err)
	service := NewService(repository, scheduler, nil)
	ctx := test_utils.ContextWithTestUser(context.Background(), "America/Bogota")

	stored, err := service.AddEvent(ctx, fixtureEvent())
	require.NoError(t, err)

	moved, err := service.MoveEvent(ctx, stored.UID, time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-11T09:00:00.000Z", iso(&moved.StartTime))

	persisted, err := service.GetEvent(ctx, stored.UID)
	require.NoError(t, err)
	assert.True(t, moved.StartTime.Equal(persisted.StartTime))
}
