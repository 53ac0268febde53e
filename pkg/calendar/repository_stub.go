package calendar

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RepositoryStub is an in-memory Repository used by service and handler tests.
type RepositoryStub struct {
	mu             sync.RWMutex
	items          map[uuid.UUID]Event
	userIds        map[uuid.UUID]string
	transactionErr error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		items:   make(map[uuid.UUID]Event),
		userIds: make(map[uuid.UUID]string),
	}
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	originalItems := make(map[uuid.UUID]Event, len(r.items))
	for k, v := range r.items {
		originalItems[k] = v
	}
	originalUserIds := make(map[uuid.UUID]string, len(r.userIds))
	for k, v := range r.userIds {
		originalUserIds[k] = v
	}
	r.mu.Unlock()

	err := fn(r)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		err = r.transactionErr
	}
	r.transactionErr = nil
	if err != nil {
		r.items = originalItems
		r.userIds = originalUserIds
		return err
	}
	return nil
}

func (r *RepositoryStub) StoreEvent(ctx context.Context, userId string, event Event) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	uid := uuid.New()
	event.UID = uid
	event.SourceType = sourceOrDefault(event.SourceType)
	r.items[uid] = event
	r.userIds[uid] = userId
	return uid, nil
}

func (r *RepositoryStub) GetEvent(ctx context.Context, userId string, eventUid uuid.UUID) (Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.items[eventUid]
	if !ok || r.userIds[eventUid] != userId {
		return Event{}, ErrEventNotFound
	}
	return event, nil
}

func (r *RepositoryStub) GetEvents(ctx context.Context, userId string, from, to time.Time) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Event, 0)
	for uid, event := range r.items {
		if r.userIds[uid] == userId && !event.StartTime.After(to) && !event.EndTime.Before(from) {
			result = append(result, event)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return result, nil
}

func (r *RepositoryStub) UpdateEventTimes(ctx context.Context, userId string, eventUid uuid.UUID, start, end time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.items[eventUid]
	if !ok || r.userIds[eventUid] != userId {
		return ErrEventNotFound
	}
	event.StartTime = start
	event.EndTime = end
	r.items[eventUid] = event
	return nil
}

func (r *RepositoryStub) DeleteEvent(ctx context.Context, userId string, eventUid uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[eventUid]; !ok || r.userIds[eventUid] != userId {
		return ErrEventNotFound
	}
	delete(r.items, eventUid)
	delete(r.userIds, eventUid)
	return nil
}

// SetTransactionError makes the next WithTransaction roll back with err.
func (r *RepositoryStub) SetTransactionError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactionErr = err
}
