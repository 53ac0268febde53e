package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrEventNotFound = errors.New("calendar event not found")

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	StoreEvent(ctx context.Context, userId string, event Event) (uuid.UUID, error)
	GetEvent(ctx context.Context, userId string, eventUid uuid.UUID) (Event, error)
	GetEvents(ctx context.Context, userId string, from, to time.Time) ([]Event, error)
	UpdateEventTimes(ctx context.Context, userId string, eventUid uuid.UUID, start, end time.Time) error
	DeleteEvent(ctx context.Context, userId string, eventUid uuid.UUID) error
}

// querier is implemented by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type RepositoryImpl struct {
	pool *pgxpool.Pool
	q    querier
}

func NewRepository(pool *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{pool: pool, q: pool}
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// no-op once committed
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	if err := fn(&RepositoryImpl{pool: r.pool, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) StoreEvent(ctx context.Context, userId string, event Event) (uuid.UUID, error) {
	query := `INSERT INTO calendar_event (uid, user_id, title, start_time, end_time, all_day, read_only, source_type)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	uid := uuid.New()
	_, err := r.q.Exec(ctx, query, uid, userId, event.Title, event.StartTime, event.EndTime, event.AllDay, event.ReadOnly, string(sourceOrDefault(event.SourceType)))
	if err != nil {
		err := fmt.Errorf("could not insert calendar event: %w", err)
		log.Error(err)
		return uuid.Nil, err
	}
	return uid, nil
}

func (r *RepositoryImpl) GetEvent(ctx context.Context, userId string, eventUid uuid.UUID) (Event, error) {
	query := `SELECT uid, title, start_time, end_time, all_day, read_only, source_type
			  FROM calendar_event
			  WHERE uid = $1 AND user_id = $2`

	event, err := scanEvent(r.q.QueryRow(ctx, query, eventUid, userId))
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrEventNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not query calendar event %s: %w", eventUid, err)
		log.Error(err)
		return Event{}, err
	}
	return event, nil
}

// GetEvents returns the events overlapping [from, to], ordered by start time.
func (r *RepositoryImpl) GetEvents(ctx context.Context, userId string, from, to time.Time) ([]Event, error) {
	query := `SELECT uid, title, start_time, end_time, all_day, read_only, source_type
			  FROM calendar_event
			  WHERE user_id = $1
			    AND start_time <= $2
			    AND end_time >= $3
			  ORDER BY start_time`

	rows, err := r.q.Query(ctx, query, userId, to, from)
	if err != nil {
		err := fmt.Errorf("could not query calendar events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, 10)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not read calendar events: %w", err)
	}
	return events, nil
}

func (r *RepositoryImpl) UpdateEventTimes(ctx context.Context, userId string, eventUid uuid.UUID, start, end time.Time) error {
	query := `UPDATE calendar_event SET start_time = $1, end_time = $2 WHERE uid = $3 AND user_id = $4`

	tag, err := r.q.Exec(ctx, query, start, end, eventUid, userId)
	if err != nil {
		err := fmt.Errorf("could not update calendar event %s: %w", eventUid, err)
		log.Error(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *RepositoryImpl) DeleteEvent(ctx context.Context, userId string, eventUid uuid.UUID) error {
	query := `DELETE FROM calendar_event WHERE uid = $1 AND user_id = $2`

	tag, err := r.q.Exec(ctx, query, eventUid, userId)
	if err != nil {
		err := fmt.Errorf("could not delete calendar event %s: %w", eventUid, err)
		log.Error(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func scanEvent(row pgx.Row) (Event, error) {
	var event Event
	var sourceType string
	err := row.Scan(&event.UID, &event.Title, &event.StartTime, &event.EndTime, &event.AllDay, &event.ReadOnly, &sourceType)
	if err != nil {
		return Event{}, err
	}
	event.SourceType = SourceType(sourceType)
	return event, nil
}

func sourceOrDefault(s SourceType) SourceType {
	if s == "" {
		return SourceEvent
	}
	return s
}
