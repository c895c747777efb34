package postgres

import (
	"context"
	"database/sql"

	"chargeapi/internal/model"
	"chargeapi/internal/repository"
)

// EventPostgres is a PostgreSQL implementation of repository.EventRepository.
type EventPostgres struct {
	db *sql.DB
}

// NewEventPostgres creates a new EventPostgres repository.
func NewEventPostgres(db *sql.DB) *EventPostgres {
	return &EventPostgres{db: db}
}

var _ repository.EventRepository = (*EventPostgres)(nil)

// MarkProcessed inserts the event key and reports whether this call claimed it.
func (r *EventPostgres) MarkProcessed(ctx context.Context, ev *model.ProcessedEvent) (bool, error) {
	const q = `
		INSERT INTO processed_events (processor, event_id, type, outcome, processed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (processor, event_id) DO NOTHING
	`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, ev.Processor, ev.EventID, ev.Type, ev.Outcome, ev.ProcessedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SetOutcome records how a claimed event was resolved.
func (r *EventPostgres) SetOutcome(ctx context.Context, processor model.Processor, eventID, outcome string) error {
	const q = `UPDATE processed_events SET outcome = $3 WHERE processor = $1 AND event_id = $2`
	_, err := conn(ctx, r.db).ExecContext(ctx, q, processor, eventID, outcome)
	return err
}
