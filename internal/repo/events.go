package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-bangunan/internal/events"
)

// Events persists domain events for the bus.
type Events struct {
	Pool *pgxpool.Pool
}

// InsertEvent stores an event row and returns it with its generated identity.
func (e *Events) InsertEvent(ctx context.Context, topic, aggregateID string, payload []byte) (events.Event, error) {
	var out events.Event
	err := e.Pool.QueryRow(ctx, `
		INSERT INTO domain_events (topic, aggregate_id, payload)
		VALUES ($1, $2, $3)
		RETURNING id, topic, aggregate_id, payload, occurred_at`,
		topic, aggregateID, payload).
		Scan(&out.ID, &out.Topic, &out.AggregateID, &out.Payload, &out.OccurredAt)
	return out, err
}
