package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cimillas/boxoffice/internal/domain"
	"github.com/cimillas/boxoffice/internal/logging"
	"github.com/cimillas/boxoffice/internal/outbox"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OutboxRepository stores integration events next to the rows they describe
// and hands them to the relay.
type OutboxRepository struct {
	db
	topicPrefix string
}

func NewOutboxRepository(pool *pgxpool.Pool, topicPrefix string) *OutboxRepository {
	return &OutboxRepository{db: db{pool: pool}, topicPrefix: topicPrefix}
}

// RecordOrderEvent must run inside the transaction that changed the order.
func (r *OutboxRepository) RecordOrderEvent(ctx context.Context, evt domain.OrderEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	const stmt = `
INSERT INTO outbox_messages (topic, payload, correlation_id, created_at)
VALUES ($1, $2, $3, $4)`

	_, err = r.exec(ctx, stmt, r.Topic(evt.Name), payload, logging.CorrelationIDFromContext(ctx), evt.OccurredAt)
	if err != nil {
		return fmt.Errorf("record order event: %w", err)
	}
	return nil
}

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// Topic maps OrderCompleted to "<prefix>.order_completed".
func (r *OutboxRepository) Topic(name domain.OrderEventName) string {
	snake := strings.ToLower(camelBoundary.ReplaceAllString(string(name), "${1}_${2}"))
	if r.topicPrefix == "" {
		return snake
	}
	return r.topicPrefix + "." + snake
}

// FetchPending locks up to limit unpublished messages, oldest first. Rows
// locked by another relay are skipped.
func (r *OutboxRepository) FetchPending(ctx context.Context, limit int) ([]outbox.Message, error) {
	const query = `
SELECT id, topic, payload, correlation_id, created_at
FROM outbox_messages
WHERE published_at IS NULL
ORDER BY id
LIMIT $1
FOR UPDATE SKIP LOCKED`

	rows, err := r.query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch outbox: %w", err)
	}
	defer rows.Close()

	var msgs []outbox.Message
	for rows.Next() {
		var m outbox.Message
		if err := rows.Scan(&m.ID, &m.Topic, &m.Payload, &m.CorrelationID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate outbox: %w", rows.Err())
	}
	return msgs, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.exec(ctx, `UPDATE outbox_messages SET published_at = $2 WHERE id = ANY ($1)`, ids, at)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
