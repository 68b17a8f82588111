// Package outbox forwards order events, written transactionally next to the
// orders they describe, to the message broker.
package outbox

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cimillas/boxoffice/internal/clock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const correlationIDMetadata = "correlation_id"

// Message is a stored, not yet published outbox row.
type Message struct {
	ID            int64
	Topic         string
	Payload       []byte
	CorrelationID string
	CreatedAt     time.Time
}

type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	FetchPending(ctx context.Context, limit int) ([]Message, error)
	MarkPublished(ctx context.Context, ids []int64, at time.Time) error
}

type Metrics interface {
	OutboxPublished(topic string)
}

type Config struct {
	PollInterval time.Duration
	BatchSize    int
}

// Relay polls the store and publishes pending messages. Delivery is
// at-least-once: a crash between publish and commit republishes the batch,
// and consumers de-duplicate on the message UUID, which is the outbox row id.
type Relay struct {
	store     Store
	publisher message.Publisher
	clock     clock.Clock
	logger    *logrus.Entry
	metrics   Metrics
	cfg       Config
}

func NewRelay(store Store, publisher message.Publisher, clk clock.Clock, logger *logrus.Entry, metrics Metrics, cfg Config) *Relay {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Relay{
		store:     store,
		publisher: publisher,
		clock:     clk,
		logger:    logger.WithField("component", "outbox"),
		metrics:   metrics,
		cfg:       cfg,
	}
}

// Run forwards batches until ctx is canceled. A failed batch is logged and
// retried on the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	r.logger.WithField("interval", r.cfg.PollInterval).Info("outbox relay started")
	for {
		for {
			n, err := r.Forward(ctx)
			if err != nil {
				if ctx.Err() != nil {
					break
				}
				r.logger.WithError(err).Error("forward outbox batch")
				break
			}
			if n < r.cfg.BatchSize {
				break
			}
		}

		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Forward publishes one batch and returns how many messages it sent.
func (r *Relay) Forward(ctx context.Context) (int, error) {
	var sent int
	err := r.store.WithTx(ctx, func(txCtx context.Context) error {
		msgs, err := r.store.FetchPending(txCtx, r.cfg.BatchSize)
		if err != nil {
			return err
		}
		if len(msgs) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(msgs))
		for _, m := range msgs {
			if err := r.publish(m); err != nil {
				return err
			}
			ids = append(ids, m.ID)
		}
		if err := r.store.MarkPublished(txCtx, ids, r.clock.Now()); err != nil {
			return err
		}
		sent = len(msgs)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if sent > 0 {
		r.logger.WithField("count", sent).Debug("outbox batch forwarded")
	}
	return sent, nil
}

func (r *Relay) publish(m Message) error {
	msg := message.NewMessage(messageUUID(m), m.Payload)
	if m.CorrelationID != "" {
		msg.Metadata.Set(correlationIDMetadata, m.CorrelationID)
	}
	msg.Metadata.Set("created_at", m.CreatedAt.Format(time.RFC3339Nano))

	if err := r.publisher.Publish(m.Topic, msg); err != nil {
		return fmt.Errorf("publish outbox message %d to %s: %w", m.ID, m.Topic, err)
	}
	if r.metrics != nil {
		r.metrics.OutboxPublished(m.Topic)
	}
	return nil
}

// messageNamespace scopes the name-based UUIDs of relayed messages.
var messageNamespace = uuid.MustParse("5b0f3c1e-8a57-4f8e-9a43-2f6d0c7e1b94")

// messageUUID is stable for a row, so a message relayed twice keeps its UUID
// and consumers can drop the duplicate. The creation time keeps ids distinct
// when the sequence restarts.
func messageUUID(m Message) string {
	name := strconv.FormatInt(m.ID, 10) + "/" + m.CreatedAt.UTC().Format(time.RFC3339Nano)
	return uuid.NewSHA1(messageNamespace, []byte(name)).String()
}
