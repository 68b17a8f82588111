package app

import (
	"context"
	"time"
)

const defaultOperationTimeout = 5 * time.Second

// Metrics receives workflow outcomes. *metrics.Metrics satisfies it.
type Metrics interface {
	OrderCompleted(tickets int)
	OrderCanceled()
	SeatConflict()
	TicketUsed()
}

type noopMetrics struct{}

func (noopMetrics) OrderCompleted(int) {}
func (noopMetrics) OrderCanceled()     {}
func (noopMetrics) SeatConflict()      {}
func (noopMetrics) TicketUsed()        {}

type options struct {
	timeout             time.Duration
	metrics             Metrics
	ticketNumberRetries int
	ticketNumbers       func() string
}

type Option func(*options)

// WithOperationTimeout bounds every call made through a service, storage
// round-trips included.
func WithOperationTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithMetrics(m Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTicketNumberRetries sets how many fresh numbers the issuer draws after
// a collision before giving up.
func WithTicketNumberRetries(n int) Option {
	return func(o *options) { o.ticketNumberRetries = n }
}

func buildOptions(opts []Option) options {
	o := options{
		timeout:             defaultOperationTimeout,
		metrics:             noopMetrics{},
		ticketNumberRetries: 3,
		ticketNumbers:       newTicketNumber,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.timeout)
}
