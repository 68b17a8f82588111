package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/cimillas/boxoffice/internal/clock"
	"github.com/cimillas/boxoffice/internal/logging"
	"github.com/cimillas/boxoffice/internal/outbox"
	"github.com/sirupsen/logrus"
)

type emptyOutbox struct{}

func (emptyOutbox) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (emptyOutbox) FetchPending(context.Context, int) ([]outbox.Message, error) { return nil, nil }

func (emptyOutbox) MarkPublished(context.Context, []int64, time.Time) error { return nil }

func quietLogger() *logrus.Logger {
	return logging.New(logging.Config{Level: "error"}, io.Discard)
}

func runInBackground(ctx context.Context, server *http.Server, relay *outbox.Relay) chan error {
	done := make(chan error, 1)
	go func() { done <- run(ctx, quietLogger(), server, time.Second, relay) }()
	return done
}

func waitRun(t *testing.T, done chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return")
		return nil
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	t.Parallel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })
	relay := outbox.NewRelay(emptyOutbox{}, pubSub, clock.NewSystem(), logrus.NewEntry(quietLogger()), nil,
		outbox.Config{PollInterval: 10 * time.Millisecond, BatchSize: 10})

	tests := []struct {
		name  string
		relay *outbox.Relay
	}{
		{name: "server only"},
		{name: "server and relay", relay: relay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
			done := runInBackground(ctx, server, tt.relay)

			time.Sleep(20 * time.Millisecond)
			cancel()

			if err := waitRun(t, done); err != nil {
				t.Fatalf("expected clean shutdown, got %v", err)
			}
		})
	}
}

func TestRun_ListenFailureStopsEverything(t *testing.T) {
	t.Parallel()

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer busy.Close()

	server := &http.Server{Addr: busy.Addr().String(), Handler: http.NotFoundHandler()}
	done := runInBackground(context.Background(), server, nil)

	if err := waitRun(t, done); err == nil {
		t.Fatal("expected the listen error")
	}
}
