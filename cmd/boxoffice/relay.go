package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cimillas/boxoffice/internal/clock"
	"github.com/cimillas/boxoffice/internal/config"
	"github.com/cimillas/boxoffice/internal/logging"
	"github.com/cimillas/boxoffice/internal/metrics"
	"github.com/cimillas/boxoffice/internal/outbox"
	"github.com/cimillas/boxoffice/internal/storage/postgres"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRelayCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "relay",
		Short: "Run only the outbox relay, publishing order events to Redis streams",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pool, err := openPool(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer rdb.Close()

			relay, err := newRelay(cfg, rdb, postgres.NewOutboxRepository(pool, cfg.Outbox.TopicPrefix), metrics.New(), logger)
			if err != nil {
				return err
			}
			return relay.Run(ctx)
		},
	}
}

func newRelay(
	cfg config.Config,
	rdb redis.UniversalClient,
	store outbox.Store,
	m outbox.Metrics,
	logger *logrus.Logger,
) (*outbox.Relay, error) {
	entry := logrus.NewEntry(logger)
	publisher, err := outbox.NewRedisPublisher(rdb, logging.NewWatermill(entry))
	if err != nil {
		return nil, fmt.Errorf("create redis publisher: %w", err)
	}
	return outbox.NewRelay(store, publisher, clock.NewSystem(), entry, m, outbox.Config{
		PollInterval: cfg.Outbox.PollInterval,
		BatchSize:    cfg.Outbox.BatchSize,
	}), nil
}
