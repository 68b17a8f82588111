package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cimillas/boxoffice/internal/app"
	"github.com/cimillas/boxoffice/internal/clock"
	"github.com/cimillas/boxoffice/internal/config"
	"github.com/cimillas/boxoffice/internal/metrics"
	"github.com/cimillas/boxoffice/internal/outbox"
	"github.com/cimillas/boxoffice/internal/storage/postgres"
	transporthttp "github.com/cimillas/boxoffice/internal/transport/http"
	"github.com/cimillas/boxoffice/migrations"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, and the outbox relay when enabled",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *logrus.Logger) error {
	pool, err := openPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		applied, err := migrations.Apply(ctx, pool)
		if err != nil {
			return err
		}
		logger.WithField("applied", applied).Info("migrations up to date")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	m := metrics.New()
	clk := clock.NewSystem()
	opts := []app.Option{
		app.WithOperationTimeout(cfg.App.OperationTimeout),
		app.WithTicketNumberRetries(cfg.App.TicketNumberRetries),
		app.WithMetrics(m),
	}

	outboxRepo := postgres.NewOutboxRepository(pool, cfg.Outbox.TopicPrefix)
	events := app.NewEventService(postgres.NewEventRepository(pool), clk, opts...)
	tickets := app.NewTicketService(postgres.NewTicketRepository(pool), clk, opts...)
	orders := app.NewOrderService(postgres.NewOrderRepository(pool), events, tickets, outboxRepo, clk, opts...)
	dashboard := app.NewDashboardService(postgres.NewDashboardRepository(pool), opts...)

	readyChecks := map[string]transporthttp.Pinger{"postgres": pool}
	if cfg.Outbox.Enabled {
		readyChecks["redis"] = transporthttp.PingerFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	handler := transporthttp.NewRouter(transporthttp.Deps{
		Orders:         orders,
		Events:         events,
		Tickets:        tickets,
		Dashboard:      dashboard,
		Logger:         logger,
		Metrics:        m,
		MetricsHandler: m.Handler(),
		ReadyChecks:    readyChecks,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	var relay *outbox.Relay
	if cfg.Outbox.Enabled {
		relay, err = newRelay(cfg, rdb, outboxRepo, m, logger)
		if err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	if err := run(ctx, logger, server, cfg.Server.ShutdownTimeout, relay); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// run serves until ctx is done, then shuts the server down. A nil relay is
// not started.
func run(ctx context.Context, logger *logrus.Logger, server *http.Server, shutdownTimeout time.Duration, relay *outbox.Relay) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", server.Addr).Info("api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if relay != nil {
		g.Go(func() error { return relay.Run(gctx) })
	}
	return g.Wait()
}
