package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cimillas/boxoffice/internal/config"
	"github.com/cimillas/boxoffice/internal/logging"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "boxoffice",
		Short:        "Event ticket inventory and order service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (default ./config/config.yaml)")

	load := func() (config.Config, *logrus.Logger, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return config.Config{}, nil, err
		}
		return cfg, logging.New(cfg.Log, os.Stderr), nil
	}

	root.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newRelayCmd(load),
	)
	return root
}

const defaultConnectTimeout = 5 * time.Second

type loader func() (config.Config, *logrus.Logger, error)

func openPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return pool, nil
}
