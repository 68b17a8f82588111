package main

import (
	"fmt"

	"github.com/cimillas/boxoffice/migrations"
	"github.com/spf13/cobra"
)

func newMigrateCmd(load loader) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			pool, err := openPool(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			if status {
				list, err := migrations.Status(ctx, pool)
				if err != nil {
					return err
				}
				for _, m := range list {
					state := "pending"
					if m.Applied {
						state = "applied"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", state, m.Name)
				}
				return nil
			}

			applied, err := migrations.Apply(ctx, pool)
			if err != nil {
				return err
			}
			logger.WithField("applied", applied).Info("migrations up to date")
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "list migrations and whether they are applied")
	return cmd
}
