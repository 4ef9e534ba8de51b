package main

import (
	"fmt"

	"taskerhub/backend/internal/config"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables (gorm) or indexes (mongo) for the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			b, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.store.Close()

			if err := b.migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s store\n", cfg.Store.Backend)
			return nil
		},
	}
}
