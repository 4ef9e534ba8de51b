package main

import (
	"fmt"
	"log"

	"taskerhub/backend/internal/config"
	"taskerhub/backend/internal/monitoring"
	"taskerhub/backend/internal/server"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API on HOST:PORT.

Examples:
  taskerd serve
  STORE_BACKEND=mongo taskerd serve --migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			ctx := cmd.Context()

			b, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.store.Close()

			if autoMigrate {
				if err := b.migrate(ctx); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				log.Println("Schema is up to date")
			}

			c, cacheStats := openCache(ctx, cfg)
			defer c.Close()

			geo, geoStats, err := newGeocoder(cfg)
			if err != nil {
				return err
			}

			components := map[string]monitoring.StatsFunc{"database": b.stats}
			if cacheStats != nil {
				components["cache"] = cacheStats
			}
			if geoStats != nil {
				components["geocoder"] = geoStats
			}

			srv := server.New(cfg, server.Deps{
				Store:      b.store,
				Cache:      c,
				Geocoder:   geo,
				Components: components,
			})
			return srv.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply schema and indexes before serving")

	return cmd
}
