package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"emergence/internal/config"
	"emergence/internal/observe"
	"emergence/internal/server"
	"emergence/internal/store"
	"emergence/internal/store/postgres"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis HTTP service",
	Long: `Serve starts the HTTP service: transcript analysis, stored-result
queries, the tool status grid, health probes, and Prometheus metrics.

When started with --config, the file is watched and threshold changes apply
without restart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
			ServiceName:    "emergence",
			ServiceVersion: version,
		})
		if err != nil {
			return err
		}
		defer func() {
			sdCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sdCtx); err != nil {
				slog.Error("telemetry shutdown", "err", err)
			}
		}()

		// Static config unless a file was given; then hot-reload via watcher.
		cfgFn := func() *config.Config { return cfg }
		if cfgPath != "" {
			watcher, err := config.NewWatcher(cfgPath, func(_, cur *config.Config) {
				slog.Info("configuration reloaded",
					"emergence_threshold", cur.Scoring.EmergenceThreshold)
			})
			if err != nil {
				return err
			}
			defer watcher.Stop()
			cfgFn = watcher.Current
		}

		var st store.Store
		if dsn := cfgFn().Store.PostgresDSN; dsn != "" {
			pg, err := postgres.NewStore(ctx, dsn)
			if err != nil {
				return err
			}
			defer pg.Close()
			st = pg
			slog.Info("observation store connected")
		} else {
			slog.Info("no observation store configured; running file-only")
		}

		srv, err := server.New(cfgFn, st, observe.DefaultMetrics())
		if err != nil {
			return err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return srv.Run(gctx) })
		return g.Wait()
	},
}
