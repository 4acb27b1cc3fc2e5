package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	web "noticeboard/internal/adapters/http"
	"noticeboard/internal/adapters/perf"
	noticeStore "noticeboard/internal/adapters/storage/notice"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Serve the JSON API under /api, the board page at /, /healthz and
/metrics. Stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		collector := perf.NewCollector(perf.DefaultRingSize)
		store, closeStore, err := noticeStore.Open(cfg.Storage.Backend, cfg.Storage.Path, collector)
		if err != nil {
			return err
		}
		defer closeStore()

		gate, err := buildGate(cfg)
		if err != nil {
			return err
		}

		handler, err := web.NewMux(ctx, buildWebDeps(cfg, store, gate, collector))
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			slog.Info("server_started", "addr", cfg.Server.Addr, "backend", cfg.Storage.Backend, "path", cfg.Storage.Path, "env", cfg.Env)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		slog.Info("server_stopping", "timeout", cfg.Server.ShutdownTimeout.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		slog.Info("server_stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
