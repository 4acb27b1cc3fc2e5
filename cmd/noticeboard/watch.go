package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	noticeStore "noticeboard/internal/adapters/storage/notice"
	"noticeboard/internal/adapters/watch"
	"noticeboard/internal/application/projections"
)

var watchQuiet time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the notice list and reprint it whenever the document changes",
	Long: `Watch follows the JSON document with filesystem notifications and
reprints the list after each change. Only the json backend is supported.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Storage.Backend != noticeStore.BackendJSON {
			return errors.New("watch supports the json backend only")
		}
		store, closeStore, err := noticeStore.Open(cfg.Storage.Backend, cfg.Storage.Path, nil)
		if err != nil {
			return err
		}
		defer closeStore()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		show := func() {
			notices, err := projections.ListNotices(ctx, projections.ListNoticesDeps{NoticeStore: store})
			if err != nil {
				slog.Error("watch_reload_failed", "error", err)
				return
			}
			fmt.Fprintf(out, "--- %s ---\n", time.Now().Format(time.TimeOnly))
			if err := printNotices(out, notices, false); err != nil {
				slog.Error("watch_print_failed", "error", err)
			}
		}

		w, err := watch.New(cfg.Storage.Path, watchQuiet)
		if err != nil {
			return err
		}
		slog.Info("watch_started", "path", w.Path())
		show()
		return w.Run(ctx, show)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchQuiet, "debounce", watch.DefaultQuiet, "quiet period before reprinting")
}
