package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	noticeStore "noticeboard/internal/adapters/storage/notice"
	"noticeboard/internal/application/projections"
	"noticeboard/internal/domain/notice"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all notices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, closeStore, err := noticeStore.Open(cfg.Storage.Backend, cfg.Storage.Path, nil)
		if err != nil {
			return err
		}
		defer closeStore()

		notices, err := projections.ListNotices(cmd.Context(), projections.ListNoticesDeps{NoticeStore: store})
		if err != nil {
			return err
		}
		return printNotices(cmd.OutOrStdout(), notices, listJSON)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
}

// printNotices writes notices as an indented JSON array or an aligned table.
func printNotices(w io.Writer, notices []notice.Notice, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(notices)
	}
	if len(notices) == 0 {
		_, err := fmt.Fprintln(w, "No notices.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDURATION\tCREATED")
	for _, n := range notices {
		fmt.Fprintf(tw, "%s\t%s\t%ss\t%s\n", n.ID, n.Title, strconv.FormatFloat(n.Duration, 'f', -1, 64), n.CreatedAtISO)
	}
	return tw.Flush()
}
