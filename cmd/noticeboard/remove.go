package main

import (
	"fmt"

	"github.com/spf13/cobra"

	noticeStore "noticeboard/internal/adapters/storage/notice"
	"noticeboard/internal/application/orchestrators"
)

var removeCmd = &cobra.Command{
	Use:     "remove [id]",
	Aliases: []string{"rm", "delete"},
	Short:   "Delete a notice by id",
	Args:    cobra.ExactArgs(1),
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

		if err := orchestrators.ExecuteDeleteNotice(cmd.Context(),
			orchestrators.DeleteNoticeInput{NoticeID: args[0]},
			orchestrators.DeleteNoticeDeps{NoticeStore: store},
		); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Notice deleted: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
