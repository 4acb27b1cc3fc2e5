package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	noticeStore "noticeboard/internal/adapters/storage/notice"
	"noticeboard/internal/application/orchestrators"
)

var (
	addTitle    string
	addContent  string
	addDuration float64
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Post a notice",
	Long:  `Add appends a notice to the configured store. Content may contain Markdown.`,
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

		n, err := orchestrators.ExecuteCreateNotice(cmd.Context(), orchestrators.CreateNoticeInput{
			Title:    addTitle,
			Content:  addContent,
			Duration: addDuration,
		}, orchestrators.CreateNoticeDeps{
			NoticeStore: store,
			GenerateID:  func() string { return uuid.New().String() },
			Now:         time.Now,
			Announcer:   buildAnnouncer(cfg),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Notice created: %s\n", n.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "Notice title")
	addCmd.Flags().StringVar(&addContent, "content", "", "Notice content (Markdown)")
	addCmd.Flags().Float64VarP(&addDuration, "duration", "d", 0, "Display duration in seconds")
	addCmd.MarkFlagRequired("title")
	addCmd.MarkFlagRequired("content")
	addCmd.MarkFlagRequired("duration")
}
