package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"noticeboard/internal/config"
)

var (
	configPath string
	dataPath   string
	backend    string
	verbose    bool
	logFormat  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "noticeboard",
	Short: "A shared noticeboard of short-lived announcements",
	Long: `noticeboard keeps a list of notices (title, Markdown content, display
duration) in a single JSON document or SQLite database, serves it over a
JSON API and a server-rendered board page, and administers it from the
command line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		opts := &slog.HandlerOptions{Level: level}

		var handler slog.Handler
		switch logFormat {
		case "text", "":
			handler = slog.NewTextHandler(os.Stderr, opts)
		case "json":
			handler = slog.NewJSONHandler(os.Stderr, opts)
		default:
			return fmt.Errorf("--log-format must be text or json, got %q", logFormat)
		}
		slog.SetDefault(slog.New(handler))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "notice document or database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "storage backend: json or sqlite (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
}

// loadConfig resolves defaults, the config file, environment and flags, in
// increasing order of precedence.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dataPath != "" {
		cfg.Storage.Path = dataPath
	}
	if backend != "" {
		cfg.Storage.Backend = backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
