package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/matheuskafuri/blogreader/internal/config"
	"github.com/matheuskafuri/blogreader/internal/logging"
	"github.com/matheuskafuri/blogreader/internal/store"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagRefresh bool
	flagConfig  string
	flagStore   string
)

var logCloser io.Closer

var rootCmd = &cobra.Command{
	Use:   "blogreader",
	Short: "Terminal blog reader",
	Long: `blogreader lists blog articles from a REST service, a db.json file or a local
library, and lets you search, filter by category and sort them as you type.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		closer, err := logging.Setup(config.LogPath(), logLevel())
		if err != nil {
			// Logging is best effort; keep the terminal clean.
			logging.Discard()
			return nil
		}
		logCloser = closer
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "override store.backend (api, file, local)")
	rootCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "sync feeds into the local library before launching")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "blogreader %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagStore != "" {
		cfg.Store.Backend = flagStore
		if flagStore == config.BackendAPI && cfg.Store.URL == "" {
			return nil, fmt.Errorf("--store api needs store.url in the config")
		}
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	s, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return s, nil
}

// logLevel peeks at the config before commands run. Errors surface later
// when the command loads it properly.
func logLevel() slog.Level {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return slog.LevelInfo
	}
	return cfg.Level()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
