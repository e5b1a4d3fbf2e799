package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matheuskafuri/blogreader/internal/cache"
	"github.com/matheuskafuri/blogreader/internal/config"
	"github.com/spf13/cobra"
)

var flagPruneOlderThan string

// cachePath is the SQLite database behind the configured backend: the local
// library itself, or the offline mirror of the api backend.
func cachePath(cfg *config.Config) (string, error) {
	switch cfg.Store.Backend {
	case config.BackendLocal:
		return cfg.StorePath(), nil
	case config.BackendAPI:
		return config.CachePath("mirror.db"), nil
	default:
		return "", fmt.Errorf("the %s backend has no local cache", cfg.Store.Backend)
	}
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old articles from the local cache",
	Long: `Delete cached articles older than the retention period and reclaim disk space.

Uses the retention value from config (default: 90d) unless overridden with --older-than.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dbPath, err := cachePath(cfg)
		if err != nil {
			return err
		}

		db, err := cache.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		retention := cfg.RetentionDuration()
		if flagPruneOlderThan != "" {
			d, err := parseSince(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}

		deleted, err := db.Prune(retention)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		out := cmd.OutOrStdout()
		if deleted == 0 {
			fmt.Fprintln(out, "Nothing to prune.")
		} else {
			fmt.Fprintf(out, "Pruned %d article(s) older than %s.\n", deleted, formatDuration(retention))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dbPath, err := cachePath(cfg)
		if err != nil {
			return err
		}
		db, err := cache.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		count, size, err := db.Stats(dbPath)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Cache: %s\n", dbPath)
		fmt.Fprintf(out, "Articles: %d\n", count)
		fmt.Fprintf(out, "Size: %s\n", formatBytes(size))
		if last := db.LastRefresh(); !last.IsZero() {
			fmt.Fprintf(out, "Last refresh: %s\n", last.Local().Format("Jan 2, 2006 15:04"))
		} else {
			fmt.Fprintln(out, "Last refresh: never")
		}
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import articles from the configured RSS feeds",
	Long: `Fetch every enabled feed and store new items in the local library
(store.backend: local). Items without categories are labelled by keyword.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dbPath := cfg.StorePath()
		if cfg.Store.Backend != config.BackendLocal {
			dbPath = config.CachePath("local.db")
		}
		db, err := cache.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening library: %w", err)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()

		out := cmd.OutOrStdout()
		n, errs := syncFeeds(ctx, db, cfg)
		for _, e := range errs {
			fmt.Fprintf(out, "  [warn] %v\n", e)
		}
		fmt.Fprintf(out, "Imported %d article(s) into %s from: %s\n", n, dbPath, strings.Join(cfg.FeedNames(), ", "))
		if cfg.Store.Backend != config.BackendLocal {
			fmt.Fprintln(out, "Run with --store local to browse them.")
		}
		return nil
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override retention period (e.g., 30d, 720h)")
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
