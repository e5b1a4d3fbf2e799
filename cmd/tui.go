package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/matheuskafuri/blogreader/internal/cache"
	"github.com/matheuskafuri/blogreader/internal/config"
	"github.com/matheuskafuri/blogreader/internal/feed"
	"github.com/matheuskafuri/blogreader/internal/logging"
	"github.com/matheuskafuri/blogreader/internal/tui"
	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := tui.RunOpts{Store: s, Config: cfg}

	// The local library is fed from RSS, so "r" and stale caches sync feeds.
	if db, ok := s.(*cache.Cache); ok {
		if flagRefresh || db.NeedsRefresh(cfg.RefreshDuration()) {
			fmt.Fprintln(cmd.OutOrStdout(), "Fetching feeds...")
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			_, errs := syncFeeds(ctx, db, cfg)
			cancel()
			for _, e := range errs {
				fmt.Fprintf(cmd.OutOrStdout(), "  [warn] %v\n", e)
			}
		}
		opts.Refresh = func(ctx context.Context) (int, []error) {
			return syncFeeds(ctx, db, cfg)
		}
	}

	return tui.Run(opts)
}

// syncFeeds imports the enabled feeds into db, records the refresh and
// prunes articles past retention.
func syncFeeds(ctx context.Context, db *cache.Cache, cfg *config.Config) (int, []error) {
	logger := logging.WithComponent("sync")
	result := feed.FetchAll(ctx, feed.NewRSSFetcher(cfg.RetentionDuration()), cfg.EnabledFeeds())
	errs := result.Errors

	if err := db.UpsertArticles(result.Entries); err != nil {
		return 0, append(errs, fmt.Errorf("caching articles: %w", err))
	}
	if err := db.SetLastRefresh(); err != nil {
		logger.Warn("recording refresh", "error", err)
	}

	// Auto-prune old articles after refresh
	if n, err := db.Prune(cfg.RetentionDuration()); err != nil {
		logger.Warn("pruning", "error", err)
	} else if n > 0 {
		logger.Info("pruned articles", "count", n)
	}
	logger.Info("feeds synced", "articles", len(result.Entries), "failures", len(errs))
	return len(result.Entries), errs
}

// parseSince parses --since and --older-than windows. The window must be
// positive.
func parseSince(s string) (time.Duration, error) {
	d, err := config.ParseDays(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("window must be positive, got %q", s)
	}
	return d, nil
}
