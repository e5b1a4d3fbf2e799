package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/matheuskafuri/blogreader/internal/article"
	"github.com/matheuskafuri/blogreader/internal/classify"
	"github.com/matheuskafuri/blogreader/internal/query"
	"github.com/matheuskafuri/blogreader/internal/store"
	"github.com/spf13/cobra"
)

type listOptions struct {
	Search     string
	Categories []string
	Sort       string
	Since      time.Duration
	Now        time.Time
}

var (
	flagListSearch     string
	flagListCategories []string
	flagListSort       string
	flagListSince      string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print articles matching a search",
	Long: `Print the filtered and sorted article list without starting the TUI.

Categories accept a label (TECH) or a short alias (tech, fin, edu, life...).
Repeat --category to match any of several labels.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts := listOptions{
			Search:     flagListSearch,
			Categories: flagListCategories,
			Sort:       flagListSort,
			Now:        time.Now(),
		}
		if opts.Sort == "" {
			opts.Sort = cfg.SortOrder().String()
		}
		if flagListSince != "" {
			d, err := parseSince(flagListSince)
			if err != nil {
				return fmt.Errorf("invalid --since value: %w", err)
			}
			opts.Since = d
		}

		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		return runList(ctx, cmd.OutOrStdout(), s, opts)
	},
}

func init() {
	listCmd.Flags().StringVarP(&flagListSearch, "search", "q", "", "match title or description (case-insensitive)")
	listCmd.Flags().StringArrayVarP(&flagListCategories, "category", "c", nil, "filter by category label or alias (repeatable)")
	listCmd.Flags().StringVar(&flagListSort, "sort", "", "newest or oldest (default from config)")
	listCmd.Flags().StringVar(&flagListSince, "since", "", "only articles published within this window (e.g., 7d, 48h)")
}

func runList(ctx context.Context, w io.Writer, s store.Reader, opts listOptions) error {
	order, err := query.ParseSortOrder(opts.Sort)
	if err != nil {
		return err
	}
	cats := query.NewCategorySet()
	for _, c := range opts.Categories {
		cats.Add(categoryLabel(c))
	}

	articles, err := s.ListArticles(ctx)
	if err != nil {
		return err
	}
	if opts.Since > 0 {
		cutoff := opts.Now.Add(-opts.Since)
		recent := articles[:0:0]
		for _, a := range articles {
			if a.Published().After(cutoff) {
				recent = append(recent, a)
			}
		}
		articles = recent
	}

	res := query.Run(articles, query.Query{Term: opts.Search, Categories: cats, Sort: order})

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCATEGORIES\tTITLE")
	for _, a := range res.Articles {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", a.ID, listDate(a.Date), strings.Join(a.Category, ","), a.Title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, query.Report{Count: res.Count, Total: res.Total})
	return nil
}

// categoryLabel resolves aliases, falling back to the upper-cased input so
// labels outside the built-in set still filter.
func categoryLabel(raw string) string {
	if cat, err := classify.ResolveAlias(raw); err == nil {
		return string(cat)
	}
	return strings.ToUpper(strings.TrimSpace(raw))
}

func listDate(s string) string {
	t, ok := article.ParseDate(s)
	if !ok {
		return "-"
	}
	return t.Format("2006-01-02")
}
