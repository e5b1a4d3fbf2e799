package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matheuskafuri/blogreader/internal/article"
	"github.com/matheuskafuri/blogreader/internal/store"
	"github.com/spf13/cobra"
)

var (
	flagNewTitle       string
	flagNewCategory    string
	flagNewDescription string
	flagNewCover       string
	flagNewContent     string
	flagNewContentFile string
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create an article in the configured store",
	Example: `  blogreader new --title "Budgeting 101" --category "finance, lifestyle" \
    --description "Where the money goes" --cover https://example.com/c.jpg \
    --content-file post.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		content := flagNewContent
		if flagNewContentFile != "" {
			data, err := os.ReadFile(flagNewContentFile)
			if err != nil {
				return fmt.Errorf("reading content: %w", err)
			}
			content = string(data)
		}
		d := article.Draft{
			Title:       flagNewTitle,
			Category:    article.SplitCategories(flagNewCategory),
			Description: flagNewDescription,
			CoverImage:  flagNewCover,
			Content:     content,
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		return runNew(ctx, cmd.OutOrStdout(), s, d)
	},
}

func init() {
	newCmd.Flags().StringVar(&flagNewTitle, "title", "", "article title")
	newCmd.Flags().StringVar(&flagNewCategory, "category", "", "comma-separated categories")
	newCmd.Flags().StringVar(&flagNewDescription, "description", "", "short description")
	newCmd.Flags().StringVar(&flagNewCover, "cover", "", "cover image URL")
	newCmd.Flags().StringVar(&flagNewContent, "content", "", "article body, paragraphs separated by blank lines")
	newCmd.Flags().StringVar(&flagNewContentFile, "content-file", "", "read the article body from a file")
	newCmd.MarkFlagsMutuallyExclusive("content", "content-file")
}

func runNew(ctx context.Context, w io.Writer, s store.Writer, d article.Draft) error {
	// Validate before the round trip so every missing field is reported at once.
	if err := d.Validate(); err != nil {
		return err
	}
	a, err := s.CreateArticle(ctx, d)
	var verr *article.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	if err != nil {
		return fmt.Errorf("creating article: %w", err)
	}
	fmt.Fprintf(w, "Created article %d: %s\n", a.ID, a.Title)
	return nil
}
