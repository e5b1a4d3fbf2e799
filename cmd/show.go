package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/matheuskafuri/blogreader/internal/article"
	"github.com/matheuskafuri/blogreader/internal/store"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid article id %q", args[0])
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
		return runShow(ctx, cmd.OutOrStdout(), s, id)
	},
}

func runShow(ctx context.Context, w io.Writer, s store.Reader, id int) error {
	a, err := s.GetArticle(ctx, id)
	if errors.Is(err, article.ErrNotFound) {
		return fmt.Errorf("no article with id %d", id)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(w, a.Title)
	fmt.Fprintln(w, strings.Repeat("=", len([]rune(a.Title))))
	fmt.Fprintf(w, "%s | %d min read | %s\n", article.CategoryLine(a.Category), article.ReadTime(a.Content), article.FormatDate(a.Date))
	if a.Description != "" {
		fmt.Fprintf(w, "\n%s\n", a.Description)
	}
	for _, p := range article.Paragraphs(a.Content) {
		fmt.Fprintf(w, "\n%s\n", p)
	}
	if tags := article.Tags(a.Category); len(tags) > 0 {
		fmt.Fprintf(w, "\n%s\n", strings.Join(tags, " "))
	}
	if a.CoverImage != "" {
		fmt.Fprintf(w, "Cover: %s\n", a.CoverImage)
	}
	return nil
}
