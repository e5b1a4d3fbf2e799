// Package feed imports RSS and Atom items as articles.
package feed

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/matheuskafuri/blogreader/internal/article"
	"github.com/matheuskafuri/blogreader/internal/cache"
	"github.com/matheuskafuri/blogreader/internal/classify"
	"github.com/matheuskafuri/blogreader/internal/config"
	"github.com/matheuskafuri/blogreader/internal/logging"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
)

const (
	descriptionLimit = 300
	maxConcurrent    = 4
)

type Fetcher interface {
	Fetch(ctx context.Context, feed config.Feed) ([]cache.Entry, error)
}

type RSSFetcher struct {
	parser *gofeed.Parser
	maxAge time.Duration
	now    func() time.Time
}

// NewRSSFetcher skips items published more than maxAge ago. Zero keeps
// everything.
func NewRSSFetcher(maxAge time.Duration) *RSSFetcher {
	return &RSSFetcher{parser: gofeed.NewParser(), maxAge: maxAge, now: time.Now}
}

func (f *RSSFetcher) Fetch(ctx context.Context, src config.Feed) ([]cache.Entry, error) {
	parsed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src.Name, err)
	}

	now := f.now()
	entries := make([]cache.Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.Link == "" || item.Title == "" {
			continue
		}
		pub := now
		if item.PublishedParsed != nil {
			pub = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			pub = *item.UpdatedParsed
		}
		if f.maxAge > 0 && pub.Before(now.Add(-f.maxAge)) {
			continue
		}
		entries = append(entries, cache.Entry{
			Key:     "feed:" + articleID(item.Link),
			Article: toArticle(item, pub),
		})
	}
	return entries, nil
}

func toArticle(item *gofeed.Item, pub time.Time) article.Article {
	body := item.Content
	if body == "" {
		body = item.Description
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	var paragraphs []string
	cover := itemImage(item)
	if err == nil {
		paragraphs = htmlParagraphs(doc)
		if cover == "" {
			cover, _ = doc.Find("img[src]").First().Attr("src")
		}
	}

	desc := htmlText(item.Description)
	if desc == "" && len(paragraphs) > 0 {
		desc = paragraphs[0]
	}
	desc = truncate(desc, descriptionLimit)

	return article.Article{
		Title:       strings.TrimSpace(item.Title),
		Category:    labels(item.Categories, item.Title, desc),
		Description: desc,
		CoverImage:  cover,
		Content:     strings.Join(paragraphs, "\n\n"),
		Date:        article.FormatTimestamp(pub),
	}
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

// labels upper-cases the feed's own categories, falling back to keyword
// classification when the item has none.
func labels(categories []string, title, desc string) []string {
	seen := make(map[string]bool, len(categories))
	var out []string
	for _, c := range categories {
		label := strings.ToUpper(strings.TrimSpace(c))
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, label)
	}
	if len(out) == 0 {
		out = []string{string(classify.Classify(title, desc))}
	}
	return out
}

// htmlParagraphs returns the text of each block element, or the whole body
// as one paragraph when it has no block markup.
func htmlParagraphs(doc *goquery.Document) []string {
	var out []string
	doc.Find("p, li, blockquote, h1, h2, h3, h4, pre").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("p, li, blockquote").Length() > 0 {
			return
		}
		if text := collapse(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	if len(out) == 0 {
		if text := collapse(doc.Text()); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func htmlText(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapse(s)
	}
	return collapse(doc.Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func articleID(link string) string {
	h := sha256.Sum256([]byte(link))
	return fmt.Sprintf("%x", h[:16])
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

type FetchResult struct {
	Entries []cache.Entry
	Errors  []error
}

// FetchAll fetches every feed concurrently. A failing feed is reported in
// Errors and does not stop the others.
func FetchAll(ctx context.Context, f Fetcher, feeds []config.Feed) FetchResult {
	var (
		mu     sync.Mutex
		result FetchResult
	)
	logger := logging.WithComponent("feed")

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for _, src := range feeds {
		g.Go(func() error {
			entries, err := f.Fetch(ctx, src)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("feed failed", "feed", src.Name, "error", err)
				result.Errors = append(result.Errors, err)
				return nil
			}
			logger.Debug("feed fetched", "feed", src.Name, "items", len(entries))
			result.Entries = append(result.Entries, entries...)
			return nil
		})
	}
	_ = g.Wait()
	return result
}
