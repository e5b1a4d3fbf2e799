package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matheuskafuri/blogreader/internal/cache"
	"github.com/matheuskafuri/blogreader/internal/config"
	"github.com/mmcdole/gofeed"
)

func TestArticleID(t *testing.T) {
	id1 := articleID("https://example.com/post-1")
	id2 := articleID("https://example.com/post-2")
	id1again := articleID("https://example.com/post-1")

	if id1 == id2 {
		t.Error("different URLs should produce different IDs")
	}
	if id1 != id1again {
		t.Error("same URL should produce same ID")
	}
	if len(id1) != 32 {
		t.Errorf("expected 32-char hex string, got %d chars: %s", len(id1), id1)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a long string", 10, "this is..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		got := truncate(tt.input, tt.n)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
		}
	}
}

func TestTruncateUTF8(t *testing.T) {
	// Japanese characters are multi-byte but should truncate by rune
	input := "こんにちは世界です"
	got := truncate(input, 5)
	want := "こん..."
	if got != want {
		t.Errorf("truncate(%q, 5) = %q, want %q", input, got, want)
	}
}

func TestHTMLText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<p>Hello</p>", "Hello"},
		{"<b>Bold</b> and <i>italic</i>", "Bold and italic"},
		{"No tags here", "No tags here"},
		{"<div>  Multiple   spaces  </div>", "Multiple spaces"},
		{"", ""},
		{"<a href=\"url\">Link</a> text", "Link text"},
		{"Fish &amp; chips", "Fish & chips"},
	}
	for _, tt := range tests {
		got := htmlText(tt.input)
		if got != tt.want {
			t.Errorf("htmlText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLabels(t *testing.T) {
	got := labels([]string{" finance ", "Finance", "", "career"}, "", "")
	if len(got) != 2 || got[0] != "FINANCE" || got[1] != "CAREER" {
		t.Errorf("expected [FINANCE CAREER], got %v", got)
	}

	got = labels(nil, "Acing Your Job Interview", "")
	if len(got) != 1 || got[0] != "CAREER" {
		t.Errorf("expected classified CAREER label, got %v", got)
	}
}

func TestToArticle(t *testing.T) {
	pub := time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC)
	item := &gofeed.Item{
		Title:       "  Saving for Retirement ",
		Description: "<p>Start <b>early</b>.</p>",
		Content: `<p>First paragraph.</p>
<img src="https://img.example.com/cover.jpg">
<ul><li>Point <em>one</em></li></ul>
<p>Second
   paragraph.</p>`,
	}

	a := toArticle(item, pub)
	if a.Title != "Saving for Retirement" {
		t.Errorf("unexpected title %q", a.Title)
	}
	if a.Description != "Start early." {
		t.Errorf("unexpected description %q", a.Description)
	}
	if a.CoverImage != "https://img.example.com/cover.jpg" {
		t.Errorf("expected first image as cover, got %q", a.CoverImage)
	}
	want := "First paragraph.\n\nPoint one\n\nSecond paragraph."
	if a.Content != want {
		t.Errorf("content = %q, want %q", a.Content, want)
	}
	if a.Date != "2024-04-02T09:30:00.000Z" {
		t.Errorf("unexpected date %q", a.Date)
	}
	if len(a.Category) != 1 || a.Category[0] != "FINANCE" {
		t.Errorf("expected classified FINANCE, got %v", a.Category)
	}
}

func TestToArticlePrefersItemImage(t *testing.T) {
	item := &gofeed.Item{
		Title:      "x",
		Content:    `<p><img src="https://inline"></p>`,
		Enclosures: []*gofeed.Enclosure{{URL: "https://enclosure", Type: "image/png"}},
	}
	if got := toArticle(item, time.Now()).CoverImage; got != "https://enclosure" {
		t.Errorf("expected enclosure image, got %q", got)
	}
}

const rss = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Test</title>
<item>
  <title>Fresh Post</title>
  <link>https://example.com/fresh</link>
  <category>Tech</category>
  <description>New things</description>
  <pubDate>%s</pubDate>
</item>
<item>
  <title>Stale Post</title>
  <link>https://example.com/stale</link>
  <description>Old things</description>
  <pubDate>Mon, 01 Jan 2018 00:00:00 +0000</pubDate>
</item>
<item>
  <title>No Link</title>
  <description>skipped</description>
</item>
</channel></rss>`

func TestRSSFetcher(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, rss, now.Add(-time.Hour).Format(time.RFC1123Z))
	}))
	defer srv.Close()

	f := NewRSSFetcher(30 * 24 * time.Hour)
	f.now = func() time.Time { return now }

	entries, err := f.Fetch(context.Background(), config.Feed{Name: "Test", URL: srv.URL})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry within max age, got %d", len(entries))
	}
	e := entries[0]
	if e.Key != "feed:"+articleID("https://example.com/fresh") {
		t.Errorf("unexpected key %q", e.Key)
	}
	if e.Article.ID != 0 {
		t.Errorf("expected cache-assigned id, got %d", e.Article.ID)
	}
	if len(e.Article.Category) != 1 || e.Article.Category[0] != "TECH" {
		t.Errorf("expected feed category upper-cased, got %v", e.Article.Category)
	}
	if e.Article.Content != "New things" {
		t.Errorf("expected description as content fallback, got %q", e.Article.Content)
	}
}

type fakeFetcher map[string][]cache.Entry

func (f fakeFetcher) Fetch(ctx context.Context, src config.Feed) ([]cache.Entry, error) {
	entries, ok := f[src.Name]
	if !ok {
		return nil, errors.New("fetching " + src.Name + ": boom")
	}
	return entries, nil
}

func TestFetchAllCollectsEntriesAndErrors(t *testing.T) {
	f := fakeFetcher{
		"a": {{Key: "feed:1"}, {Key: "feed:2"}},
		"b": {{Key: "feed:3"}},
	}
	feeds := []config.Feed{{Name: "a"}, {Name: "b"}, {Name: "broken"}}

	result := FetchAll(context.Background(), f, feeds)
	if len(result.Entries) != 3 {
		t.Errorf("expected 3 entries, got %d", len(result.Entries))
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error, got %d", len(result.Errors))
	}
}
