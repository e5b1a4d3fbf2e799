package article

import (
	"strings"
	"time"
)

// Article is a single blog post as served by the article store.
type Article struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Category    []string `json:"category"`
	Description string   `json:"description"`
	CoverImage  string   `json:"coverImage"`
	Content     string   `json:"content"`
	Date        string   `json:"date"`
}

// Published returns the parsed article date, or the Unix epoch when the
// date cannot be parsed.
func (a Article) Published() time.Time {
	t, _ := ParseDate(a.Date)
	return t
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

var epoch = time.Unix(0, 0).UTC()

// ParseDate parses the date formats the store and feeds produce. Unparsable
// input returns the Unix epoch and false.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return epoch, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return epoch, false
}

// Draft is an article that has not been stored yet: no id, no date.
type Draft struct {
	Title       string   `json:"title"`
	Category    []string `json:"category"`
	Description string   `json:"description"`
	CoverImage  string   `json:"coverImage"`
	Content     string   `json:"content"`
}

// SplitCategories turns "tech, finance" into ["TECH", "FINANCE"].
func SplitCategories(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		label := strings.ToUpper(strings.TrimSpace(part))
		if label != "" {
			out = append(out, label)
		}
	}
	return out
}

// Validate returns a *ValidationError naming every empty required field.
func (d Draft) Validate() error {
	var missing []string
	if strings.TrimSpace(d.Title) == "" {
		missing = append(missing, "title")
	}
	if len(d.Category) == 0 {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(d.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(d.CoverImage) == "" {
		missing = append(missing, "coverImage")
	}
	if strings.TrimSpace(d.Content) == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Article stamps the draft with an id and its creation instant.
func (d Draft) Article(id int, now time.Time) Article {
	return Article{
		ID:          id,
		Title:       d.Title,
		Category:    append([]string(nil), d.Category...),
		Description: d.Description,
		CoverImage:  d.CoverImage,
		Content:     d.Content,
		Date:        FormatTimestamp(now),
	}
}

// FormatTimestamp renders t as an ISO-8601 UTC timestamp with millisecond
// precision, the format stored in Article.Date.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
