package article

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"2024-02-01T10:30:00Z", time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC), true},
		{"2024-02-01T10:30:00.250Z", time.Date(2024, 2, 1, 10, 30, 0, 250_000_000, time.UTC), true},
		{"2024-02-01T10:30:00", time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC), true},
		{"Mon, 02 Jan 2006 15:04:05 +0000", time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC), true},
		{"not a date", time.Unix(0, 0).UTC(), false},
		{"", time.Unix(0, 0).UTC(), false},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.input)
		assert.Equal(t, tt.ok, ok, "ParseDate(%q) ok", tt.input)
		assert.True(t, tt.want.Equal(got), "ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
	}
}

func TestSplitCategories(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"tech, finance", []string{"TECH", "FINANCE"}},
		{"  Career  ", []string{"CAREER"}},
		{"a, ,b,", []string{"A", "B"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitCategories(tt.input), "SplitCategories(%q)", tt.input)
	}
}

func TestDraftValidate(t *testing.T) {
	d := Draft{
		Title:       "Tax Tips",
		Category:    []string{"FINANCE"},
		Description: "Save on taxes",
		CoverImage:  "https://example.com/cover.jpg",
		Content:     "Body",
	}
	require.NoError(t, d.Validate())

	err := Draft{Title: "Only a title"}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"category", "description", "coverImage", "content"}, verr.Fields)
	assert.Contains(t, err.Error(), "coverImage")
}

func TestDraftArticleStampsDate(t *testing.T) {
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.FixedZone("X", 2*3600))
	a := Draft{Title: "T", Category: []string{"TECH"}}.Article(7, now)

	assert.Equal(t, 7, a.ID)
	assert.Equal(t, "2024-03-05T10:00:00.000Z", a.Date)
	assert.True(t, now.Equal(a.Published()))
}

func TestFetchErrorMatchesSentinel(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&FetchError{Op: "listing articles", Err: cause})

	assert.True(t, errors.Is(err, ErrFetch))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(NotFound(3), ErrNotFound))
}

func TestReadTime(t *testing.T) {
	assert.Equal(t, 1, ReadTime(""))
	assert.Equal(t, 1, ReadTime("just a few words"))
	assert.Equal(t, 1, ReadTime(strings.Repeat("word ", 200)))
	assert.Equal(t, 2, ReadTime(strings.Repeat("word ", 201)))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "January 1, 2024", FormatDate("2024-01-01"))
	assert.Equal(t, "garbage", FormatDate("garbage"))
}

func TestParagraphs(t *testing.T) {
	got := Paragraphs("First para.\n\n  Second para.  \r\n\r\n\n\nThird.")
	assert.Equal(t, []string{"First para.", "Second para.", "Third."}, got)
	assert.Empty(t, Paragraphs("   "))
}

func TestTagsAndCategoryLine(t *testing.T) {
	cats := []string{"FINANCE", "TECH"}
	assert.Equal(t, []string{"#finance", "#tech"}, Tags(cats))
	assert.Equal(t, "FINANCE & TECH", CategoryLine(cats))
}
