package article

import (
	"strings"
)

const wordsPerMinute = 200

// ReadTime estimates reading time in minutes. Never less than one.
func ReadTime(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// FormatDate renders a stored date as "January 2, 2006". Unparsable dates are
// returned unchanged.
func FormatDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return t.Format("January 2, 2006")
}

// Paragraphs splits content on blank lines.
func Paragraphs(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(content, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func Tags(categories []string) []string {
	tags := make([]string, 0, len(categories))
	for _, c := range categories {
		tags = append(tags, "#"+strings.ToLower(c))
	}
	return tags
}

func CategoryLine(categories []string) string {
	return strings.Join(categories, " & ")
}
