package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheuskafuri/blogreader/internal/article"
)

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

// ageLabel is relativeTime for a stored date, or the raw string when it
// does not parse.
func ageLabel(date string) string {
	t, ok := article.ParseDate(date)
	if !ok {
		return date
	}
	return relativeTime(t)
}

func renderListItem(a article.Article, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(a.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(a.Title, width-4))
	}

	meta := "  " + renderLabels(a.Category, width/2) + " " + itemTimeStyle.Render("· "+ageLabel(a.Date))

	return title + "\n" + meta
}

// renderLabels colours each category, dropping labels past width.
func renderLabels(labels []string, width int) string {
	var parts []string
	used := 0
	for _, l := range labels {
		if used+len(l) > width && len(parts) > 0 {
			parts = append(parts, itemTimeStyle.Render("+"))
			break
		}
		parts = append(parts, chipStyle(l, false).UnsetBackground().UnsetPadding().Render(l))
		used += len(l) + 1
	}
	return strings.Join(parts, " ")
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func renderList(articles []article.Article, cursor int, height int, width int) string {
	if len(articles) == 0 {
		return lipglossCenter("No articles match", width, height)
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	itemHeight := 3
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	// Calculate scroll offset
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(articles) {
		end = len(articles)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(articles[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func lipglossCenter(s string, width, height int) string {
	pad := (width - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
