package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/blogreader/internal/article"
)

// previewLines lays out the detail view of a, one terminal line per entry.
func previewLines(a article.Article, width int) []string {
	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	var chips []string
	for _, c := range a.Category {
		chips = append(chips, chipStyle(c, false).Render(c))
	}

	minutes := article.ReadTime(a.Content)
	meta := previewMetaStyle.Render(fmt.Sprintf("%d min read · %s · %s",
		minutes, article.FormatDate(a.Date), ageLabel(a.Date)))

	blocks := []string{
		previewTitleStyle.Width(contentWidth).Render(a.Title),
		strings.Join(chips, " "),
		meta,
		"",
	}
	if a.Description != "" {
		blocks = append(blocks, previewDescStyle.Width(contentWidth).Render(wrapText(a.Description, contentWidth)), "")
	}

	paragraphs := article.Paragraphs(a.Content)
	if len(paragraphs) == 0 {
		blocks = append(blocks, previewMetaStyle.Render("(No content available)"), "")
	}
	for _, p := range paragraphs {
		blocks = append(blocks, previewBodyStyle.Width(contentWidth).Render(wrapText(p, contentWidth)), "")
	}

	if tags := article.Tags(a.Category); len(tags) > 0 {
		blocks = append(blocks, previewTagStyle.Render(strings.Join(tags, " ")))
	}
	if a.CoverImage != "" {
		blocks = append(blocks, previewLinkStyle.Width(contentWidth).Render("Cover: "+a.CoverImage+"  (o to open)"))
	}

	return strings.Split(lipgloss.JoinVertical(lipgloss.Left, blocks...), "\n")
}

// maxScroll is the last scroll offset that still fills the pane.
func maxScroll(lines []string, height int) int {
	return max(0, len(lines)-height)
}

// readingProgress is how far through the article the pane has scrolled, in
// percent. Content that fits the pane counts as fully read.
func readingProgress(scroll, maxScroll int) int {
	if maxScroll <= 0 {
		return 100
	}
	p := scroll * 100 / maxScroll
	return min(max(p, 0), 100)
}

func renderPreview(lines []string, width, height, scroll int) string {
	if len(lines) == 0 {
		return lipglossCenter("Select an article", width, height)
	}

	// First line is the reading progress bar
	bodyHeight := max(height-1, 1)
	scroll = min(max(scroll, 0), maxScroll(lines, bodyHeight))
	percent := readingProgress(scroll, maxScroll(lines, bodyHeight))

	bar := progress.New(progress.WithGradient("#5A56E0", "#F25D94"), progress.WithWidth(max(width-2, 10)))

	visible := lines[scroll:]
	if len(visible) > bodyHeight {
		visible = visible[:bodyHeight]
	}
	out := append([]string{bar.ViewAs(float64(percent) / 100)}, visible...)
	if len(out) < height {
		out = append(out, make([]string, height-len(out))...)
	}
	return strings.Join(out, "\n")
}

func renderMessage(msg string, width, height int) string {
	return lipglossCenter(msg, width, height)
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
