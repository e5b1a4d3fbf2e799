package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/blogreader/internal/query"
)

// filterBar renders the category index as toggleable chips. Selection lives
// in query.State; the bar only tracks the chip cursor.
type filterBar struct {
	categories   []string
	filterMode   bool
	filterCursor int
}

func (f *filterBar) setCategories(categories []string) {
	f.categories = categories
	if f.filterCursor >= len(categories) {
		f.filterCursor = max(0, len(categories)-1)
	}
}

func (f *filterBar) current() (string, bool) {
	if f.filterCursor < len(f.categories) {
		return f.categories[f.filterCursor], true
	}
	return "", false
}

func (f *filterBar) at(idx int) (string, bool) {
	if idx >= 0 && idx < len(f.categories) {
		return f.categories[idx], true
	}
	return "", false
}

func (f *filterBar) left() {
	if f.filterCursor > 0 {
		f.filterCursor--
	}
}

func (f *filterBar) right() {
	if f.filterCursor < len(f.categories)-1 {
		f.filterCursor++
	}
}

func activeLabel(state query.State) string {
	selected := state.SelectedCategories()
	if len(selected) == 0 {
		return "All"
	}
	return strings.Join(selected, ", ")
}

func (f *filterBar) render(state query.State, width int) string {
	sep := tabSeparatorStyle.Render(" · ")
	var parts []string

	// "All" chip
	if len(state.SelectedCategories()) == 0 {
		parts = append(parts, tabActiveStyle.Render("All"))
	} else {
		parts = append(parts, tabInactiveStyle.Render("All"))
	}

	for i, c := range f.categories {
		label := c
		if f.filterMode && i == f.filterCursor {
			label = "[" + c + "]"
		}
		parts = append(parts, chipStyle(c, state.Selected(c)).Render(label))
	}

	// Build row with · separators, stopping when we'd exceed width
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
