package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/blogreader/internal/query"
)

type statusInfo struct {
	report     query.Report
	state      query.State
	mode       mode
	refreshing bool
	offline    bool
}

func renderStatusBar(s statusInfo, width int) string {
	left := " " + s.report.String()
	if label := activeLabel(s.state); label != "All" {
		left += " · " + label
	}
	if term := s.state.DebouncedTerm(); term != "" {
		left += fmt.Sprintf(" · %q", term)
	}
	left += " · " + s.state.Sort().String()
	if !s.state.Settled() {
		left += " …"
	}
	if s.offline {
		left += " " + statusWarnStyle.Render("offline")
	}
	if s.refreshing {
		left += " (refreshing...)"
	}

	right := " / search  f filter  s sort  ? help  q quit "
	if s.state.Active() {
		right = " / search  f filter  s sort  c clear  ? help  q quit "
	}
	switch s.mode {
	case modeSearch:
		right = " esc cancel  enter apply "
	case modeFilter:
		right = " ←/→ move  space toggle  c clear  esc done "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
