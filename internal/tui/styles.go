package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Adaptive colors for dark/light terminals
	colorPrimary   = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorSecondary = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorDim       = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent    = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorBorder    = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}
	colorActiveBdr = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorSurface   = lipgloss.AdaptiveColor{Light: "#F4F4F4", Dark: "#1E1E2E"}
	colorTabBg     = lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: "#2A2A3E"}
	colorStatusBg  = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#16213E"}
	colorStatusFg  = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorWarn      = lipgloss.AdaptiveColor{Light: "#C27C0E", Dark: "#F5B942"}

	// Category chip colours, grey for anything unknown.
	categoryColors = map[string]lipgloss.AdaptiveColor{
		"FINANCE":     {Light: "#1D4ED8", Dark: "#60A5FA"},
		"TECH":        {Light: "#7E22CE", Dark: "#C084FC"},
		"CAREER":      {Light: "#15803D", Dark: "#4ADE80"},
		"EDUCATION":   {Light: "#B45309", Dark: "#FBBF24"},
		"REGULATIONS": {Light: "#B91C1C", Dark: "#F87171"},
		"LIFESTYLE":   {Light: "#BE185D", Dark: "#F472B6"},
		"SKILLS":      {Light: "#4338CA", Dark: "#818CF8"},
	}
	colorCategoryDefault = lipgloss.AdaptiveColor{Light: "#374151", Dark: "#9CA3AF"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			PaddingLeft(1)

	headerDateStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Align(lipgloss.Right)

	listPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	listPaneActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorActiveBdr)

	previewPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder)

	previewPaneActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorActiveBdr)

	itemTitleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	itemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	itemTimeStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	previewTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary)

	previewMetaStyle = lipgloss.NewStyle().
				Foreground(colorDim)

	previewDescStyle = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Italic(true)

	previewBodyStyle = lipgloss.NewStyle().
				Foreground(colorSecondary)

	previewTagStyle = lipgloss.NewStyle().
			Foreground(colorPrimary)

	previewLinkStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Italic(true)

	tabSeparatorStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Background(colorSurface)

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorActiveBdr).
			Padding(0, 1).
			Bold(true)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Background(colorTabBg).
				Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(colorStatusBg).
			Foreground(colorStatusFg).
			PaddingLeft(1).
			PaddingRight(1)

	statusWarnStyle = lipgloss.NewStyle().
			Foreground(colorWarn).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	searchPromptStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	helpCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 3)

	helpDimStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

func categoryColor(label string) lipgloss.AdaptiveColor {
	if c, ok := categoryColors[label]; ok {
		return c
	}
	return colorCategoryDefault
}

// chipStyle renders a category label, filled when selected.
func chipStyle(label string, selected bool) lipgloss.Style {
	c := categoryColor(label)
	if selected {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(c).
			Padding(0, 1).
			Bold(true)
	}
	return lipgloss.NewStyle().
		Foreground(c).
		Background(colorTabBg).
		Padding(0, 1)
}
