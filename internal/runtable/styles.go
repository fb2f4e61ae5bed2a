package runtable

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Layout constants shared by the table and its panes.
const (
	StatusBarHeight  = 1
	StatusBarPadding = 1

	tableHeaderLines    = 2 // title line + column header line
	actionBarLines      = 1
	tagDialogChromeRows = 2 // dialog border top/bottom
)

// Checkbox glyphs. The header checkbox adds an indeterminate state when
// only part of the list is checked.
const (
	checkboxUnchecked     = "[ ]"
	checkboxChecked       = "[x]"
	checkboxIndeterminate = "[-]"

	reexecutionMark = "↻"
	pinnedTagMark   = "●"
	unpinnedTagMark = "○"
)

var (
	colorHeading  = lipgloss.AdaptiveColor{Light: "#1a637a", Dark: "#7dd3fc"}
	colorText     = lipgloss.AdaptiveColor{Light: "#4b5563", Dark: "#9ca3af"}
	colorValue    = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#e5e7eb"}
	colorDark     = lipgloss.AdaptiveColor{Light: "#f9fafb", Dark: "#111827"}
	colorAccent   = lipgloss.AdaptiveColor{Light: "#6d28d9", Dark: "#c4b5fd"}
	colorFailure  = lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#f87171"}
	colorSuccess  = lipgloss.AdaptiveColor{Light: "#15803d", Dark: "#4ade80"}
	colorZebraBg  = lipgloss.AdaptiveColor{Light: "#f3f4f6", Dark: "#1f2937"}
	colorCursorBg = lipgloss.AdaptiveColor{Light: "#bae6fd", Dark: "#0c4a6e"}

	titleStyle = lipgloss.NewStyle().
			Foreground(colorHeading).
			Bold(true)

	navInfoStyle = lipgloss.NewStyle().
			Foreground(colorText)

	columnHeaderStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Bold(true)

	evenRowStyle = lipgloss.NewStyle()
	oddRowStyle  = lipgloss.NewStyle().
			Background(colorZebraBg)
	cursorRowStyle = lipgloss.NewStyle().
			Background(colorCursorBg)

	tagStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	statusFailureStyle = lipgloss.NewStyle().
				Foreground(colorFailure)
	statusSuccessStyle = lipgloss.NewStyle().
				Foreground(colorSuccess)
	statusNeutralStyle = lipgloss.NewStyle().
				Foreground(colorValue)

	actionBarStyle = lipgloss.NewStyle().
			Foreground(colorValue).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Padding(0, StatusBarPadding)

	dialogBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorHeading).
				Padding(0, 1)

	emptyStateStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Italic(true)
)

// statusStyle picks a style for a run status cell.
func statusStyle(status RunStatus) lipgloss.Style {
	switch status {
	case RunStatusFailure, RunStatusCanceled:
		return statusFailureStyle
	case RunStatusSuccess:
		return statusSuccessStyle
	default:
		return statusNeutralStyle
	}
}

// truncateValue truncates s to the given display width, appending an
// ellipsis when anything was cut.
func truncateValue(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return runewidth.Truncate(s, width-1, "") + "…"
}

// padValue pads s with spaces to exactly the given display width,
// truncating first when too long.
func padValue(s string, width int) string {
	s = truncateValue(s, width)
	return s + spaces(width-runewidth.StringWidth(s))
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
