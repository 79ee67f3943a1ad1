package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/kraitsura/qa_viewer/pkg/model"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Dracula-inspired with semantic content colors
// ══════════════════════════════════════════════════════════════════════════════

var (
	// Base colors
	ColorBg          = lipgloss.Color("#282A36")
	ColorBgSubtle    = lipgloss.Color("#363949")
	ColorBgHighlight = lipgloss.Color("#44475A")
	ColorText        = lipgloss.Color("#F8F8F2")
	ColorSubtext     = lipgloss.Color("#BFBFBF")
	ColorMuted       = lipgloss.Color("#6272A4")

	// Accent colors
	ColorPrimary = lipgloss.Color("#BD93F9")
	ColorInfo    = lipgloss.Color("#8BE9FD")
	ColorSuccess = lipgloss.Color("#50FA7B")
	ColorWarning = lipgloss.Color("#FFB86C")
	ColorDanger  = lipgloss.Color("#FF5555")

	// Content kind colors
	ColorKindQuestion   = lipgloss.Color("#8BE9FD")
	ColorKindQuestionBg = lipgloss.Color("#1A3344")
	ColorKindAnswer     = lipgloss.Color("#50FA7B")
	ColorKindAnswerBg   = lipgloss.Color("#1A3D2A")
)

// ══════════════════════════════════════════════════════════════════════════════
// PANEL STYLES
// ══════════════════════════════════════════════════════════════════════════════

var (
	// PanelStyle is the default style for unfocused panels
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight)

	// FocusedPanelStyle is the style for focused panels
	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)

	// PanelTitleStyle renders panel headers
	PanelTitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	// MutedTextStyle renders secondary text
	MutedTextStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StatusLineStyle renders the transient footer status
	StatusLineStyle = lipgloss.NewStyle().
			Foreground(ColorSubtext)

	// SelectedRowStyle highlights the cursor row in lists and chains
	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true)

	// UnavailableStyle renders placeholders for nodes that could not load
	UnavailableStyle = lipgloss.NewStyle().
				Foreground(ColorMuted).
				Italic(true)
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE RENDERING
// ══════════════════════════════════════════════════════════════════════════════

// RenderKindBadge returns a styled badge for a content kind
func RenderKindBadge(kind model.Kind) string {
	var fg, bg lipgloss.Color
	var label string

	switch kind {
	case model.KindQuestion:
		fg, bg, label = ColorKindQuestion, ColorKindQuestionBg, " Q "
	case model.KindAnswer:
		fg, bg, label = ColorKindAnswer, ColorKindAnswerBg, " A "
	default:
		fg, bg, label = ColorMuted, ColorBgSubtle, " ? "
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Background(bg).
		Bold(true).
		Render(label)
}

// RenderDepthBadge returns a depth marker for a chain entry. Odd and even
// depths alternate visual weight purely as a scan aid when reading long
// chains.
func RenderDepthBadge(depth int) string {
	style := lipgloss.NewStyle().Foreground(ColorMuted)
	if depth%2 == 1 {
		style = lipgloss.NewStyle().Foreground(ColorSubtext).Bold(true)
	}
	return style.Render("d" + strconv.Itoa(depth))
}

// RenderDivider renders a horizontal divider line
func RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(ColorBgHighlight).
		Render(strings.Repeat("─", width))
}

// TruncateText shortens a string to the given display width, appending an
// ellipsis when it was cut.
func TruncateText(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
