// Package theme provides the visual design system for the TUI.
// All styles use adaptive colors that work on both light and dark terminals.
//
// NO_COLOR (https://no-color.org/) is respected automatically by lipgloss via
// its color profile detection.
package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// --- Adaptive Color Palette ---

var (
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#66bb6a"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#c62828", Dark: "#ef5350"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#e65100", Dark: "#ffa726"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#1e3a5f", Dark: "#b8c5d6"}
	ColorAccent  = lipgloss.AdaptiveColor{Light: "#4a2c54", Dark: "#cd87e4"}
	ColorGold    = lipgloss.AdaptiveColor{Light: "#b8935f", Dark: "#f6d379"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#8a95a8"}

	ColorBorder       = lipgloss.AdaptiveColor{Light: "#bdbdbd", Dark: "#4a2c54"}
	ColorBorderActive = lipgloss.AdaptiveColor{Light: "#4a2c54", Dark: "#f6d379"}

	ColorBgAlt = lipgloss.AdaptiveColor{Light: "#f5f5f5", Dark: "#1a2332"}
	ColorFg    = lipgloss.AdaptiveColor{Light: "#1a2332", Dark: "#f5e6d3"}
	ColorFgDim = lipgloss.AdaptiveColor{Light: "#9e9e9e", Dark: "#757575"}
)

// --- Base styles ---

var (
	Bold = lipgloss.NewStyle().Bold(true)
	Dim  = lipgloss.NewStyle().Faint(true)

	TextSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	TextError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	TextWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	TextInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	TextAccent  = lipgloss.NewStyle().Foreground(ColorAccent)
	TextMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
)

// --- Header ---

var (
	HeaderBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, false, true, false).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	HeaderTitle = lipgloss.NewStyle().
			Foreground(ColorFg).
			Bold(true)

	HeaderSubtitle = lipgloss.NewStyle().
			Foreground(ColorFg)

	HeaderStatus = lipgloss.NewStyle().
			Foreground(ColorMuted)

	HeaderRole = lipgloss.NewStyle().
			Foreground(ColorGold).
			Bold(true)
)

// --- Message author styles ---

var (
	UserLabel = lipgloss.NewStyle().
			Foreground(ColorGold).
			Bold(true)

	BotLabel = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	Typing = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true)
)

// --- Profile picker ---

var (
	PickerBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 3)

	PickerTitle = lipgloss.NewStyle().
			Foreground(ColorGold).
			Bold(true)

	PickerOption = lipgloss.NewStyle().
			Foreground(ColorFg).
			Padding(0, 1)

	PickerOptionActive = lipgloss.NewStyle().
				Foreground(ColorBorderActive).
				Bold(true).
				Padding(0, 1)
)

// --- Status bar ---

var (
	StatusBar = lipgloss.NewStyle().
			Foreground(ColorFgDim).
			Background(ColorBgAlt).
			Padding(0, 1)

	StatusKey = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true)
)

// --- Input area ---

var (
	InputPrompt = lipgloss.NewStyle().
			Foreground(ColorGold).
			Bold(true)

	InputPlaceholder = lipgloss.NewStyle().
				Foreground(ColorFgDim)

	Recording = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	Transcribing = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// MaxContentWidth is the recommended max width for readable text content.
const MaxContentWidth = 100

// Clamp returns v clamped to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
