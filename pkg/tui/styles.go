// Package tui implements a terminal browser over a validation report,
// rendering an interactive Bubble Tea app in the terminal.
package tui

import "github.com/charmbracelet/lipgloss"

// File status glyphs convey meaning without relying on color alone.
const (
	GlyphPassed    = "✓"
	GlyphFailed    = "✗"
	GlyphUnchecked = "○"
	GlyphCurrent   = "▸"
)

// Palette adapts to terminal capabilities via lipgloss.
var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorBlue   = lipgloss.Color("39")
	colorCyan   = lipgloss.Color("51")
	colorDim    = lipgloss.Color("240")
	colorWhite  = lipgloss.Color("255")
)

// --- Header styles ---

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorCyan).
	Padding(0, 1)

var phaseBadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("0")).
	Background(colorYellow).
	Padding(0, 1)

// --- File list styles ---

var (
	fileNormal = lipgloss.NewStyle().
			Foreground(colorWhite)

	fileCurrent = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorYellow)

	filePassed = lipgloss.NewStyle().
			Foreground(colorGreen)

	fileFailed = lipgloss.NewStyle().
			Foreground(colorRed)

	fileUnchecked = lipgloss.NewStyle().
			Faint(true)
)

// --- Panel styles ---

var (
	panelBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim)

	panelTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan).
			Padding(0, 1)
)

// --- Status styles ---

var (
	statusPassedStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)

	statusFailedStyle = lipgloss.NewStyle().
				Foreground(colorRed).
				Bold(true)

	countStyle = lipgloss.NewStyle().
			Foreground(colorBlue)
)

// --- Key bar styles ---

var (
	keyStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	keyDescStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	keyBarStyle = lipgloss.NewStyle().
			Padding(0, 1)
)
