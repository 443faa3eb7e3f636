// Package tui provides the interactive configuration menu shown by
// `reap --menu` before monitoring starts. It uses Charmbracelet's Bubble
// Tea, Lip Gloss and Bubbles.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("#7D56F4")
	colorAccent    = lipgloss.Color("#00D9FF")
	colorSuccess   = lipgloss.Color("#28A745")
	colorDanger    = lipgloss.Color("#DC3545")
	colorMuted     = lipgloss.Color("#666666")
	colorHighlight = lipgloss.Color("#1A1A2E")
)

var (
	outerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)

	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	labelStyle       = lipgloss.NewStyle().Foreground(colorAccent)
	mutedTextStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	errorTextStyle   = lipgloss.NewStyle().Foreground(colorDanger)
	successTextStyle = lipgloss.NewStyle().Foreground(colorSuccess)

	// The cursor row is inverted; other rows are dimmed.
	selectedItemStyle = lipgloss.NewStyle().Bold(true).
				Background(colorHighlight).
				Foreground(lipgloss.Color("#FFFFFF"))
	normalItemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
)
