// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Terminal palette. Adaptive colors keep run output legible on light and dark
// backgrounds alike, since pipeline logs are often tailed from web consoles.
var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#5B21B6", Dark: "#A78BFA"}
	colorDim    = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#9CA3AF"}
	colorOK     = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}
	colorFail   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	colorWarn   = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	colorCode   = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
)

var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	SubtitleStyle = lipgloss.NewStyle().Foreground(colorDim)
	VerboseStyle  = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
	SuccessStyle  = lipgloss.NewStyle().Foreground(colorOK)
	ErrorStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorFail)
	WarningStyle  = lipgloss.NewStyle().Foreground(colorWarn)

	// CmdStyle renders flag names, config keys and command lines.
	CmdStyle = lipgloss.NewStyle().Foreground(colorCode)

	tableHeaderStyle = TitleStyle.Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	requiredStyle    = WarningStyle.Bold(true)
)
