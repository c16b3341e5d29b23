// Package ui provides terminal styling for assetlink output.
// Colors follow the Ayu theme with adaptive light/dark variants.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Ayu theme color palette
var (
	ColorPass = lipgloss.AdaptiveColor{
		Light: "#86b300",
		Dark:  "#c2d94c",
	}
	ColorWarn = lipgloss.AdaptiveColor{
		Light: "#f2ae49",
		Dark:  "#ffb454",
	}
	ColorFail = lipgloss.AdaptiveColor{
		Light: "#f07171",
		Dark:  "#f07178",
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99",
		Dark:  "#6c7680",
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#399ee6",
		Dark:  "#59c2ff",
	}
)

var (
	PassStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)

	// HeaderStyle for section headers such as the run summary.
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
)

const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
	IconSkip = "-"
	IconInfo = "ℹ"
)

// TreeIndent is the per-level indent of selection trees.
const TreeIndent = "  "

// RenderPass renders text with pass (green) styling
func RenderPass(s string) string {
	return PassStyle.Render(s)
}

// RenderWarn renders text with warning (yellow) styling
func RenderWarn(s string) string {
	return WarnStyle.Render(s)
}

// RenderFail renders text with fail (red) styling
func RenderFail(s string) string {
	return FailStyle.Render(s)
}

// RenderMuted renders text with muted (gray) styling
func RenderMuted(s string) string {
	return MutedStyle.Render(s)
}

// RenderAccent renders text with accent (blue) styling
func RenderAccent(s string) string {
	return AccentStyle.Render(s)
}

// RenderHeader renders a bold section header.
func RenderHeader(s string) string {
	return HeaderStyle.Render(s)
}

// StatusLine prefixes msg with the icon matching its outcome: links created
// pass, skips are muted, dry-run plans are informational.
func StatusLine(msg string) string {
	switch {
	case containsAny(msg, ": linked ", ": description updated"):
		return PassStyle.Render(IconPass) + " " + msg
	case containsAny(msg, ": would "):
		return AccentStyle.Render(IconInfo) + " " + msg
	case containsAny(msg, ": skip: "):
		return MutedStyle.Render(IconSkip) + " " + MutedStyle.Render(msg)
	default:
		return "  " + msg
	}
}

// WarnLine renders a warning with its icon.
func WarnLine(msg string) string {
	return WarnStyle.Render(IconWarn + " " + msg)
}

// FailLine renders an error with its icon.
func FailLine(msg string) string {
	return FailStyle.Render(IconFail + " " + msg)
}
