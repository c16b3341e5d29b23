package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func plain(t *testing.T) {
	t.Helper()
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })
}

func TestShouldUseColor(t *testing.T) {
	tests := []struct {
		name          string
		noColor       string
		cliColor      string
		cliColorForce string
		want          bool
	}{
		{name: "NO_COLOR disables", noColor: "1", cliColorForce: "1", want: false},
		{name: "CLICOLOR=0 disables", cliColor: "0", cliColorForce: "1", want: false},
		{name: "CLICOLOR_FORCE enables", cliColorForce: "1", want: true},
		{name: "no tty in tests", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("CLICOLOR", tt.cliColor)
			t.Setenv("CLICOLOR_FORCE", tt.cliColorForce)
			if tt.name == "no tty in tests" && IsTerminal() {
				t.Skip("stdout is a terminal")
			}
			assert.Equal(t, tt.want, ShouldUseColor())
		})
	}
}

func TestStatusLine(t *testing.T) {
	plain(t)

	assert.Equal(t, IconPass+" PREC-1: linked A - b -> u", StatusLine("PREC-1: linked A - b -> u"))
	assert.Equal(t, IconInfo+" PREC-1: would link A - b -> u", StatusLine("PREC-1: would link A - b -> u"))
	assert.Equal(t, IconSkip+" PREC-1: skip: empty description", StatusLine("PREC-1: skip: empty description"))
	assert.Equal(t, "  PREC-1: no selections to link", StatusLine("PREC-1: no selections to link"))
	assert.Equal(t, IconWarn+" careful", WarnLine("careful"))
	assert.Equal(t, IconFail+" broken", FailLine("broken"))
}

func TestRenderMarkdownWithoutColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	md := "# Assets\n\n- Displays\n  - 11100411\n"
	assert.Equal(t, md, RenderMarkdown(md))
}

func TestTerminalWidthFallback(t *testing.T) {
	if IsTerminal() {
		t.Skip("stdout is a terminal")
	}
	assert.Equal(t, 72, TerminalWidth(72))
}

func TestRenderHeaderKeepsText(t *testing.T) {
	plain(t)
	assert.True(t, strings.Contains(RenderHeader("Summary"), "Summary"))
}
