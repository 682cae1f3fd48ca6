package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pkgtree/pkg/tree"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - package names
	colorYellow = lipgloss.Color("220") // Amber - warnings, cycles
	colorBlue   = lipgloss.Color("75")  // Light blue - extras
	colorGray   = lipgloss.Color("245") // Gray - versions
	colorDim    = lipgloss.Color("240") // Dim gray - connectors
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleName      = lipgloss.NewStyle().Foreground(colorCyan)
	styleVersion   = lipgloss.NewStyle().Foreground(colorGray)
	styleExtra     = lipgloss.NewStyle().Foreground(colorBlue)
	styleRepeat    = lipgloss.NewStyle().Foreground(colorDim)
	styleCycle     = StyleWarning.Bold(true)
	styleConnector = lipgloss.NewStyle().Foreground(colorDim)
	styleLegend    = lipgloss.NewStyle().Italic(true).Foreground(colorGray)
)

// =============================================================================
// Tree Lines
// =============================================================================

// styleLine colors one rendered tree line: connectors, the optional
// "[extra] " label, name, version and trailing marker.
func styleLine(line string) string {
	body := strings.TrimLeft(line, "├└│─ ")
	prefix := line[:len(line)-len(body)]

	var label string
	if strings.HasPrefix(body, "[") {
		if end := strings.Index(body, "] "); end > 0 {
			label, body = body[:end+2], body[end+2:]
		}
	}

	var marker string
	for _, m := range []string{tree.CycleMarker, tree.RepeatMarker} {
		if strings.HasSuffix(body, " "+m) {
			body, marker = strings.TrimSuffix(body, " "+m), m
			break
		}
	}

	name, version, _ := strings.Cut(body, " ")

	var b strings.Builder
	b.WriteString(styleConnector.Render(prefix))
	if label != "" {
		b.WriteString(styleExtra.Render(label))
	}
	b.WriteString(styleName.Render(name))
	if version != "" {
		b.WriteString(" " + styleVersion.Render(version))
	}
	switch marker {
	case tree.CycleMarker:
		b.WriteString(" " + styleCycle.Render(marker))
	case tree.RepeatMarker:
		b.WriteString(" " + styleRepeat.Render(marker))
	}
	return b.String()
}

// formatTree joins tree lines and legend lines for printing. Styling is
// applied when color is set.
func formatTree(lines, legend []string, color bool) string {
	var b strings.Builder
	for _, l := range lines {
		if color {
			l = styleLine(l)
		}
		b.WriteString(l + "\n")
	}
	for _, l := range legend {
		if color {
			l = styleLegend.Render(l)
		}
		b.WriteString(l + "\n")
	}
	return b.String()
}
