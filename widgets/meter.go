package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderMeter renders value (0-1) as a bar of width cells
func RenderMeter(value float32, width int, full, empty rune, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	filled := int(value*float32(width) + 0.5)

	style := lipgloss.NewStyle().Foreground(color)
	return style.Render(strings.Repeat(string(full), filled)) + strings.Repeat(string(empty), width-filled)
}

// KnobRow is one labelled meter line
type KnobRow struct {
	CC    string // controller that drives it, "" if none
	Label string
	Value float32
}

// RenderKnobs renders labelled meters, one per line:
// "cc70 attack   ████░░░░ 0.50"
func RenderKnobs(rows []KnobRow, width int, full, empty rune, color lipgloss.Color) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("  %-5s %-10s %s %.2f",
			r.CC, r.Label, RenderMeter(r.Value, width, full, empty, color), r.Value))
	}
	return strings.Join(lines, "\n")
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
