// Package styles holds the lipgloss styles of the human CLI output
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/thenoetrevino/quadro/internal/models"
)

// Palette used when a board or column carries no usable color
const (
	Accent = "#7D56F4"
	Subtle = "#888888"
	Normal = "#DDDDDD"
	Danger = "#F25D94"
)

var (
	// Text styles
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(Accent))
	SubtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Subtle))
	LabelStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(Accent)) // For field labels like "Rank:", "Due:"
	ValueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(Normal))
	SectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(Accent))

	// Status styles
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(Danger))
)

// ColoredText renders text with a hex color, falling back to the normal
// text color for invalid ones
func ColoredText(text, hexColor string) string {
	if !models.ValidColor(hexColor) {
		hexColor = Normal
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(hexColor)).
		Render(text)
}

// BoldColoredText renders bold text with a hex color
func BoldColoredText(text, hexColor string) string {
	if !models.ValidColor(hexColor) {
		hexColor = Accent
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(hexColor)).
		Render(text)
}

// RenderLabelChip renders a label as "[name]" with the label's color
func RenderLabelChip(label *models.Label) string {
	return BoldColoredText("["+label.Name+"]", label.Color)
}
