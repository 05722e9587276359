package rendering

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pokearena/client/global"
)

var (
	HighlightedColor = lipgloss.Color("45")
	FaintedColor     = lipgloss.Color("240")
	ErrorColor       = lipgloss.Color("196")

	ButtonStyle            = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Width(30).Padding(1, 3).Align(lipgloss.Center)
	HighlightedButtonStyle = lipgloss.NewStyle().Border(lipgloss.DoubleBorder(), true).Width(30).Padding(1, 3).Align(lipgloss.Center).Foreground(HighlightedColor)

	HighlightedItemStyle = lipgloss.NewStyle().PaddingLeft(4).Foreground(HighlightedColor)
	ItemStyle            = lipgloss.NewStyle().PaddingLeft(4)
	FaintedItemStyle     = lipgloss.NewStyle().PaddingLeft(4).Foreground(FaintedColor)
	ErrorStyle           = lipgloss.NewStyle().Foreground(ErrorColor)

	PanelStyle            = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(0, 1)
	HighlightedPanelStyle = lipgloss.NewStyle().Border(lipgloss.DoubleBorder(), true).Padding(0, 1).Foreground(HighlightedColor)

	titleCaser = cases.Title(language.English)
)

func Center(width int, height int, text string) string {
	return lipgloss.PlaceVertical(height, lipgloss.Center, lipgloss.PlaceHorizontal(width, lipgloss.Center, text))
}

func GlobalCenter(text string) string {
	return Center(global.TERM_WIDTH, global.TERM_HEIGHT, text)
}

// DisplayName turns wire names like "mr-mime" into "Mr Mime".
func DisplayName(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "-", " "))
}

// Bar renders a fixed-width resource bar like "HP  [=====     ] 52/104".
func Bar(label string, value, max, width int) string {
	if max <= 0 {
		max = 1
	}
	if value < 0 {
		value = 0
	}
	filled := value * width / max
	if filled > width {
		filled = width
	}

	return fmt.Sprintf("%-3s [%s%s] %d/%d", label, strings.Repeat("=", filled), strings.Repeat(" ", width-filled), value, max)
}
