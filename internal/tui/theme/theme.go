// Package theme contains the shared styles: one lipgloss style per probe
// outcome plus an RTT heat gradient for the graph views.
package theme

import (
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/icecake0141/paraping/internal/ring"
)

// Default contains the default theme.
var Default = Theme{
	Text: Text{
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{
				Light: "#333333",
				Dark:  "#AAAAAA",
			}),
		Important: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{
				Dark:  "#DDDDDD",
				Light: "#000000",
			}).
			Bold(true),
		Unimportant: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{
				Light: "#666666",
				Dark:  "#999999",
			}),
	},
	Status: map[ring.Status]lipgloss.Style{
		ring.Success: lipgloss.NewStyle().Foreground(lipgloss.Color("7")), // white
		ring.Slow:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")), // yellow
		ring.Fail:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")), // red
		ring.Pending: lipgloss.NewStyle().Foreground(lipgloss.Color("8")), // dark grey
	},
	Heatmap: Gradient{
		Low:  "#3abb46",
		High: "#ab3c45",
	},
}

// Theme contains common styles for use throughout the program.
type Theme struct {
	Text    Text
	Status  map[ring.Status]lipgloss.Style
	Heatmap Heatmap
}

// Text contains common text styles.
type Text struct {
	Normal      lipgloss.Style
	Important   lipgloss.Style
	Unimportant lipgloss.Style
}

// Heatmap maps a fraction in the interval [0, 1] to a color.
type Heatmap interface {
	At(v float64) lipgloss.TerminalColor
}

// Creates a colorful.Color from a hex string or returns primary red so that
// the mistake (hopefully) stands out.
func hexColor(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{R: 1}
	}
	return c
}

// Gradient contains a color gradient representing a fraction from 0 to 1.
type Gradient struct {
	Low  string
	High string
}

// At returns the color for the given value. The value must be in the
// interval [0, 1].
func (h Gradient) At(v float64) lipgloss.TerminalColor {
	cold := hexColor(h.Low)
	hot := hexColor(h.High)
	c := cold.BlendHcl(hot, v)
	return lipgloss.Color(c.Hex())
}
