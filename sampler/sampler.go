// Command sampler prints the paraping status glyphs and the RTT heat
// gradient under each terminal color profile, for eyeballing theme changes.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/icecake0141/paraping/internal/ring"
	"github.com/icecake0141/paraping/internal/tui/theme"
)

func main() {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		log.Fatal("Error: not a terminal.")
	}

	if _, _, err := term.GetSize(os.Stdout.Fd()); err != nil {
		log.Fatalf("GetSize: %v", err)
	}

	profiles := []termenv.Profile{termenv.TrueColor, termenv.ANSI256, termenv.ANSI}
	for _, p := range profiles {
		printSamples(p)
	}
}

func printSamples(prof termenv.Profile) {
	lipgloss.SetColorProfile(prof)

	var profileName string
	switch prof {
	case termenv.TrueColor:
		profileName = "TrueColor: "
	case termenv.ANSI256:
		profileName = "ANSI256:   "
	case termenv.ANSI:
		profileName = "ANSI:      "
	}

	parts := []string{profileName}
	for _, st := range []ring.Status{ring.Success, ring.Slow, ring.Fail, ring.Pending} {
		style := theme.Default.Status[st]
		parts = append(parts, style.Render(fmt.Sprintf("%s %s", st.Glyph(), st)), "  ")
	}
	fmt.Println(lipgloss.JoinHorizontal(lipgloss.Left, parts...))

	var grad []string
	for i := 0; i <= 40; i++ {
		frac := float64(i) / 40
		grad = append(grad, lipgloss.NewStyle().Foreground(theme.Default.Heatmap.At(frac)).Render("█"))
	}
	fmt.Println("heatmap:   " + lipgloss.JoinHorizontal(lipgloss.Left, grad...))
	fmt.Println()
}
