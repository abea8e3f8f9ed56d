package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Activity indicator geometry: a dot bouncing at 8 Hz proves the loop is
// alive even when nothing on screen changes. It widens while paused.
const (
	activityWidth       = 10
	activityPausedWidth = 20
)

// activityIndicator renders the bouncing dot track for the given tick.
func activityIndicator(tick, width int) string {
	if width < 2 {
		return "[o]"
	}
	span := width - 1
	pos := tick % (2 * span)
	if pos > span {
		pos = 2*span - pos
	}
	cells := []byte(strings.Repeat(".", width))
	cells[pos] = 'o'
	return "[" + string(cells) + "]"
}

// statusLine summarises the interactive state.
func (r *Renderer) statusLine(in Input, summaryAll bool) string {
	summary := strings.ToUpper(in.Summary.String()[:1]) + in.Summary.String()[1:]
	if summaryAll {
		summary = "All"
	}
	parts := []string{
		"Sort: " + in.Sort.Label(),
		"Filter: " + in.Filter.Label(),
		"Summary: " + summary,
	}
	if in.Paused {
		parts = append(parts, "PAUSED")
	}
	if in.StatusMessage != "" {
		parts = append(parts, in.StatusMessage)
	}
	return strings.Join(parts, " | ")
}

// statusBox renders the bordered box at the bottom of the screen. On very
// small terminals it degrades to a single unboxed line.
func (r *Renderer) statusBox(in Input, width, height int, summaryAll bool) []string {
	indWidth := activityWidth
	if in.Paused {
		indWidth = activityPausedWidth
	}
	indicator := activityIndicator(in.ActivityTick, indWidth)
	line := r.statusLine(in, summaryAll)

	if height < 3 {
		return []string{fit(line+" "+indicator, width)}
	}

	inner := width - 4 // borders plus padding
	if inner < 1 {
		inner = 1
	}
	content := line
	if gap := inner - runewidth.StringWidth(indicator) - runewidth.StringWidth(content); gap >= 1 {
		content += strings.Repeat(" ", gap) + indicator
	} else {
		content = fit(content+" "+indicator, inner)
	}
	top := "+" + strings.Repeat("-", max(width-2, 0)) + "+"
	mid := "| " + runewidth.FillRight(runewidth.Truncate(content, inner, "…"), inner) + " |"
	return []string{top, fit(mid, width), top}
}

// fit truncates or pads a plain line to an exact display width.
func fit(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "")
	}
	return runewidth.FillRight(s, width)
}
