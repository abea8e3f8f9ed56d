// Package render turns the current (or historical) state into terminal
// lines. Everything here is pure: inputs go in, a slice of lines exactly
// filling the terminal comes out. The TUI layer decides when to draw.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/icecake0141/paraping/internal/layout"
	"github.com/icecake0141/paraping/internal/ring"
	"github.com/icecake0141/paraping/internal/tui/theme"
)

// Overlay selects a full-screen view replacing the main display.
type Overlay int

// Overlay values.
const (
	OverlayNone Overlay = iota
	OverlayHelp
	OverlayHostSelect
	OverlayGraph
)

// Width at which the summary panel switches to showing every field at once.
const summaryAllMinWidth = 60

var sparkChars = []rune("▁▂▃▄▅▆▇█")

// Input is everything one frame depends on.
type Input struct {
	TermWidth  int
	TermHeight int

	// Hosts in config order, with live or snapshot ring state attached.
	Hosts []HostView

	NameMode NameMode
	ShowASN  bool
	View     DisplayMode
	Summary  SummaryMode
	Sort     SortMode
	Filter   FilterMode
	PanelPos layout.PanelPosition

	SlowThreshold time.Duration
	Interval      time.Duration

	Paused        bool
	StatusMessage string
	Timestamp     string

	ScrollOffset      int
	SummaryFullscreen bool

	Overlay     Overlay
	SelectIndex int
	GraphHostID int

	// ActivityTick advances at 8 Hz and drives the bouncing indicator.
	ActivityTick int
}

// Renderer holds the style configuration shared by every frame.
type Renderer struct {
	Theme *theme.Theme
	Color bool
}

// New creates a renderer.
func New(color bool) *Renderer {
	return &Renderer{Theme: &theme.Default, Color: color}
}

func (r *Renderer) hostByID(in Input, id int) (HostView, bool) {
	for _, h := range in.Hosts {
		if h.Host.ID == id {
			return h, true
		}
	}
	return HostView{}, false
}

// Build renders one full frame: exactly TermHeight lines of TermWidth
// columns.
func (r *Renderer) Build(in Input) []string {
	w, h := in.TermWidth, in.TermHeight
	if w < 1 || h < 1 {
		return nil
	}
	statusH := layout.StatusBoxHeight(w, h)
	bodyH := h - statusH

	includeASN := ShouldShowASN(in.Hosts, in.NameMode, in.ShowASN, w)
	names := BuildNames(in.Hosts, in.NameMode, includeASN)
	entries := BuildEntries(in.Hosts, names, in.Sort, in.Filter, in.SlowThreshold)

	panel := layout.PanelSizes(w, bodyH, in.PanelPos)
	summaryAll := panel.Position != layout.PanelNone && panel.PanelWidth >= summaryAllMinWidth

	var body []string
	switch {
	case bodyH < 1:
		body = nil
	case in.Overlay == OverlayHelp:
		body = padLines(r.helpLines(w), w, bodyH)
	case in.Overlay == OverlayHostSelect:
		body = padLines(r.hostSelectLines(entries, in.SelectIndex, w, bodyH), w, bodyH)
	case in.Overlay == OverlayGraph:
		body = padLines(r.graphLines(in, names, w, bodyH), w, bodyH)
	case in.SummaryFullscreen:
		body = padLines(r.summaryLines(in, entries, names, in.Summary, true, w), w, bodyH)
	default:
		body = r.mainBody(in, entries, names, panel, bodyH, summaryAll)
	}

	lines := append(body, r.statusBox(in, w, statusH, summaryAll)...)
	return padLines(lines, w, h)
}

// mainBody composes the main view with the summary panel around it.
func (r *Renderer) mainBody(in Input, entries []Entry, names map[int]string, panel layout.Panel, bodyH int, summaryAll bool) []string {
	main := r.mainView(in, entries, panel.MainWidth, panel.MainHeight)
	if panel.Position == layout.PanelNone {
		return padLines(main, panel.MainWidth, bodyH)
	}
	summary := padLines(r.summaryLines(in, entries, names, in.Summary, summaryAll, panel.PanelWidth), panel.PanelWidth, panel.PanelHeight)

	switch panel.Position {
	case layout.PanelLeft, layout.PanelRight:
		main = padLines(main, panel.MainWidth, panel.MainHeight)
		lines := make([]string, 0, bodyH)
		for i := 0; i < panel.MainHeight; i++ {
			if panel.Position == layout.PanelLeft {
				lines = append(lines, summary[i]+" "+main[i])
			} else {
				lines = append(lines, main[i]+" "+summary[i])
			}
		}
		return lines
	case layout.PanelTop:
		main = padLines(main, panel.MainWidth, panel.MainHeight)
		lines := append(summary, "")
		return append(lines, main...)
	default: // bottom
		main = padLines(main, panel.MainWidth, panel.MainHeight)
		lines := append(main, "")
		return append(lines, summary...)
	}
}

// mainView renders the header, the time axis, and one row per visible host.
func (r *Renderer) mainView(in Input, entries []Entry, mainW, mainH int) []string {
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.Label
	}
	ml := layout.MainLayout(labels, mainW, mainH, layout.HeaderLines)

	state := "LIVE"
	if in.Paused {
		state = "PAUSED"
	}
	header := fmt.Sprintf("ParaPing - %s [%s | %s] %s", state, in.NameMode, in.View, in.Timestamp)

	lines := []string{header, timeAxis(ml.LabelWidth, ml.TimelineWidth, in.Interval)}

	start := in.ScrollOffset
	if start > len(entries) {
		start = len(entries)
	}
	visible := entries[start:]
	if len(visible) > ml.VisibleHosts {
		visible = visible[:ml.VisibleHosts]
	}
	for _, e := range visible {
		h, ok := r.hostByID(in, e.HostID)
		if !ok {
			continue
		}
		label := padLabel(e.Label, ml.LabelWidth)
		lines = append(lines, label+" | "+r.hostCells(h.State, in.View, ml.TimelineWidth))
	}
	if rest := len(entries) - start - len(visible); rest > 0 && len(lines) < mainH {
		lines = append(lines, fmt.Sprintf("... (%d host(s) not shown)", rest))
	}
	return lines
}

// hostCells renders one host's timeline area, right-justified so the newest
// probe hugs the right edge.
func (r *Renderer) hostCells(st *ring.State, view DisplayMode, width int) string {
	slots := st.Slots()
	if len(slots) > width {
		slots = slots[len(slots)-width:]
	}
	pad := strings.Repeat(" ", width-len(slots))
	switch view {
	case ViewSparkline:
		return pad + r.sparkline(slots)
	case ViewSquare:
		return pad + r.squares(slots)
	default:
		return pad + r.glyphs(slots)
	}
}

func (r *Renderer) styled(st ring.Status, s string) string {
	if !r.Color {
		return s
	}
	return r.Theme.Status[st].Render(s)
}

func (r *Renderer) glyphs(slots []ring.Slot) string {
	var b strings.Builder
	for _, s := range slots {
		b.WriteString(r.styled(s.Status, s.Status.Glyph()))
	}
	return b.String()
}

func (r *Renderer) squares(slots []ring.Slot) string {
	var b strings.Builder
	for _, s := range slots {
		var c string
		switch s.Status {
		case ring.Success, ring.Slow:
			c = "■"
		case ring.Fail:
			c = " "
		default:
			c = "-"
		}
		b.WriteString(r.styled(s.Status, c))
	}
	return b.String()
}

// sparkline maps RTTs onto block heights across the min..max of the values
// present. Slots without an RTT (fails, pendings) sit at the baseline, except
// that when no slot in the window has an RTT, every non-fail slot is drawn as
// a full bar. With color enabled the bars take the heatmap gradient.
func (r *Renderer) sparkline(slots []ring.Slot) string {
	var lo, hi time.Duration
	seen := false
	for _, s := range slots {
		if !s.HasRTT {
			continue
		}
		if !seen || s.RTT < lo {
			lo = s.RTT
		}
		if !seen || s.RTT > hi {
			hi = s.RTT
		}
		seen = true
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var b strings.Builder
	for _, s := range slots {
		if !s.HasRTT {
			if !seen && s.Status != ring.Fail {
				b.WriteString(r.styled(s.Status, string(sparkChars[len(sparkChars)-1])))
				continue
			}
			b.WriteString(r.styled(s.Status, string(sparkChars[0])))
			continue
		}
		frac := float64(s.RTT-lo) / float64(span)
		idx := int(frac*float64(len(sparkChars)-1) + 0.5)
		if idx < 0 {
			idx = 0
		}
		if idx > len(sparkChars)-1 {
			idx = len(sparkChars) - 1
		}
		c := string(sparkChars[idx])
		if r.Color {
			c = lipgloss.NewStyle().Foreground(r.Theme.Heatmap.At(frac)).Render(c)
		}
		b.WriteString(c)
	}
	return b.String()
}

// timeAxis builds the second header line: blank label column, the gutter,
// then elapsed-seconds tick labels every ten columns.
func timeAxis(labelW, timelineW int, interval time.Duration) string {
	ticks := make([]byte, timelineW)
	for i := range ticks {
		ticks[i] = ' '
	}
	lastEnd := -1
	for col := 0; col < timelineW; col += 10 {
		secs := float64(col) * interval.Seconds()
		label := strings.TrimSuffix(fmt.Sprintf("%.1f", secs), ".0")
		if col <= lastEnd || col+len(label) > timelineW {
			continue
		}
		copy(ticks[col:], label)
		lastEnd = col + len(label)
	}
	return strings.Repeat(" ", labelW) + " | " + string(ticks)
}

// padLabel truncates or pads a label to an exact display width.
func padLabel(label string, width int) string {
	if runewidth.StringWidth(label) > width {
		label = runewidth.Truncate(label, width, "…")
	}
	return runewidth.FillRight(label, width)
}

// padLines clips and pads lines to exactly width x height. Width handling
// is ANSI-aware so colored rows survive.
func padLines(lines []string, width, height int) []string {
	out := make([]string, 0, height)
	for _, line := range lines {
		if len(out) == height {
			break
		}
		vis := lipgloss.Width(line)
		if vis > width {
			line = ansi.Truncate(line, width, "")
			vis = lipgloss.Width(line)
		}
		out = append(out, line+strings.Repeat(" ", width-vis))
	}
	for len(out) < height {
		out = append(out, strings.Repeat(" ", width))
	}
	return out
}
