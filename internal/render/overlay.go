package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/icecake0141/paraping/internal/ring"
)

// helpLines is the help overlay: every key, packaged-variant semantics.
// Dismissed by any key.
func (r *Renderer) helpLines(width int) []string {
	return []string{
		"ParaPing - Help",
		strings.Repeat("-", width),
		"Keys:",
		"  n : cycle display name (ip/rdns/alias)",
		"  v : cycle view (timeline/sparkline/square)",
		"  o : cycle sort (config/failures/streak/latency/host)",
		"  f : cycle filter (all/failures/latency)",
		"  a : toggle ASN display",
		"  m : cycle summary mode (rates/rtt/ttl/streak)",
		"  c : toggle color output",
		"  b : toggle bell on fail",
		"  F : toggle full-screen summary",
		"  w : hide/show summary panel",
		"  W : cycle summary panel position",
		"  p : pause/resume",
		"  s : save snapshot to file",
		"  g : select host for RTT graph (n/p move, Enter opens, Esc cancels)",
		"  <- / -> : navigate backward/forward in time (1 page)",
		"  up/down : scroll host list",
		"  H : show this help (press any key to close)",
		"  q : quit",
		"",
		"Press any key to close this help screen.",
	}
}

// hostSelectLines renders the host selection overlay with a `> ` cursor.
func (r *Renderer) hostSelectLines(entries []Entry, index int, width, height int) []string {
	lines := []string{
		"Select host (n: next, p: prev, Enter: graph, Esc: cancel)",
		strings.Repeat("-", width),
	}
	if len(entries) == 0 {
		return append(lines, "(no hosts match the current filter)")
	}
	if index < 0 {
		index = 0
	}
	if index > len(entries)-1 {
		index = len(entries) - 1
	}
	// Keep the cursor on screen for long host lists.
	visible := max(1, height-len(lines))
	start := 0
	if index >= visible {
		start = index - visible + 1
	}
	for i := start; i < len(entries) && i < start+visible; i++ {
		cursor := "  "
		if i == index {
			cursor = "> "
		}
		lines = append(lines, cursor+entries[i].Label)
	}
	return lines
}

// graphLines renders the full-screen RTT graph for the selected host: a
// header with the RTT range, a bar per ring slot, and an age axis along the
// bottom.
func (r *Renderer) graphLines(in Input, names map[int]string, width, height int) []string {
	h, ok := r.hostByID(in, in.GraphHostID)
	if !ok {
		return []string{"(host no longer available - Esc to return)"}
	}
	label := names[in.GraphHostID]
	if label == "" {
		label = h.Host.Alias
	}

	slots := h.State.Slots()
	if len(slots) > width {
		slots = slots[len(slots)-width:]
	}

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

	state := "LIVE"
	if in.Paused {
		state = "PAUSED"
	}
	rangeLabel := "rtt n/a"
	if seen {
		rangeLabel = fmt.Sprintf("rtt %.1f-%.1f ms", float64(lo)/1e6, float64(hi)/1e6)
	}
	header := fmt.Sprintf("RTT graph - %s [%s] %s %s (Esc to return)", label, rangeLabel, state, in.Timestamp)

	plotH := height - 3 // header, axis rule, age markers
	if plotH < 1 {
		return []string{header}
	}

	span := hi - lo
	if span == 0 {
		span = 1
	}
	heights := make([]int, len(slots))
	for i, s := range slots {
		switch {
		case s.HasRTT:
			frac := float64(s.RTT-lo) / float64(span)
			heights[i] = 1 + int(frac*float64(plotH-1)+0.5)
		case s.Status == ring.Fail:
			heights[i] = -1 // drawn as x on the baseline
		default:
			heights[i] = 0
		}
	}

	lines := []string{header}
	for row := plotH; row >= 1; row-- {
		var b strings.Builder
		for _, hgt := range heights {
			switch {
			case hgt >= row:
				b.WriteString("█")
			case row == 1 && hgt == -1:
				b.WriteString(r.styled(ring.Fail, "x"))
			default:
				b.WriteString(" ")
			}
		}
		lines = append(lines, b.String())
	}
	lines = append(lines, strings.Repeat("-", width))
	lines = append(lines, ageAxis(slots, width, in.Interval))
	return lines
}

// ageAxis labels the bottom of the graph with how long ago the left edge
// was, taken as (number of slots - 1) × interval.
func ageAxis(slots []ring.Slot, width int, interval time.Duration) string {
	if len(slots) == 0 {
		return ""
	}
	oldest := time.Duration(len(slots)-1) * interval
	left := fmt.Sprintf("%ds ago", int(oldest.Seconds()))
	right := "now"
	if width <= len(left)+len(right)+1 {
		return left
	}
	return left + strings.Repeat(" ", width-len(left)-len(right)) + right
}
