package render

import (
	"fmt"
	"strings"

	"github.com/icecake0141/paraping/internal/ring"
)

// summaryLines renders the summary panel: a title, a rule, and one line per
// visible host in the current sort order. When all is set (wide panel or
// fullscreen summary) every field shows at once.
func (r *Renderer) summaryLines(in Input, entries []Entry, names map[int]string, mode SummaryMode, all bool, width int) []string {
	if width <= 0 {
		return nil
	}
	lines := []string{"Summary", strings.Repeat("-", width)}
	for _, e := range entries {
		h, ok := r.hostByID(in, e.HostID)
		if !ok {
			continue
		}
		suffix := summarySuffix(h.State, mode, all)
		lines = append(lines, e.Label+suffix)
	}
	return lines
}

func fmtMillis(v float64, ok bool) string {
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.1f ms", v)
}

// streakLabel formats a streak as F<N> or S<N>, or "-" when there is none.
func streakLabel(st ring.Streak) string {
	switch st.Status {
	case ring.Fail:
		return fmt.Sprintf("F%d", st.Length)
	case ring.Success:
		return fmt.Sprintf("S%d", st.Length)
	default:
		return "-"
	}
}

func summarySuffix(st *ring.State, mode SummaryMode, all bool) string {
	stats := st.Stats()
	if all {
		avg, avgOK := stats.AvgRTTMillis()
		jit, jitOK := st.JitterMillis()
		sd, sdOK := stats.StdDevMillis()
		ttl := "n/a"
		if v, ok := st.LatestTTL(); ok {
			ttl = fmt.Sprintf("%d", v)
		}
		parts := []string{
			fmt.Sprintf("ok %.1f%% loss %.1f%%", stats.SuccessRate(), stats.LossRate()),
			"avg rtt " + fmtMillis(avg, avgOK),
			"jitter " + fmtMillis(jit, jitOK),
			"stddev " + fmtMillis(sd, sdOK),
			"ttl " + ttl,
			"streak " + streakLabel(st.Streak()),
		}
		return ": " + strings.Join(parts, " | ")
	}
	switch mode {
	case SummaryRTT:
		avg, avgOK := stats.AvgRTTMillis()
		jit, jitOK := st.JitterMillis()
		sd, sdOK := stats.StdDevMillis()
		return fmt.Sprintf(": avg rtt %s jitter %s stddev %s",
			fmtMillis(avg, avgOK), fmtMillis(jit, jitOK), fmtMillis(sd, sdOK))
	case SummaryTTL:
		if v, ok := st.LatestTTL(); ok {
			return fmt.Sprintf(": ttl %d", v)
		}
		return ": ttl n/a"
	case SummaryStreak:
		return ": streak " + streakLabel(st.Streak())
	default:
		return fmt.Sprintf(": ok %.1f%% loss %.1f%%", stats.SuccessRate(), stats.LossRate())
	}
}
