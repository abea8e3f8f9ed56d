package render

import (
	"cmp"
	"slices"
	"time"
)

// Entry is one visible host row after filtering and sorting.
type Entry struct {
	HostID int
	Label  string
}

// BuildEntries filters and orders the hosts for display. Filtering happens
// against the (possibly historical) ring state the caller passes in via the
// views.
func BuildEntries(hosts []HostView, names map[int]string, sortMode SortMode, filterMode FilterMode, slowThreshold time.Duration) []Entry {
	type scored struct {
		Entry
		failCount  int
		failStreak int
		latestRTT  time.Duration
		hasRTT     bool
	}

	var entries []scored
	for _, h := range hosts {
		rtt, hasRTT := h.State.LatestRTT()
		failCount := h.State.Stats().Fail

		include := true
		switch filterMode {
		case FilterFailures:
			include = failCount > 0
		case FilterLatency:
			include = hasRTT && rtt >= slowThreshold
		}
		if !include {
			continue
		}
		label := names[h.Host.ID]
		if label == "" {
			label = h.Host.Alias
		}
		entries = append(entries, scored{
			Entry:      Entry{HostID: h.Host.ID, Label: label},
			failCount:  failCount,
			failStreak: h.State.FailStreak(),
			latestRTT:  rtt,
			hasRTT:     hasRTT,
		})
	}

	switch sortMode {
	case SortFailures:
		slices.SortStableFunc(entries, func(a, b scored) int {
			if c := cmp.Compare(b.failCount, a.failCount); c != 0 {
				return c
			}
			return cmp.Compare(a.Label, b.Label)
		})
	case SortStreak:
		slices.SortStableFunc(entries, func(a, b scored) int {
			if c := cmp.Compare(b.failStreak, a.failStreak); c != 0 {
				return c
			}
			return cmp.Compare(a.Label, b.Label)
		})
	case SortLatency:
		slices.SortStableFunc(entries, func(a, b scored) int {
			ra, rb := time.Duration(-1), time.Duration(-1)
			if a.hasRTT {
				ra = a.latestRTT
			}
			if b.hasRTT {
				rb = b.latestRTT
			}
			if c := cmp.Compare(rb, ra); c != 0 {
				return c
			}
			return cmp.Compare(a.Label, b.Label)
		})
	case SortHost:
		slices.SortStableFunc(entries, func(a, b scored) int {
			return cmp.Compare(a.Label, b.Label)
		})
	}

	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Entry
	}
	return out
}
