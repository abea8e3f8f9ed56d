// Package history keeps a bounded ring of point-in-time snapshots of every
// host's ring state, enabling backward navigation through recent results.
package history

import (
	"time"

	"github.com/icecake0141/paraping/internal/ring"
)

// Snapshot cadence and retention.
const (
	// SnapshotInterval is the minimum spacing between snapshots.
	SnapshotInterval = time.Second

	// DurationMinutes is how much history the ring retains at the default
	// cadence.
	DurationMinutes = 30
)

// DefaultCapacity is the default number of snapshots retained.
const DefaultCapacity = DurationMinutes * 60

// Snapshot is an immutable deep copy of all hosts' ring state at one
// instant. The ring states carry their stats counters.
type Snapshot struct {
	Timestamp time.Time
	Hosts     map[int]*ring.State
}

// Ring is the append-only bounded snapshot ring. Offset 0 is the live view;
// offset k>0 selects the k-th snapshot back from the newest.
type Ring struct {
	capacity int
	snaps    []*Snapshot
	lastTake time.Time
	hasTake  bool
}

// NewRing creates a snapshot ring. Capacity values < 1 use the default.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Ring{capacity: capacity}
}

// Len returns the number of stored snapshots.
func (r *Ring) Len() int { return len(r.snaps) }

// MaxOffset returns the largest valid history offset.
func (r *Ring) MaxOffset() int {
	if len(r.snaps) == 0 {
		return 0
	}
	return len(r.snaps) - 1
}

// UpdateIfDue takes a snapshot when at least SnapshotInterval has passed
// since the previous one. When a snapshot is appended while the caller is
// viewing history, the returned offset is bumped (clamped to the ring) so
// the view keeps pointing at the same snapshot rather than the same
// distance from live.
func (r *Ring) UpdateIfDue(now time.Time, hosts map[int]*ring.State, offset int) (newOffset int, took bool) {
	if r.hasTake && now.Sub(r.lastTake) < SnapshotInterval {
		return offset, false
	}
	snap := &Snapshot{Timestamp: now, Hosts: make(map[int]*ring.State, len(hosts))}
	for id, st := range hosts {
		snap.Hosts[id] = st.Clone()
	}
	if len(r.snaps) == r.capacity {
		copy(r.snaps, r.snaps[1:])
		r.snaps[len(r.snaps)-1] = snap
	} else {
		r.snaps = append(r.snaps, snap)
	}
	r.lastTake = now
	r.hasTake = true
	if offset > 0 {
		offset = min(offset+1, r.MaxOffset())
	}
	return offset, true
}

// At returns the snapshot at the given offset, or nil for offset 0 (live)
// and out-of-range offsets.
func (r *Ring) At(offset int) *Snapshot {
	if offset <= 0 || offset > r.MaxOffset() {
		return nil
	}
	return r.snaps[len(r.snaps)-1-offset]
}

// ClampOffset bounds an offset to the valid range.
func (r *Ring) ClampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return min(offset, r.MaxOffset())
}

// Resolve picks the state to render. Offset 0 returns the live state;
// anything else returns the snapshot's state and forces the paused flag so
// the header makes clear the view is frozen.
func (r *Ring) Resolve(offset int, live map[int]*ring.State, paused bool) (map[int]*ring.State, bool) {
	if snap := r.At(offset); snap != nil {
		return snap.Hosts, true
	}
	return live, paused
}
