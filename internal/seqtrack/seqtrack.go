// Package seqtrack manages per-host ICMP sequence numbers and caps the
// number of outstanding (sent but unreplied) pings.
package seqtrack

import "sync"

// DefaultMaxOutstanding is the default in-flight cap per host. It is small
// so that a black-holing host cannot pile up helper subprocesses.
const DefaultMaxOutstanding = 3

const numSequenceNos = 1 << 16

type hostState struct {
	next        uint16
	outstanding map[uint16]struct{}
}

// Tracker tracks sequence numbers and outstanding pings per host. All
// methods are safe for concurrent use.
type Tracker struct {
	mu             sync.Mutex
	maxOutstanding int
	hosts          map[string]*hostState
}

// New creates a Tracker. maxOutstanding values < 1 use the default.
func New(maxOutstanding int) *Tracker {
	if maxOutstanding < 1 {
		maxOutstanding = DefaultMaxOutstanding
	}
	return &Tracker{
		maxOutstanding: maxOutstanding,
		hosts:          make(map[string]*hostState),
	}
}

func (t *Tracker) host(host string) *hostState {
	h, ok := t.hosts[host]
	if !ok {
		h = &hostState{outstanding: make(map[uint16]struct{})}
		t.hosts[host] = h
	}
	return h
}

// NextSequence returns the next sequence number for host and marks it
// outstanding. Returns ok=false when the host is at the outstanding cap.
func (t *Tracker) NextSequence(host string) (uint16, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.host(host)
	if len(h.outstanding) >= t.maxOutstanding {
		return 0, false
	}
	seq := h.next
	h.outstanding[seq] = struct{}{}
	h.next = uint16((int(seq) + 1) % numSequenceNos)
	return seq, true
}

// MarkReplied removes seq from the host's outstanding set. It reports
// whether the sequence was actually outstanding.
func (t *Tracker) MarkReplied(host string, seq uint16) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.hosts[host]
	if !ok {
		return false
	}
	if _, ok := h.outstanding[seq]; !ok {
		return false
	}
	delete(h.outstanding, seq)
	return true
}

// OutstandingCount returns the number of in-flight pings for host.
func (t *Tracker) OutstandingCount(host string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.hosts[host]
	if !ok {
		return 0
	}
	return len(h.outstanding)
}

// CanSend reports whether host is under the outstanding cap.
func (t *Tracker) CanSend(host string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.hosts[host]
	if !ok {
		return true
	}
	return len(h.outstanding) < t.maxOutstanding
}

// Reset clears all tracking for a single host.
func (t *Tracker) Reset(host string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.hosts, host)
}

// ResetAll clears tracking for every host.
func (t *Tracker) ResetAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hosts = make(map[string]*hostState)
}
