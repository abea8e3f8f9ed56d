// Package ring holds the per-host timeline ring buffers and running
// statistics that back every view.
//
// Each host owns one State. A probe first reserves a pending slot at send
// time; the final result later overwrites that slot in place. Reserving
// synchronously with the send keeps timeline columns aligned across hosts
// even when replies straggle.
package ring

import (
	"math"
	"time"

	"code.cloudfoundry.org/clock"
)

// Status classifies one timeline slot.
type Status int

// Status values.
const (
	Pending Status = iota
	Success
	Slow
	Fail
)

// Statuses lists every status, in glyph-table order.
var Statuses = []Status{Pending, Success, Slow, Fail}

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Success:
		return "success"
	case Slow:
		return "slow"
	case Fail:
		return "fail"
	default:
		return "(unknown)"
	}
}

// Glyph returns the timeline character for this status.
func (s Status) Glyph() string {
	switch s {
	case Pending:
		return "-"
	case Success:
		return "."
	case Slow:
		return "!"
	case Fail:
		return "x"
	default:
		return "?"
	}
}

// Final reports whether the status is a terminal probe outcome.
func (s Status) Final() bool {
	return s == Success || s == Slow || s == Fail
}

// Slot is one timeline entry.
type Slot struct {
	// Status is pending until the probe finalizes.
	Status Status

	// Seq is the ICMP sequence that landed in this slot.
	Seq uint16

	// RTT is the measured round-trip time; valid only when HasRTT.
	RTT    time.Duration
	HasRTT bool

	// TTL from the reply; valid only when HasTTL.
	TTL    int
	HasTTL bool

	// Time is the send time while pending, then the finalization time.
	Time time.Time
}

// Stats are the running counters for a host. Only final results count;
// pending slots contribute nothing.
type Stats struct {
	Success int
	Slow    int
	Fail    int
	Total   int

	// RTT moments in seconds, for average and standard deviation.
	RTTSum   float64
	RTTSumSq float64
	RTTCount int
}

// SuccessRate is the percentage of finals that got a reply (slow included).
func (s Stats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Success+s.Slow) / float64(s.Total) * 100
}

// LossRate is the percentage of finals that failed.
func (s Stats) LossRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Fail) / float64(s.Total) * 100
}

// AvgRTTMillis returns the mean RTT in milliseconds.
func (s Stats) AvgRTTMillis() (float64, bool) {
	if s.RTTCount == 0 {
		return 0, false
	}
	return s.RTTSum / float64(s.RTTCount) * 1000, true
}

// StdDevMillis returns the RTT standard deviation in milliseconds. Needs at
// least two samples.
func (s Stats) StdDevMillis() (float64, bool) {
	if s.RTTCount < 2 {
		return 0, false
	}
	mean := s.RTTSum / float64(s.RTTCount)
	meanSq := s.RTTSumSq / float64(s.RTTCount)
	variance := meanSq - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance) * 1000, true
}

// State is the ring state for one host.
type State struct {
	clk   clock.Clock
	width int
	slots []Slot
	cats  map[Status][]uint16
	stats Stats
}

// NewState creates ring state with the given timeline width. A nil clk uses
// the real clock.
func NewState(width int, clk clock.Clock) *State {
	if width < 1 {
		width = 1
	}
	if clk == nil {
		clk = clock.NewClock()
	}
	s := &State{clk: clk, width: width, cats: make(map[Status][]uint16, len(Statuses))}
	for _, st := range Statuses {
		s.cats[st] = nil
	}
	return s
}

// Width returns the shared capacity of the rings.
func (s *State) Width() int { return s.width }

// Len returns the number of occupied slots.
func (s *State) Len() int { return len(s.slots) }

// Slots returns the occupied slots, oldest first. The returned slice is
// shared; callers must not modify it.
func (s *State) Slots() []Slot { return s.slots }

// Latest returns the newest slot.
func (s *State) Latest() (Slot, bool) {
	if len(s.slots) == 0 {
		return Slot{}, false
	}
	return s.slots[len(s.slots)-1], true
}

// Stats returns the running counters.
func (s *State) Stats() Stats { return s.stats }

// Category returns the sequence numbers currently filed under status.
func (s *State) Category(status Status) []uint16 {
	return s.cats[status]
}

func (s *State) push(slot Slot) {
	if len(s.slots) == s.width {
		copy(s.slots, s.slots[1:])
		s.slots[len(s.slots)-1] = slot
		return
	}
	s.slots = append(s.slots, slot)
}

func (s *State) pushCat(status Status, seq uint16) {
	c := s.cats[status]
	if len(c) == s.width {
		copy(c, c[1:])
		c[len(c)-1] = seq
	} else {
		c = append(c, seq)
	}
	s.cats[status] = c
}

func (s *State) popCat(status Status) {
	c := s.cats[status]
	if len(c) > 0 {
		s.cats[status] = c[:len(c)-1]
	}
}

// ApplySent reserves a pending slot for a probe sent at sentAt. Stats are
// untouched.
func (s *State) ApplySent(seq uint16, sentAt time.Time) {
	s.push(Slot{Status: Pending, Seq: seq, Time: sentAt})
	s.pushCat(Pending, seq)
}

// ApplyFinal records a final probe result. If the newest slot is still
// pending it is overwritten in place; otherwise a new slot is appended. A
// final status never reverts to pending.
func (s *State) ApplyFinal(status Status, seq uint16, rtt time.Duration, hasRTT bool, ttl int, hasTTL bool) {
	if !status.Final() {
		return
	}
	slot := Slot{
		Status: status,
		Seq:    seq,
		RTT:    rtt,
		HasRTT: hasRTT,
		TTL:    ttl,
		HasTTL: hasTTL,
		Time:   s.clk.Now(),
	}
	if n := len(s.slots); n > 0 && s.slots[n-1].Status == Pending {
		s.slots[n-1] = slot
		s.popCat(Pending)
	} else {
		s.push(slot)
	}
	s.pushCat(status, seq)

	switch status {
	case Success:
		s.stats.Success++
	case Slow:
		s.stats.Slow++
	case Fail:
		s.stats.Fail++
	}
	s.stats.Total++
	if hasRTT {
		secs := rtt.Seconds()
		s.stats.RTTSum += secs
		s.stats.RTTSumSq += secs * secs
		s.stats.RTTCount++
	}
}

// Resize reallocates the rings to a new width, keeping the newest entries.
// Historical alignment with the old width is not preserved.
func (s *State) Resize(width int) {
	if width < 1 {
		width = 1
	}
	if width == s.width {
		return
	}
	if len(s.slots) > width {
		s.slots = append([]Slot(nil), s.slots[len(s.slots)-width:]...)
	}
	for st, c := range s.cats {
		if len(c) > width {
			s.cats[st] = append([]uint16(nil), c[len(c)-width:]...)
		}
	}
	s.width = width
}

// Clone returns a deep copy sharing nothing with the receiver. Snapshots
// depend on this.
func (s *State) Clone() *State {
	c := &State{
		clk:   s.clk,
		width: s.width,
		slots: append([]Slot(nil), s.slots...),
		cats:  make(map[Status][]uint16, len(s.cats)),
		stats: s.stats,
	}
	for st, seqs := range s.cats {
		c.cats[st] = append([]uint16(nil), seqs...)
	}
	return c
}

// Streak describes the run of identical outcomes at the end of the timeline.
type Streak struct {
	// Status is Success (slow counts as success), Fail, or Pending when the
	// timeline is empty or ends on a pending slot.
	Status Status
	Length int
}

// Streak computes the current trailing streak. Slow replies extend a
// success streak.
func (s *State) Streak() Streak {
	n := len(s.slots)
	if n == 0 {
		return Streak{Status: Pending}
	}
	last := s.slots[n-1].Status
	match := func(st Status) bool { return st == last }
	if last == Success || last == Slow {
		match = func(st Status) bool { return st == Success || st == Slow }
		last = Success
	}
	length := 0
	for i := n - 1; i >= 0; i-- {
		if !match(s.slots[i].Status) {
			break
		}
		length++
	}
	return Streak{Status: last, Length: length}
}

// FailStreak returns the number of consecutive failures at the end of the
// timeline.
func (s *State) FailStreak() int {
	streak := 0
	for i := len(s.slots) - 1; i >= 0; i-- {
		if s.slots[i].Status != Fail {
			break
		}
		streak++
	}
	return streak
}

// LatestRTT returns the RTT of the newest slot; false when that slot has none.
func (s *State) LatestRTT() (time.Duration, bool) {
	if n := len(s.slots); n > 0 && s.slots[n-1].HasRTT {
		return s.slots[n-1].RTT, true
	}
	return 0, false
}

// LatestTTL returns the TTL of the newest slot.
func (s *State) LatestTTL() (int, bool) {
	if n := len(s.slots); n > 0 && s.slots[n-1].HasTTL {
		return s.slots[n-1].TTL, true
	}
	return 0, false
}

// JitterMillis is the mean absolute difference between successive RTTs in
// the ring, in milliseconds. Needs at least two RTT-bearing slots.
func (s *State) JitterMillis() (float64, bool) {
	var rtts []float64
	for _, slot := range s.slots {
		if slot.HasRTT {
			rtts = append(rtts, slot.RTT.Seconds())
		}
	}
	if len(rtts) < 2 {
		return 0, false
	}
	var sum float64
	for i := 1; i < len(rtts); i++ {
		sum += math.Abs(rtts[i] - rtts[i-1])
	}
	return sum / float64(len(rtts)-1) * 1000, true
}
