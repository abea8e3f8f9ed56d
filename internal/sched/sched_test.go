package sched

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var base = time.Unix(1000, 0)

func newThreeHosts(interval time.Duration) *Scheduler {
	s := New(interval, interval/3)
	s.AddHost("h0", 0)
	s.AddHost("h1", 1)
	s.AddHost("h2", 2)
	return s
}

func TestStaggeredFirstRound(t *testing.T) {
	s := newThreeHosts(time.Second)
	got := s.NextPingTimes(base)
	want := map[string]time.Time{
		"h0": base,
		"h1": base.Add(time.Second / 3),
		"h2": base.Add(2 * time.Second / 3),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Wrong first round (-want, +got):\n%v", diff)
	}

	s.MarkPingSent("h0", base)
	got = s.NextPingTimes(base.Add(10 * time.Millisecond))
	want["h0"] = base.Add(time.Second)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Wrong round after send (-want, +got):\n%v", diff)
	}
}

func TestAnchorIsStableAcrossCalls(t *testing.T) {
	s := newThreeHosts(time.Second)
	first := s.NextPingTimes(base)
	// Later calls with a later now must not move unsent hosts.
	second := s.NextPingTimes(base.Add(100 * time.Millisecond))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Anchor drifted (-first, +second):\n%v", diff)
	}
}

func TestStaggerSpacingProperty(t *testing.T) {
	interval := 2 * time.Second
	stagger := interval / 5
	s := New(interval, stagger)
	hosts := []string{"a", "b", "c", "d", "e"}
	for i, h := range hosts {
		s.AddHost(h, i)
	}
	next := s.NextPingTimes(base)
	for i := range hosts {
		for j := i + 1; j < len(hosts); j++ {
			gap := next[hosts[j]].Sub(next[hosts[i]])
			want := time.Duration(j-i) * stagger
			if gap != want {
				t.Errorf("gap %s..%s = %v, want %v", hosts[i], hosts[j], gap, want)
			}
		}
	}
}

func TestReanchorAfterPause(t *testing.T) {
	s := newThreeHosts(time.Second)
	s.NextPingTimes(base)
	for _, h := range []string{"h0", "h1", "h2"} {
		s.MarkPingSent(h, base)
	}

	// Resume long after last+interval has passed.
	resume := base.Add(2 * time.Minute)
	got := s.NextPingTimes(resume)
	for host, next := range got {
		if next.Before(resume) {
			t.Errorf("%s scheduled in the past: %v < %v", host, next, resume)
		}
	}
	if got["h1"].Sub(got["h0"]) != time.Second/3 || got["h2"].Sub(got["h1"]) != time.Second/3 {
		t.Errorf("stagger order not preserved after re-anchor: %v", got)
	}
}

func TestAddHostIdempotent(t *testing.T) {
	s := New(time.Second, time.Second/2)
	s.AddHost("a", 0)
	s.AddHost("b", 1)
	s.AddHost("a", 0)
	if diff := cmp.Diff([]string{"a", "b"}, s.Hosts()); diff != "" {
		t.Errorf("Wrong hosts (-want, +got):\n%v", diff)
	}
	next := s.NextPingTimes(base)
	if next["b"].Sub(next["a"]) != time.Second/2 {
		t.Errorf("re-adding a host must not change its slot: %v", next)
	}
}

func TestResetTiming(t *testing.T) {
	s := newThreeHosts(time.Second)
	s.NextPingTimes(base)
	s.MarkPingSent("h0", base)

	later := base.Add(30 * time.Second)
	s.ResetTiming(later)
	got := s.NextPingTimes(later)
	want := map[string]time.Time{
		"h0": later,
		"h1": later.Add(time.Second / 3),
		"h2": later.Add(2 * time.Second / 3),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Wrong times after reset (-want, +got):\n%v", diff)
	}
	if s.SendCount("h0") != 1 {
		t.Errorf("ResetTiming must not clear send counts: %d", s.SendCount("h0"))
	}
}

func TestMarkPingSentUnknownHost(t *testing.T) {
	s := New(time.Second, 0)
	s.MarkPingSent("nope", base) // must not panic
	if s.SendCount("nope") != 0 {
		t.Error("unknown host should have no send count")
	}
}
