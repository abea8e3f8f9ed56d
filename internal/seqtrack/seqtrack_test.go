package seqtrack

import (
	"sync"
	"testing"
)

func mustNext(t *testing.T, tr *Tracker, host string) uint16 {
	t.Helper()
	seq, ok := tr.NextSequence(host)
	if !ok {
		t.Fatalf("NextSequence(%q) unexpectedly at cap", host)
	}
	return seq
}

func TestOutstandingCap(t *testing.T) {
	tr := New(3)
	for i, want := range []uint16{0, 1, 2} {
		if got := mustNext(t, tr, "h"); got != want {
			t.Errorf("sequence %d: got %d, want %d", i, got, want)
		}
	}
	if _, ok := tr.NextSequence("h"); ok {
		t.Error("fourth sequence should be refused at the cap")
	}
	if tr.CanSend("h") {
		t.Error("CanSend should be false at the cap")
	}
	if !tr.MarkReplied("h", 1) {
		t.Error("MarkReplied(1) should report it was outstanding")
	}
	if got := mustNext(t, tr, "h"); got != 3 {
		t.Errorf("next sequence after a reply: got %d, want 3", got)
	}
}

func TestMarkRepliedRoundTrip(t *testing.T) {
	tr := New(3)
	seq := mustNext(t, tr, "h")
	if !tr.MarkReplied("h", seq) {
		t.Error("MarkReplied should be true for an outstanding seq")
	}
	if tr.MarkReplied("h", seq) {
		t.Error("MarkReplied should be false the second time")
	}
	if tr.MarkReplied("h", 9999) {
		t.Error("MarkReplied should be false for a never-sent seq")
	}
	if tr.MarkReplied("unknown", 0) {
		t.Error("MarkReplied should be false for an unknown host")
	}
}

func TestSequenceWraparound(t *testing.T) {
	tr := New(3)
	tr.mu.Lock()
	tr.host("h").next = 65534
	tr.mu.Unlock()

	want := []uint16{65534, 65535, 0}
	for _, w := range want {
		got := mustNext(t, tr, "h")
		if got != w {
			t.Errorf("got %d, want %d", got, w)
		}
		if !tr.MarkReplied("h", got) {
			t.Errorf("MarkReplied(%d) failed", got)
		}
	}
}

func TestHostsAreIndependent(t *testing.T) {
	tr := New(1)
	mustNext(t, tr, "a")
	if _, ok := tr.NextSequence("a"); ok {
		t.Error("host a should be at its cap")
	}
	if got := mustNext(t, tr, "b"); got != 0 {
		t.Errorf("host b first sequence: got %d, want 0", got)
	}
	if tr.OutstandingCount("a") != 1 || tr.OutstandingCount("b") != 1 {
		t.Errorf("wrong outstanding counts: a=%d b=%d",
			tr.OutstandingCount("a"), tr.OutstandingCount("b"))
	}
}

func TestReset(t *testing.T) {
	tr := New(2)
	mustNext(t, tr, "a")
	mustNext(t, tr, "b")
	tr.Reset("a")
	if tr.OutstandingCount("a") != 0 {
		t.Error("Reset should clear the host's outstanding set")
	}
	if got := mustNext(t, tr, "a"); got != 0 {
		t.Errorf("Reset should restart the counter: got %d", got)
	}
	tr.ResetAll()
	if tr.OutstandingCount("b") != 0 {
		t.Error("ResetAll should clear every host")
	}
}

func TestConcurrentUseHoldsInvariant(t *testing.T) {
	tr := New(3)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if seq, ok := tr.NextSequence("h"); ok {
					tr.MarkReplied("h", seq)
				}
				if n := tr.OutstandingCount("h"); n > 3 {
					t.Errorf("outstanding count %d exceeds cap", n)
					return
				}
			}
		}()
	}
	wg.Wait()
}
