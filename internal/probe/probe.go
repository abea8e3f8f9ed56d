// Package probe runs one scheduler-driven ping loop per host.
//
// Each prober sleeps until its host's scheduled instant, emits a Sent event,
// and detaches the blocking helper invocation into its own goroutine so the
// send cadence is independent of network latency. The scheduler is marked
// sent before the helper runs; other hosts' spacing survives even if the
// helper hangs.
package probe

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/icecake0141/paraping/internal/helper"
	"github.com/icecake0141/paraping/internal/ring"
	"github.com/icecake0141/paraping/internal/sched"
	"github.com/icecake0141/paraping/internal/seqtrack"
)

// Sleep granularities. Small slices keep the loops cancellable.
const (
	sleepSlice = 10 * time.Millisecond
	pauseSlice = 50 * time.Millisecond
)

// Flag is a shared boolean observed by every prober (the pause signal).
type Flag struct {
	v atomic.Bool
}

// Set raises the flag.
func (f *Flag) Set() { f.v.Store(true) }

// Clear lowers the flag.
func (f *Flag) Clear() { f.v.Store(false) }

// IsSet reports the flag state.
func (f *Flag) IsSet() bool { return f.v.Load() }

// Host identifies one probe target.
type Host struct {
	ID   int
	Addr string
}

// Options configures a prober.
type Options struct {
	// Timeout is the per-probe timeout.
	Timeout time.Duration

	// Count is the number of probes to send; 0 means infinite.
	Count int

	// SlowThreshold classifies replies at or above it as slow.
	SlowThreshold time.Duration
}

func (o *Options) timeout() time.Duration {
	if o == nil || o.Timeout == 0 {
		return time.Second
	}
	return o.Timeout
}

func (o *Options) count() int {
	if o == nil {
		return 0
	}
	return o.Count
}

func (o *Options) slowThreshold() time.Duration {
	if o == nil || o.SlowThreshold == 0 {
		return 500 * time.Millisecond
	}
	return o.SlowThreshold
}

// Prober drives probes for one host.
type Prober struct {
	host    Host
	sched   *sched.Scheduler
	tracker *seqtrack.Tracker
	runner  helper.Runner
	queue   *Queue
	pause   *Flag
	opts    *Options
}

// New creates a prober. All probers for a run share the scheduler, tracker,
// queue and pause flag.
func New(host Host, s *sched.Scheduler, t *seqtrack.Tracker, r helper.Runner, q *Queue, pause *Flag, opts *Options) *Prober {
	return &Prober{host: host, sched: s, tracker: t, runner: r, queue: q, pause: pause, opts: opts}
}

// Launch starts probers for every host under one errgroup.
func Launch(ctx context.Context, g *errgroup.Group, hosts []Host, s *sched.Scheduler, t *seqtrack.Tracker, r helper.Runner, q *Queue, pause *Flag, opts *Options) {
	for _, h := range hosts {
		p := New(h, s, t, r, q, pause, opts)
		g.Go(func() error {
			p.Run(ctx)
			return nil
		})
	}
}

// Run loops until the context is cancelled or the probe count is reached,
// then emits a Done sentinel.
func (p *Prober) Run(ctx context.Context) {
	defer p.queue.Push(Event{Type: Done, HostID: p.host.ID, Host: p.host.Addr})

	// A missing helper is reported once, not once per interval.
	if c, ok := p.runner.(interface{ Check() error }); ok {
		if err := c.Check(); err != nil {
			p.queue.Push(Event{Type: Final, HostID: p.host.ID, Host: p.host.Addr, Status: ring.Fail})
			return
		}
	}

	sent := 0
	for {
		if ctx.Err() != nil {
			return
		}
		if n := p.opts.count(); n > 0 && sent >= n {
			return
		}
		if paused := p.waitWhilePaused(ctx); paused {
			// Reschedule from the current time after a pause.
			continue
		} else if ctx.Err() != nil {
			return
		}

		now := time.Now()
		next, ok := p.sched.NextPingTimes(now)[p.host.Addr]
		if !ok {
			return
		}
		if !p.sleepUntil(ctx, now, next) {
			return
		}
		if p.waitWhilePaused(ctx); ctx.Err() != nil {
			return
		}

		seq, ok := p.tracker.NextSequence(p.host.Addr)
		if !ok {
			// At the outstanding cap: keep the spacing, skip the probe.
			p.sched.MarkPingSent(p.host.Addr, time.Now())
			continue
		}

		sent++
		sentAt := time.Now()
		p.queue.Push(Event{Type: Sent, HostID: p.host.ID, Host: p.host.Addr, Seq: seq, SentAt: sentAt})
		p.sched.MarkPingSent(p.host.Addr, sentAt)

		go p.execute(seq)
	}
}

// Sleeps until the wall-clock instant `next`, converting to the monotonic
// clock so system time adjustments between issue and fire don't distort the
// wait. Returns false when cancelled.
func (p *Prober) sleepUntil(ctx context.Context, now, next time.Time) bool {
	target := time.Now().Add(next.Sub(now))
	for {
		if ctx.Err() != nil {
			return false
		}
		remaining := time.Until(target)
		if remaining <= 0 {
			return true
		}
		if remaining > sleepSlice {
			remaining = sleepSlice
		}
		time.Sleep(remaining)
	}
}

// Busy-waits while the pause flag is set, in short slices so stop stays
// responsive. Reports whether any waiting happened.
func (p *Prober) waitWhilePaused(ctx context.Context) bool {
	waited := false
	for p.pause != nil && p.pause.IsSet() {
		if ctx.Err() != nil {
			return waited
		}
		waited = true
		time.Sleep(pauseSlice)
	}
	return waited
}

// Runs the helper for one sequence and pushes the final event. Runs
// detached; results arriving after stop are drained and ignored upstream.
func (p *Prober) execute(seq uint16) {
	timeoutMS := int(p.opts.timeout() / time.Millisecond)
	rep, err := p.runner.Ping(context.Background(), p.host.Addr, timeoutMS, seq)
	p.tracker.MarkReplied(p.host.Addr, seq)

	ev := Event{Type: Final, HostID: p.host.ID, Host: p.host.Addr, Seq: seq}
	switch {
	case err != nil, rep.TimedOut:
		ev.Status = ring.Fail
	default:
		ev.Status = ring.Success
		if rep.RTT >= p.opts.slowThreshold() {
			ev.Status = ring.Slow
		}
		ev.RTT = rep.RTT
		ev.HasRTT = true
		ev.TTL = rep.TTL
		ev.HasTTL = rep.HasTTL
	}
	p.queue.Push(ev)
}
