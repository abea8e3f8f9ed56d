// Package tui implements the interactive terminal monitor: the bubbletea
// model owns all display state, drains the probe and resolver queues on a
// fixed tick, and dispatches keys across the live, help, host-select and
// graph modes.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/icecake0141/paraping/internal/helper"
	"github.com/icecake0141/paraping/internal/history"
	"github.com/icecake0141/paraping/internal/hostlist"
	"github.com/icecake0141/paraping/internal/layout"
	"github.com/icecake0141/paraping/internal/probe"
	"github.com/icecake0141/paraping/internal/render"
	"github.com/icecake0141/paraping/internal/resolve"
	"github.com/icecake0141/paraping/internal/ring"
	"github.com/icecake0141/paraping/internal/sched"
	"github.com/icecake0141/paraping/internal/seqtrack"
)

// Loop timing.
const (
	tickInterval  = 50 * time.Millisecond
	flashDuration = 100 * time.Millisecond

	// Fallback ring width before the first WindowSizeMsg arrives.
	initialTimelineWidth = 60

	// The activity indicator advances at 8 Hz.
	activityPeriodMillis = 125
)

// PauseMode selects what the p key pauses.
type PauseMode string

// Pause modes.
const (
	PauseDisplay PauseMode = "display"
	PausePing    PauseMode = "ping"
)

// Options configures the monitor.
type Options struct {
	Hosts         []hostlist.Host
	Interval      time.Duration
	Timeout       time.Duration
	Count         int
	SlowThreshold time.Duration

	PanelPos   layout.PanelPosition
	PauseMode  PauseMode
	HelperPath string

	Color          bool
	ColorSupported bool
	FlashOnFail    bool
	BellOnFail     bool

	DisplayTZ  *time.Location
	SnapshotTZ *time.Location

	// Runner overrides the helper invocation (tests). Nil uses the real
	// helper binary at HelperPath.
	Runner helper.Runner

	// Resolvers overrides the background resolvers (tests).
	Resolvers *resolve.Workers
}

type screenMode int

const (
	modeLive screenMode = iota
	modeHelp
	modeHostSelect
	modeGraph
)

type tickMsg time.Time

type flashClearMsg struct{}

// Model is the top-level bubbletea model.
type Model struct {
	opts     *Options
	renderer *render.Renderer
	clk      clock.Clock

	// Engine shared state.
	queue    *probe.Queue
	schedule *sched.Scheduler
	tracker  *seqtrack.Tracker
	pause    *probe.Flag
	workers  *resolve.Workers
	asnCache *resolve.ASNCache
	cancel   context.CancelFunc
	group    *errgroup.Group

	// Display state, owned by the UI loop.
	width, height int
	states        map[int]*ring.State
	runtimes      map[int]*hostlist.Runtime
	idsByAddr     map[string][]int

	hist       *history.Ring
	histOffset int

	mode        screenMode
	nameMode    render.NameMode
	view        render.DisplayMode
	summaryMode render.SummaryMode
	sortMode    render.SortMode
	filterMode  render.FilterMode

	panelPos  layout.PanelPosition
	lastPanel layout.PanelPosition
	showASN   bool

	paused       bool
	pauseFrozen  map[int]*ring.State
	statusMsg    string
	flashing     bool
	bellOnFail   bool
	flashOnFail  bool
	fullSummary  bool
	scrollOffset int
	selectIndex  int
	graphHostID  int

	pageStepCache int
	pageStepValid bool

	completed int
	quitting  bool
}

// New creates the model and starts the probers and resolver workers.
func New(opts *Options) *Model {
	m := &Model{
		opts:        opts,
		renderer:    render.New(opts.Color && opts.ColorSupported),
		clk:         clock.NewClock(),
		queue:       probe.NewQueue(),
		tracker:     seqtrack.New(seqtrack.DefaultMaxOutstanding),
		pause:       &probe.Flag{},
		asnCache:    resolve.NewASNCache(resolve.DefaultFailureTTL),
		states:      make(map[int]*ring.State),
		runtimes:    make(map[int]*hostlist.Runtime),
		idsByAddr:   make(map[string][]int),
		hist:        history.NewRing(history.DefaultCapacity),
		nameMode:    render.NameAlias,
		panelPos:    opts.PanelPos,
		showASN:     true,
		bellOnFail:  opts.BellOnFail,
		flashOnFail: opts.FlashOnFail,
		graphHostID: -1,
	}
	if m.panelPos != layout.PanelNone {
		m.lastPanel = m.panelPos
	}

	stagger := time.Duration(0)
	if n := len(opts.Hosts); n > 0 {
		stagger = opts.Interval / time.Duration(n)
	}
	m.schedule = sched.New(opts.Interval, stagger)

	hosts := make([]probe.Host, 0, len(opts.Hosts))
	for _, h := range opts.Hosts {
		m.schedule.AddHost(h.Addr, h.ID)
		m.states[h.ID] = ring.NewState(initialTimelineWidth, m.clk)
		m.runtimes[h.ID] = &hostlist.Runtime{}
		m.idsByAddr[h.Addr] = append(m.idsByAddr[h.Addr], h.ID)
		hosts = append(hosts, probe.Host{ID: h.ID, Addr: h.Addr})
	}

	runner := opts.Runner
	if runner == nil {
		runner = &helper.ExecRunner{Path: opts.HelperPath}
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.group, ctx = errgroup.WithContext(ctx)

	m.workers = opts.Resolvers
	if m.workers == nil {
		m.workers = resolve.NewWorkers(resolve.DefaultTimeout)
	}
	m.workers.Start(ctx)
	m.submitInitialLookups()

	probe.Launch(ctx, m.group, hosts, m.schedule, m.tracker, runner, m.queue, m.pause, &probe.Options{
		Timeout:       opts.Timeout,
		Count:         opts.Count,
		SlowThreshold: opts.SlowThreshold,
	})

	return m
}

// submitInitialLookups queues one rDNS and (cache permitting) one ASN
// request per distinct address.
func (m *Model) submitInitialLookups() {
	seen := map[string]bool{}
	for _, h := range m.opts.Hosts {
		if seen[h.Addr] {
			continue
		}
		seen[h.Addr] = true
		for _, id := range m.idsByAddr[h.Addr] {
			m.runtimes[id].RDNSPending = true
		}
		m.workers.RDNSRequests <- resolve.Request{Host: h.Addr, IP: h.IP}

		if asn, ok, cached := m.asnCache.Get(h.IP); cached && ok {
			for _, id := range m.idsByAddr[h.Addr] {
				m.runtimes[id].ASN = asn
				m.runtimes[id].HasASN = true
			}
		} else if m.asnCache.ShouldRetry(h.IP, m.clk.Now()) {
			for _, id := range m.idsByAddr[h.Addr] {
				m.runtimes[id].ASNPending = true
			}
			m.workers.ASNRequests <- resolve.Request{Host: h.Addr, IP: h.IP}
		}
	}
}

// Init schedules the first tick.
func (m *Model) Init() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update processes one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.pageStepValid = false
		m.resizeRings()
		return m, nil
	case tickMsg:
		cmd := m.tick()
		return m, tea.Batch(cmd, tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) }))
	case flashClearMsg:
		m.flashing = false
		return m, nil
	}
	return m, nil
}

// tick drains every queue, updates resolution state, and snapshots.
func (m *Model) tick() tea.Cmd {
	var cmds []tea.Cmd

	for {
		ev, ok := m.queue.TryPop()
		if !ok {
			break
		}
		if cmd := m.applyEvent(ev); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	m.drainResolvers()
	m.retryExpiredASNs()

	now := m.clk.Now()
	m.histOffset, _ = m.hist.UpdateIfDue(now, m.states, m.histOffset)

	if m.opts.Count > 0 && m.completed >= len(m.opts.Hosts) && !m.quitting {
		m.quitting = true
		m.shutdown()
		cmds = append(cmds, tea.Quit)
	}
	return tea.Batch(cmds...)
}

func (m *Model) applyEvent(ev probe.Event) tea.Cmd {
	switch ev.Type {
	case probe.Done:
		m.completed++
		return nil
	case probe.Sent:
		if st, ok := m.states[ev.HostID]; ok {
			st.ApplySent(ev.Seq, ev.SentAt)
		}
		return nil
	default:
		st, ok := m.states[ev.HostID]
		if !ok {
			return nil
		}
		st.ApplyFinal(ev.Status, ev.Seq, ev.RTT, ev.HasRTT, ev.TTL, ev.HasTTL)
		if ev.Status == ring.Fail && m.mode == modeLive {
			return m.failAlarm()
		}
		return nil
	}
}

// failAlarm triggers the configured flash and bell.
func (m *Model) failAlarm() tea.Cmd {
	var cmd tea.Cmd
	if m.flashOnFail && !m.flashing {
		m.flashing = true
		cmd = tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashClearMsg{} })
	}
	if m.bellOnFail {
		// The bell goes to stderr so it cannot corrupt the rendered frame.
		_, _ = os.Stderr.WriteString("\a")
	}
	return cmd
}

func (m *Model) drainResolvers() {
	for {
		select {
		case res := <-m.workers.RDNSResults:
			for _, id := range m.idsByAddr[res.Host] {
				rt := m.runtimes[id]
				rt.RDNS = res.Name
				rt.HasRDNS = res.OK
				rt.RDNSPending = false
			}
		case res := <-m.workers.ASNResults:
			ip := res.Host
			for _, id := range m.idsByAddr[res.Host] {
				rt := m.runtimes[id]
				rt.ASN = res.ASN
				rt.HasASN = res.OK
				rt.ASNPending = false
				ip = m.opts.Hosts[id].IP
			}
			m.asnCache.Put(ip, res.ASN, res.OK, m.clk.Now())
		default:
			return
		}
	}
}

// retryExpiredASNs re-queues ASN lookups whose cached failure aged out.
func (m *Model) retryExpiredASNs() {
	now := m.clk.Now()
	seen := map[string]bool{}
	for _, h := range m.opts.Hosts {
		if seen[h.Addr] {
			continue
		}
		seen[h.Addr] = true
		rt := m.runtimes[h.ID]
		if rt.ASNPending || rt.HasASN {
			continue
		}
		if !m.asnCache.ShouldRetry(h.IP, now) {
			continue
		}
		for _, id := range m.idsByAddr[h.Addr] {
			m.runtimes[id].ASNPending = true
		}
		select {
		case m.workers.ASNRequests <- resolve.Request{Host: h.Addr, IP: h.IP}:
		default:
		}
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	// Quit works from every mode.
	if key.Matches(msg, defaultKeyMap.Quit) {
		m.quitting = true
		m.shutdown()
		return tea.Quit
	}

	switch m.mode {
	case modeHelp:
		// Any key dismisses help.
		m.mode = modeLive
		return nil
	case modeHostSelect:
		return m.handleHostSelectKey(msg)
	case modeGraph:
		switch {
		case key.Matches(msg, defaultKeyMap.Esc):
			m.mode = modeLive
			m.graphHostID = -1
		case key.Matches(msg, defaultKeyMap.HostSelect):
			m.mode = modeHostSelect
			m.graphHostID = -1
		}
		return nil
	default:
		return m.handleLiveKey(msg)
	}
}

func (m *Model) handleHostSelectKey(msg tea.KeyMsg) tea.Cmd {
	entries := m.entries()
	if len(entries) == 0 {
		m.selectIndex = 0
	} else if m.selectIndex > len(entries)-1 {
		m.selectIndex = len(entries) - 1
	}
	switch {
	case key.Matches(msg, defaultKeyMap.SelectPrev):
		if m.selectIndex > 0 {
			m.selectIndex--
		}
	case key.Matches(msg, defaultKeyMap.SelectNext):
		if m.selectIndex < len(entries)-1 {
			m.selectIndex++
		}
	case key.Matches(msg, defaultKeyMap.Accept):
		if len(entries) > 0 {
			m.graphHostID = entries[m.selectIndex].HostID
			m.mode = modeGraph
		}
	case key.Matches(msg, defaultKeyMap.Esc):
		m.mode = modeLive
	}
	return nil
}

func (m *Model) handleLiveKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, defaultKeyMap.Help):
		m.mode = modeHelp
	case key.Matches(msg, defaultKeyMap.NameMode):
		m.nameMode = m.nameMode.Next()
		m.pageStepValid = false
	case key.Matches(msg, defaultKeyMap.View):
		m.view = m.view.Next()
	case key.Matches(msg, defaultKeyMap.Sort):
		m.sortMode = m.sortMode.Next()
		m.pageStepValid = false
	case key.Matches(msg, defaultKeyMap.Filter):
		m.filterMode = m.filterMode.Next()
		m.pageStepValid = false
	case key.Matches(msg, defaultKeyMap.ASN):
		m.showASN = !m.showASN
		m.pageStepValid = false
	case key.Matches(msg, defaultKeyMap.Summary):
		m.summaryMode = m.summaryMode.Next()
		m.statusMsg = "Summary: " + strings.ToUpper(m.summaryMode.String())
	case key.Matches(msg, defaultKeyMap.Color):
		if !m.opts.ColorSupported {
			m.statusMsg = "Color output unavailable (no TTY)"
		} else {
			m.renderer.Color = !m.renderer.Color
			if m.renderer.Color {
				m.statusMsg = "Color output enabled"
			} else {
				m.statusMsg = "Color output disabled"
			}
		}
	case key.Matches(msg, defaultKeyMap.Bell):
		m.bellOnFail = !m.bellOnFail
		if m.bellOnFail {
			m.statusMsg = "Bell on fail enabled"
		} else {
			m.statusMsg = "Bell on fail disabled"
		}
	case key.Matches(msg, defaultKeyMap.FullSummary):
		m.fullSummary = !m.fullSummary
		if m.fullSummary {
			m.statusMsg = "Summary fullscreen view enabled"
		} else {
			m.statusMsg = "Summary fullscreen view disabled"
		}
	case key.Matches(msg, defaultKeyMap.TogglePanel):
		def := m.opts.PanelPos
		if def == layout.PanelNone {
			def = layout.PanelRight
		}
		m.panelPos, m.lastPanel = layout.TogglePanel(m.panelPos, m.lastPanel, def)
		if m.panelPos == layout.PanelNone {
			m.statusMsg = "Summary panel hidden"
		} else {
			m.statusMsg = "Summary panel shown"
		}
		m.pageStepValid = false
	case key.Matches(msg, defaultKeyMap.CyclePanel):
		ref := m.panelPos
		if ref == layout.PanelNone {
			ref = m.lastPanel
		}
		m.panelPos = layout.CyclePanel(ref)
		m.lastPanel = m.panelPos
		m.statusMsg = "Summary panel position: " + strings.ToUpper(string(m.panelPos))
		m.pageStepValid = false
	case key.Matches(msg, defaultKeyMap.Pause):
		return m.togglePause()
	case key.Matches(msg, defaultKeyMap.Snapshot):
		m.saveSnapshot()
	case key.Matches(msg, defaultKeyMap.HistBack):
		m.historyBack()
	case key.Matches(msg, defaultKeyMap.HistForward):
		m.historyForward()
	case key.Matches(msg, defaultKeyMap.ScrollUp):
		m.scrollBy(-1)
	case key.Matches(msg, defaultKeyMap.ScrollDown):
		m.scrollBy(1)
	case key.Matches(msg, defaultKeyMap.HostSelect):
		m.mode = modeHostSelect
		m.selectIndex = 0
	}
	return nil
}

func (m *Model) togglePause() tea.Cmd {
	m.paused = !m.paused
	if m.paused {
		m.statusMsg = "Paused"
	} else {
		m.statusMsg = "Resumed"
	}
	if m.opts.PauseMode == PausePing {
		if m.paused {
			m.pause.Set()
		} else {
			m.pause.Clear()
		}
		m.pauseFrozen = nil
		return nil
	}
	// Display pause freezes a copy; probes keep updating the live state.
	if m.paused {
		m.pauseFrozen = make(map[int]*ring.State, len(m.states))
		for id, st := range m.states {
			m.pauseFrozen[id] = st.Clone()
		}
	} else {
		m.pauseFrozen = nil
	}
	return nil
}

func (m *Model) historyBack() {
	if m.histOffset >= m.hist.MaxOffset() {
		return
	}
	m.histOffset = m.hist.ClampOffset(m.histOffset + m.pageStep())
	if snap := m.hist.At(m.histOffset); snap != nil {
		m.statusMsg = fmt.Sprintf("Viewing %ds ago", int(m.clk.Now().Sub(snap.Timestamp).Seconds()))
	}
}

func (m *Model) historyForward() {
	if m.histOffset == 0 {
		return
	}
	m.histOffset = max(0, m.histOffset-m.pageStep())
	if m.histOffset == 0 {
		m.statusMsg = "Returned to LIVE view"
	} else if snap := m.hist.At(m.histOffset); snap != nil {
		m.statusMsg = fmt.Sprintf("Viewing %ds ago", int(m.clk.Now().Sub(snap.Timestamp).Seconds()))
	}
}

func (m *Model) scrollBy(delta int) {
	maxOffset, visible, total := m.scrollBounds()
	next := m.scrollOffset + delta
	if next < 0 || next > maxOffset || total == 0 {
		return
	}
	m.scrollOffset = next
	end := min(m.scrollOffset+visible, total)
	m.statusMsg = fmt.Sprintf("Hosts %d-%d of %d", m.scrollOffset+1, end, total)
}

// scrollBounds computes how far the host list can scroll under the current
// layout.
func (m *Model) scrollBounds() (maxOffset, visible, total int) {
	entries := m.entries()
	total = len(entries)
	labels := make([]string, total)
	for i, e := range entries {
		labels[i] = e.Label
	}
	bodyH := m.height - layout.StatusBoxHeight(m.width, m.height)
	panel := layout.PanelSizes(m.width, bodyH, m.panelPos)
	ml := layout.MainLayout(labels, panel.MainWidth, panel.MainHeight, layout.HeaderLines)
	visible = ml.VisibleHosts
	maxOffset = max(0, total-visible)
	return maxOffset, visible, total
}

// pageStep is the history step: the current timeline width, cached until
// the layout changes.
func (m *Model) pageStep() int {
	if m.pageStepValid {
		return m.pageStepCache
	}
	entries := m.entries()
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.Label
	}
	bodyH := m.height - layout.StatusBoxHeight(m.width, m.height)
	panel := layout.PanelSizes(m.width, bodyH, m.panelPos)
	ml := layout.MainLayout(labels, panel.MainWidth, panel.MainHeight, layout.HeaderLines)
	m.pageStepCache = max(1, ml.TimelineWidth)
	m.pageStepValid = true
	return m.pageStepCache
}

// resizeRings reallocates every ring to the new timeline width.
func (m *Model) resizeRings() {
	if m.width == 0 {
		return
	}
	step := m.pageStep()
	for _, st := range m.states {
		st.Resize(step)
	}
}

// renderStates picks live, display-frozen, or historical state.
func (m *Model) renderStates() (map[int]*ring.State, bool) {
	if m.histOffset > 0 {
		return m.hist.Resolve(m.histOffset, m.states, m.paused)
	}
	if m.paused && m.pauseFrozen != nil {
		return m.pauseFrozen, true
	}
	return m.states, m.paused
}

func (m *Model) hostViews(states map[int]*ring.State) []render.HostView {
	views := make([]render.HostView, 0, len(m.opts.Hosts))
	for _, h := range m.opts.Hosts {
		st, ok := states[h.ID]
		if !ok {
			st = m.states[h.ID]
		}
		views = append(views, render.HostView{Host: h, Runtime: *m.runtimes[h.ID], State: st})
	}
	return views
}

func (m *Model) entries() []render.Entry {
	states, _ := m.renderStates()
	views := m.hostViews(states)
	includeASN := render.ShouldShowASN(views, m.nameMode, m.showASN, m.width)
	names := render.BuildNames(views, m.nameMode, includeASN)
	return render.BuildEntries(views, names, m.sortMode, m.filterMode, m.opts.SlowThreshold)
}

func formatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	zone, _ := t.Zone()
	return t.Format("2006-01-02 15:04:05") + " (" + zone + ")"
}

func (m *Model) buildInput(states map[int]*ring.State, paused bool) render.Input {
	ts := m.clk.Now()
	if snap := m.hist.At(m.histOffset); snap != nil {
		ts = snap.Timestamp
	}
	overlay := render.OverlayNone
	switch m.mode {
	case modeHelp:
		overlay = render.OverlayHelp
	case modeHostSelect:
		overlay = render.OverlayHostSelect
	case modeGraph:
		overlay = render.OverlayGraph
	}
	return render.Input{
		TermWidth:         m.width,
		TermHeight:        m.height,
		Hosts:             m.hostViews(states),
		NameMode:          m.nameMode,
		ShowASN:           m.showASN,
		View:              m.view,
		Summary:           m.summaryMode,
		Sort:              m.sortMode,
		Filter:            m.filterMode,
		PanelPos:          m.panelPos,
		SlowThreshold:     m.opts.SlowThreshold,
		Interval:          m.opts.Interval,
		Paused:            paused,
		StatusMessage:     m.statusMsg,
		Timestamp:         formatTimestamp(ts, m.opts.DisplayTZ),
		ScrollOffset:      m.scrollOffset,
		SummaryFullscreen: m.fullSummary,
		Overlay:           overlay,
		SelectIndex:       m.selectIndex,
		GraphHostID:       m.graphHostID,
		ActivityTick:      int(m.clk.Now().UnixMilli() / activityPeriodMillis),
	}
}

// View renders the screen.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	states, paused := m.renderStates()
	lines := m.renderer.Build(m.buildInput(states, paused))
	frame := strings.Join(lines, "\n")
	if m.flashing {
		return lipgloss.NewStyle().Reverse(true).Render(frame)
	}
	return frame
}

// saveSnapshot writes the current live view, uncolored, to a timestamped
// text file.
func (m *Model) saveSnapshot() {
	name := m.clk.Now().In(m.snapshotTZ()).Format("paraping_snapshot_20060102_150405.txt")
	plain := render.Renderer{Theme: m.renderer.Theme, Color: false}
	in := m.buildInput(m.states, m.paused)
	in.Overlay = render.OverlayNone
	lines := plain.Build(in)
	if err := os.WriteFile(name, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		m.statusMsg = "Snapshot failed: " + err.Error()
		return
	}
	m.statusMsg = "Saved: " + name
}

func (m *Model) snapshotTZ() *time.Location {
	if m.opts.SnapshotTZ != nil {
		return m.opts.SnapshotTZ
	}
	return time.UTC
}

// shutdown stops the probers and resolvers. Safe to call twice.
func (m *Model) shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.workers != nil {
		m.workers.Stop()
	}
	if m.group != nil {
		_ = m.group.Wait()
	}
}

// FinalStats returns the per-host counters for the exit summary.
func (m *Model) FinalStats() map[int]ring.Stats {
	out := make(map[int]ring.Stats, len(m.states))
	for id, st := range m.states {
		out[id] = st.Stats()
	}
	return out
}
