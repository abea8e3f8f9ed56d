package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/icecake0141/paraping/internal/helper"
	"github.com/icecake0141/paraping/internal/hostlist"
	"github.com/icecake0141/paraping/internal/layout"
	"github.com/icecake0141/paraping/internal/render"
	"github.com/icecake0141/paraping/internal/resolve"
	"github.com/icecake0141/paraping/internal/ring"
)

type okRunner struct{}

func (okRunner) Ping(context.Context, string, int, uint16) (helper.Reply, error) {
	return helper.Reply{RTT: time.Millisecond, TTL: 64, HasTTL: true}, nil
}

func testModel(t *testing.T, hosts ...string) *Model {
	t.Helper()
	if len(hosts) == 0 {
		hosts = []string{"alpha"}
	}
	hs := make([]hostlist.Host, len(hosts))
	for i, h := range hosts {
		hs[i] = hostlist.Host{ID: i, Addr: h, Alias: h, IP: "192.0.2.1"}
	}
	workers := resolve.NewWorkersFuncs(time.Second,
		func(string) (string, bool) { return "", false },
		func(string, time.Duration) (string, bool) { return "", false },
	)
	m := New(&Options{
		Hosts:          hs,
		Interval:       time.Hour, // probers effectively idle during tests
		Timeout:        time.Second,
		SlowThreshold:  500 * time.Millisecond,
		PanelPos:       layout.PanelNone,
		PauseMode:      PauseDisplay,
		ColorSupported: false,
		Runner:         okRunner{},
		Resolvers:      workers,
	})
	t.Cleanup(m.shutdown)
	m.width, m.height = 80, 24
	return m
}

func press(m *Model, r rune) {
	m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func pressSpecial(m *Model, tp tea.KeyType) {
	m.handleKey(tea.KeyMsg{Type: tp})
}

func TestModeTransitions(t *testing.T) {
	m := testModel(t)

	press(m, 'h')
	if m.mode != modeHelp {
		t.Fatalf("mode = %v, want help", m.mode)
	}
	press(m, 'x') // any key dismisses help
	if m.mode != modeLive {
		t.Fatalf("any key should leave help: %v", m.mode)
	}

	press(m, 'g')
	if m.mode != modeHostSelect {
		t.Fatalf("g should open host select: %v", m.mode)
	}
	pressSpecial(m, tea.KeyEnter)
	if m.mode != modeGraph || m.graphHostID != 0 {
		t.Fatalf("enter should open the graph: mode=%v host=%d", m.mode, m.graphHostID)
	}
	press(m, 'g')
	if m.mode != modeHostSelect {
		t.Fatalf("g from graph reopens select: %v", m.mode)
	}
	pressSpecial(m, tea.KeyEsc)
	if m.mode != modeLive {
		t.Fatalf("esc should return live: %v", m.mode)
	}
}

func TestHostSelectMovement(t *testing.T) {
	m := testModel(t, "alpha", "beta", "gamma")
	press(m, 'g')
	press(m, 'n')
	press(m, 'n')
	if m.selectIndex != 2 {
		t.Errorf("n n should land on the third host: %d", m.selectIndex)
	}
	press(m, 'n') // clamped at the end
	if m.selectIndex != 2 {
		t.Errorf("cursor should clamp: %d", m.selectIndex)
	}
	press(m, 'p')
	if m.selectIndex != 1 {
		t.Errorf("p should move up: %d", m.selectIndex)
	}
	pressSpecial(m, tea.KeyEnter)
	if m.graphHostID != 1 {
		t.Errorf("graph host = %d, want 1", m.graphHostID)
	}
}

func TestModeCycling(t *testing.T) {
	m := testModel(t)

	press(m, 'v')
	if m.view != render.ViewSparkline {
		t.Errorf("view = %v", m.view)
	}
	press(m, 'v')
	press(m, 'v')
	if m.view != render.ViewTimeline {
		t.Errorf("view cycle should wrap: %v", m.view)
	}

	press(m, 'o')
	if m.sortMode != render.SortFailures {
		t.Errorf("sort = %v", m.sortMode)
	}
	press(m, 'f')
	if m.filterMode != render.FilterFailures {
		t.Errorf("filter = %v", m.filterMode)
	}
	press(m, 'n')
	if m.nameMode != render.NameIP {
		t.Errorf("name mode should cycle alias to ip: %v", m.nameMode)
	}
	press(m, 'm')
	if m.summaryMode != render.SummaryRTT || !strings.Contains(m.statusMsg, "RTT") {
		t.Errorf("summary = %v msg=%q", m.summaryMode, m.statusMsg)
	}
}

func TestColorRefusedWithoutTTY(t *testing.T) {
	m := testModel(t)
	press(m, 'c')
	if m.renderer.Color {
		t.Error("color must stay off without a TTY")
	}
	if !strings.Contains(m.statusMsg, "unavailable") {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestPausePingModeSetsFlag(t *testing.T) {
	m := testModel(t)
	m.opts.PauseMode = PausePing
	press(m, 'p')
	if !m.pause.IsSet() {
		t.Error("pause flag not set in ping mode")
	}
	press(m, 'p')
	if m.pause.IsSet() {
		t.Error("pause flag not cleared on resume")
	}
}

func TestDisplayPauseFreezesView(t *testing.T) {
	m := testModel(t)
	press(m, 'p')
	if m.pause.IsSet() {
		t.Error("display pause must not pause the probers")
	}
	// New results keep flowing into live state...
	m.states[0].ApplyFinal(ring.Fail, 1, 0, false, 0, false)
	states, paused := m.renderStates()
	if !paused {
		t.Error("paused view should render as paused")
	}
	if states[0].Len() != 0 {
		t.Error("frozen view should not see post-pause results")
	}
	press(m, 'p')
	states, _ = m.renderStates()
	if states[0].Len() != 1 {
		t.Error("resume should show the live state again")
	}
}

func TestPageStepMatchesTimelineWidth(t *testing.T) {
	m := testModel(t, "host5")
	m.showASN = false
	// 80x24, no panel, 5-char alias: timeline width 72.
	if got := m.pageStep(); got != 72 {
		t.Errorf("page step = %d, want 72", got)
	}
}

func TestHistoryNavigation(t *testing.T) {
	m := testModel(t, "host5")
	m.showASN = false
	// Seed 100 snapshots one second apart.
	now := m.clk.Now()
	for i := 0; i < 100; i++ {
		m.histOffset, _ = m.hist.UpdateIfDue(now.Add(time.Duration(i)*time.Second), m.states, m.histOffset)
	}

	pressSpecial(m, tea.KeyLeft)
	if m.histOffset != 72 {
		t.Errorf("offset = %d, want one page step (72)", m.histOffset)
	}
	if !strings.Contains(m.statusMsg, "ago") {
		t.Errorf("status = %q", m.statusMsg)
	}

	pressSpecial(m, tea.KeyLeft)
	if m.histOffset != m.hist.MaxOffset() {
		t.Errorf("offset = %d, want clamp at %d", m.histOffset, m.hist.MaxOffset())
	}

	pressSpecial(m, tea.KeyRight)
	pressSpecial(m, tea.KeyRight)
	if m.histOffset != 0 {
		t.Errorf("offset = %d, want 0 after paging forward", m.histOffset)
	}
	if m.statusMsg != "Returned to LIVE view" {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestSnapshotFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	m := testModel(t)
	press(m, 's')
	if !strings.HasPrefix(m.statusMsg, "Saved: paraping_snapshot_") {
		t.Fatalf("status = %q", m.statusMsg)
	}
	name := strings.TrimPrefix(m.statusMsg, "Saved: ")
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("snapshot file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "ParaPing -") {
		t.Error("snapshot missing header")
	}
	if strings.Contains(content, "\x1b[") {
		t.Error("snapshot must be plain text")
	}
	if !strings.HasSuffix(content, "\n") {
		t.Error("snapshot should end with a newline")
	}
}

func TestPanelToggleAndCycle(t *testing.T) {
	m := testModel(t)
	m.panelPos = layout.PanelRight
	m.lastPanel = layout.PanelRight

	press(m, 'w')
	if m.panelPos != layout.PanelNone {
		t.Errorf("w should hide the panel: %v", m.panelPos)
	}
	press(m, 'w')
	if m.panelPos != layout.PanelRight {
		t.Errorf("w should restore the panel: %v", m.panelPos)
	}
	press(m, 'W')
	if m.panelPos != layout.PanelTop {
		t.Errorf("W should cycle right to top: %v", m.panelPos)
	}
}

func TestDoneCountTriggersQuit(t *testing.T) {
	m := testModel(t)
	m.opts.Count = 1
	m.completed = 1
	cmd := m.tick()
	if cmd == nil || !m.quitting {
		t.Error("all-done should quit the loop")
	}
}

func TestViewRendersFullFrame(t *testing.T) {
	m := testModel(t)
	out := m.View()
	lines := strings.Split(out, "\n")
	if len(lines) != 24 {
		t.Errorf("view has %d lines, want 24", len(lines))
	}
}
