package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func writeConf(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".paraping.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFile(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "nope.conf"))
	require.NoError(t, err)
	if diff := cmp.Diff(&File{}, got); diff != "" {
		t.Errorf("missing file should load empty (-want, +got):\n%v", diff)
	}
}

func TestLoadINI(t *testing.T) {
	path := writeConf(t, `# paraping settings
[default]
interval = 0.5
timeout = 2
slow_threshold = 0.25
color = yes
bell_on_fail = off
panel_position = left
pause_mode : ping
timezone = Asia/Tokyo

[hosts]
192.0.2.1
192.0.2.2
`)
	got, err := Load(path)
	require.NoError(t, err)

	if got.Interval == nil || *got.Interval != 0.5 {
		t.Errorf("interval = %v", got.Interval)
	}
	if got.Timeout == nil || *got.Timeout != 2 {
		t.Errorf("timeout = %v", got.Timeout)
	}
	if got.SlowThreshold == nil || *got.SlowThreshold != 0.25 {
		t.Errorf("slow_threshold = %v", got.SlowThreshold)
	}
	if got.Color == nil || !*got.Color {
		t.Errorf("color = %v", got.Color)
	}
	if got.BellOnFail == nil || *got.BellOnFail {
		t.Errorf("bell_on_fail = %v", got.BellOnFail)
	}
	if got.PanelPosition == nil || *got.PanelPosition != "left" {
		t.Errorf("panel_position = %v", got.PanelPosition)
	}
	if got.PauseMode == nil || *got.PauseMode != "ping" {
		t.Errorf("pause_mode = %v", got.PauseMode)
	}
	if got.Timezone == nil || *got.Timezone != "Asia/Tokyo" {
		t.Errorf("timezone = %v", got.Timezone)
	}
	if diff := cmp.Diff([]string{"192.0.2.1", "192.0.2.2"}, got.Hosts); diff != "" {
		t.Errorf("hosts (-want, +got):\n%v", diff)
	}
	// Fields the file does not set stay nil.
	if got.FlashOnFail != nil || got.LogFile != nil {
		t.Error("unset fields must stay nil")
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConf(t, `# yaml form
default:
  interval: 2.0
  color: true
  ping_helper: /usr/local/bin/ping_helper
  snapshot_timezone: display
hosts:
  - 192.0.2.1
  - "  192.0.2.2  "
`)
	got, err := Load(path)
	require.NoError(t, err)
	if got.Interval == nil || *got.Interval != 2.0 {
		t.Errorf("interval = %v", got.Interval)
	}
	if got.Color == nil || !*got.Color {
		t.Errorf("color = %v", got.Color)
	}
	if got.PingHelper == nil || *got.PingHelper != "/usr/local/bin/ping_helper" {
		t.Errorf("ping_helper = %v", got.PingHelper)
	}
	if got.SnapshotTimezone == nil || *got.SnapshotTimezone != "display" {
		t.Errorf("snapshot_timezone = %v", got.SnapshotTimezone)
	}
	if diff := cmp.Diff([]string{"192.0.2.1", "192.0.2.2"}, got.Hosts); diff != "" {
		t.Errorf("hosts (-want, +got):\n%v", diff)
	}
}

func TestFormatAutodetect(t *testing.T) {
	ini := writeConf(t, "\n# comment first\n[default]\ninterval = 1.0\n")
	got, err := Load(ini)
	require.NoError(t, err)
	require.NotNil(t, got.Interval)

	yaml := writeConf(t, "default:\n  interval: 3.0\n")
	got, err = Load(yaml)
	require.NoError(t, err)
	require.NotNil(t, got.Interval)
	require.Equal(t, 3.0, *got.Interval)
}

func TestLoadBadValues(t *testing.T) {
	path := writeConf(t, "[default]\ninterval = not-a-number\n")
	_, err := Load(path)
	require.Error(t, err)

	path = writeConf(t, "[default]\ncolor = maybe\n")
	_, err = Load(path)
	require.Error(t, err)

	path = writeConf(t, "default:\n  interval: [1, 2]\n")
	_, err = Load(path)
	require.Error(t, err)
}

func TestUnknownKeysIgnored(t *testing.T) {
	path := writeConf(t, "[default]\nshiny = very\ninterval = 1.5\n")
	got, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, got.Interval)
	require.Equal(t, 1.5, *got.Interval)
}
