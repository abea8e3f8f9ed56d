package helper

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReply(t *testing.T) {
	cases := []struct {
		name    string
		out     string
		want    Reply
		wantErr bool
	}{
		{
			name: "basic",
			out:  "rtt_ms=12.345 ttl=64\n",
			want: Reply{RTT: 12345 * time.Microsecond, TTL: 64, HasTTL: true},
		},
		{
			name: "no ttl",
			out:  "rtt_ms=1.5\n",
			want: Reply{RTT: 1500 * time.Microsecond},
		},
		{
			name: "leading noise line",
			out:  "something else\nrtt_ms=2.0 ttl=52\n",
			want: Reply{RTT: 2 * time.Millisecond, TTL: 52, HasTTL: true},
		},
		{name: "empty", out: "", wantErr: true},
		{name: "garbage", out: "pong\n", wantErr: true},
		{name: "bad rtt", out: "rtt_ms=abc ttl=64\n", wantErr: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ParseReply(c.out)
			if c.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

// Writes a shell script standing in for the helper binary.
func fakeHelper(t *testing.T, script string) *ExecRunner {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell helper stub requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ping_helper")
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755)
	require.NoError(t, err)
	return &ExecRunner{Path: path}
}

func TestPingSuccess(t *testing.T) {
	r := fakeHelper(t, `echo "rtt_ms=20.5 ttl=57"`)
	rep, err := r.Ping(context.Background(), "192.0.2.1", 1000, 5)
	require.NoError(t, err)
	assert.Equal(t, Reply{RTT: 20500 * time.Microsecond, TTL: 57, HasTTL: true}, rep)
}

func TestPingTimeoutExit(t *testing.T) {
	r := fakeHelper(t, "exit 7")
	rep, err := r.Ping(context.Background(), "192.0.2.1", 1000, 0)
	require.NoError(t, err)
	assert.True(t, rep.TimedOut)
}

func TestPingHelperError(t *testing.T) {
	r := fakeHelper(t, `echo "resolve failed" >&2; exit 3`)
	_, err := r.Ping(context.Background(), "no.such.invalid", 1000, 0)
	require.Error(t, err)
	he, ok := err.(*Error)
	require.True(t, ok, "want *Error, got %T", err)
	assert.Equal(t, ExitResolve, he.ExitCode)
	assert.Contains(t, he.Stderr, "resolve failed")
}

func TestPingOverrunKilled(t *testing.T) {
	// Helper hangs well past timeout_ms + 1s; the runner must kill it and
	// report a timeout, not an error.
	r := fakeHelper(t, "sleep 30")
	start := time.Now()
	rep, err := r.Ping(context.Background(), "192.0.2.1", 1, 0)
	require.NoError(t, err)
	assert.True(t, rep.TimedOut)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestPingMissingBinary(t *testing.T) {
	r := &ExecRunner{Path: filepath.Join(t.TempDir(), "nope")}
	require.Error(t, r.Check())
	_, err := r.Ping(context.Background(), "192.0.2.1", 1000, 0)
	assert.Error(t, err)
}

func TestPingRejectsBadTimeout(t *testing.T) {
	r := &ExecRunner{Path: "/bin/true"}
	_, err := r.Ping(context.Background(), "192.0.2.1", 0, 0)
	assert.Error(t, err)
	_, err = r.Ping(context.Background(), "192.0.2.1", 60001, 0)
	assert.Error(t, err)
}
