package hostlist

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseFileLine(t *testing.T) {
	cases := []struct {
		name     string
		line     string
		want     Entry
		wantOK   bool
		wantWarn string
	}{
		{name: "valid", line: "192.0.2.1,edge-router", want: Entry{Addr: "192.0.2.1", Alias: "edge-router", IP: "192.0.2.1"}, wantOK: true},
		{name: "whitespace trimmed", line: "  10.0.0.1 , core  ", want: Entry{Addr: "10.0.0.1", Alias: "core", IP: "10.0.0.1"}, wantOK: true},
		{name: "comment", line: "# a comment"},
		{name: "blank", line: "   "},
		{name: "missing alias", line: "192.0.2.1", wantWarn: "Expected format"},
		{name: "empty alias", line: "192.0.2.1,", wantWarn: "required"},
		{name: "not an ip", line: "router.example,alias", wantWarn: "Invalid IP address"},
		{name: "ipv6 skipped", line: "2001:db8::1,v6host", wantWarn: "Unsupported IP version"},
		{name: "too many fields", line: "1.2.3.4,a,b", wantWarn: "Expected format"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var warn bytes.Buffer
			got, ok := ParseFileLine(c.line, 7, "hosts.txt", &warn)
			if ok != c.wantOK {
				t.Fatalf("ok = %v, want %v (warn: %s)", ok, c.wantOK, warn.String())
			}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("Wrong entry (-want, +got):\n%v", diff)
			}
			if c.wantWarn == "" && warn.Len() > 0 {
				t.Errorf("unexpected warning: %s", warn.String())
			}
			if c.wantWarn != "" && !strings.Contains(warn.String(), c.wantWarn) {
				t.Errorf("warning %q missing %q", warn.String(), c.wantWarn)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hosts.txt")
	content := `# fleet
192.0.2.1,alpha

192.0.2.2,beta
bogus line
2001:db8::1,gamma
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	var warn bytes.Buffer
	entries, err := ReadFile(path, &warn)
	require.NoError(t, err)

	want := []Entry{
		{Addr: "192.0.2.1", Alias: "alpha", IP: "192.0.2.1"},
		{Addr: "192.0.2.2", Alias: "beta", IP: "192.0.2.2"},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("Wrong entries (-want, +got):\n%v", diff)
	}
	if got := strings.Count(warn.String(), "Warning:"); got != 2 {
		t.Errorf("warning count = %d, want 2:\n%s", got, warn.String())
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.txt"), &bytes.Buffer{})
	require.Error(t, err)
}

func TestBuild(t *testing.T) {
	lookup := func(host string) (string, error) {
		if host == "known.example" {
			return "198.51.100.7", nil
		}
		return "", fmt.Errorf("no such host")
	}
	entries := []Entry{
		{Addr: "known.example", Alias: "known.example"},
		{Addr: "unresolvable.example", Alias: "unresolvable.example"},
		{Addr: "192.0.2.9", Alias: "static", IP: "192.0.2.9"},
	}
	hosts, err := Build(entries, lookup)
	require.NoError(t, err)

	want := []Host{
		{ID: 0, Addr: "known.example", Alias: "known.example", IP: "198.51.100.7"},
		{ID: 1, Addr: "unresolvable.example", Alias: "unresolvable.example", IP: "unresolvable.example"},
		{ID: 2, Addr: "192.0.2.9", Alias: "static", IP: "192.0.2.9"},
	}
	if diff := cmp.Diff(want, hosts); diff != "" {
		t.Errorf("Wrong hosts (-want, +got):\n%v", diff)
	}
}

func TestBuildLimits(t *testing.T) {
	if _, err := Build(nil, nil); err == nil {
		t.Error("empty host list should be an error")
	}
	entries := make([]Entry, MaxHosts+1)
	for i := range entries {
		entries[i] = Entry{Addr: fmt.Sprintf("10.0.0.%d", i), IP: fmt.Sprintf("10.0.0.%d", i)}
	}
	if _, err := Build(entries, nil); err == nil {
		t.Error("over-limit host list should be an error")
	}
}
