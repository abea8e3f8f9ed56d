package render

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/icecake0141/paraping/internal/hostlist"
	"github.com/icecake0141/paraping/internal/ring"
)

// ASNWidth is the fixed column width for the ASN suffix.
const ASNWidth = 8

// Minimum timeline the ASN suffix is allowed to squeeze labels down to.
const minTimelineForASN = 10

const resolvingLabel = "resolving..."

// HostView bundles everything the renderer needs about one host.
type HostView struct {
	Host    hostlist.Host
	Runtime hostlist.Runtime
	State   *ring.State
}

// DisplayName resolves the label for a host in the given name mode.
func DisplayName(h hostlist.Host, rt hostlist.Runtime, mode NameMode) string {
	switch mode {
	case NameIP:
		return h.IP
	case NameRDNS:
		if rt.RDNSPending {
			return resolvingLabel
		}
		if rt.HasRDNS && rt.RDNS != "" {
			return rt.RDNS
		}
		return h.IP
	default: // alias
		if h.Alias != "" {
			return h.Alias
		}
		if h.Addr != "" {
			return h.Addr
		}
		return h.IP
	}
}

// asnLabel formats the fixed-width ASN suffix.
func asnLabel(rt hostlist.Runtime) string {
	label := ""
	if rt.ASNPending {
		label = resolvingLabel
	} else if rt.HasASN {
		label = rt.ASN
	}
	return fmt.Sprintf("%-*s", ASNWidth, runewidth.Truncate(label, ASNWidth, ""))
}

// formatName builds the full label, with the ASN suffix when requested.
func formatName(h HostView, mode NameMode, includeASN bool) string {
	base := DisplayName(h.Host, h.Runtime, mode)
	if !includeASN {
		return base
	}
	return base + " " + asnLabel(h.Runtime)
}

// ShouldShowASN reports whether ASN suffixes fit: they are dropped when
// they would squeeze the timeline under its minimum width.
func ShouldShowASN(hosts []HostView, mode NameMode, showASN bool, termW int) bool {
	if !showASN || len(hosts) == 0 {
		return false
	}
	labelW := 0
	for _, h := range hosts {
		if w := runewidth.StringWidth(formatName(h, mode, true)); w > labelW {
			labelW = w
		}
	}
	return termW-labelW-3 >= minTimelineForASN
}

// BuildNames computes the label for every host by ID.
func BuildNames(hosts []HostView, mode NameMode, includeASN bool) map[int]string {
	names := make(map[int]string, len(hosts))
	for _, h := range hosts {
		names[h.Host.ID] = formatName(h, mode, includeASN)
	}
	return names
}
