// Package ratelimit validates the global ping rate before any probes start.
package ratelimit

import (
	"fmt"
	"math"
	"strings"
)

// MaxGlobalPingsPerSecond is the hard cap on hosts/interval. It exists for
// flood protection: a misconfigured host file must not turn the monitor into
// a packet cannon.
const MaxGlobalPingsPerSecond = 50

// Validate checks that hostCount hosts probed every interval seconds stay
// within the global cap. It returns the computed rate either way; on
// rejection the error message contains concrete remediations.
func Validate(hostCount int, interval float64) (bool, float64, error) {
	if hostCount <= 0 {
		return false, 0, fmt.Errorf("host count must be positive (got %d)", hostCount)
	}
	if interval <= 0 {
		return false, 0, fmt.Errorf("interval must be positive (got %g)", interval)
	}
	rate := float64(hostCount) / interval
	if rate <= MaxGlobalPingsPerSecond {
		return true, rate, nil
	}
	maxHosts := int(math.Floor(MaxGlobalPingsPerSecond * interval))
	minInterval := float64(hostCount) / MaxGlobalPingsPerSecond
	var b strings.Builder
	fmt.Fprintf(&b, "global ping rate %.1f pings/sec exceeds maximum of %d pings/sec\n",
		rate, MaxGlobalPingsPerSecond)
	b.WriteString("Suggestions:\n")
	fmt.Fprintf(&b, "  - Reduce host count from %d to %d (at %.1fs interval)\n", hostCount, maxHosts, interval)
	fmt.Fprintf(&b, "  - Increase interval from %.1fs to %.1fs (for %d hosts)\n", interval, minInterval, hostCount)
	b.WriteString("  - Run multiple instances with fewer hosts each")
	return false, rate, fmt.Errorf("%s", b.String())
}
