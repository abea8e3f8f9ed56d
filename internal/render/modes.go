package render

// DisplayMode selects the main view.
type DisplayMode int

// Display modes, in `v` cycle order.
const (
	ViewTimeline DisplayMode = iota
	ViewSparkline
	ViewSquare
)

func (m DisplayMode) String() string {
	switch m {
	case ViewTimeline:
		return "timeline"
	case ViewSparkline:
		return "sparkline"
	case ViewSquare:
		return "square"
	default:
		return "(unknown)"
	}
}

// Next cycles to the following view.
func (m DisplayMode) Next() DisplayMode { return (m + 1) % 3 }

// NameMode selects what labels hosts.
type NameMode int

// Name modes, in `n` cycle order.
const (
	NameIP NameMode = iota
	NameRDNS
	NameAlias
)

func (m NameMode) String() string {
	switch m {
	case NameIP:
		return "ip"
	case NameRDNS:
		return "rdns"
	case NameAlias:
		return "alias"
	default:
		return "(unknown)"
	}
}

// Next cycles to the following name mode.
func (m NameMode) Next() NameMode { return (m + 1) % 3 }

// SummaryMode selects the summary panel fields.
type SummaryMode int

// Summary modes, in `m` cycle order.
const (
	SummaryRates SummaryMode = iota
	SummaryRTT
	SummaryTTL
	SummaryStreak
)

func (m SummaryMode) String() string {
	switch m {
	case SummaryRates:
		return "rates"
	case SummaryRTT:
		return "rtt"
	case SummaryTTL:
		return "ttl"
	case SummaryStreak:
		return "streak"
	default:
		return "(unknown)"
	}
}

// Next cycles to the following summary mode.
func (m SummaryMode) Next() SummaryMode { return (m + 1) % 4 }

// SortMode orders the host rows.
type SortMode int

// Sort modes, in `o` cycle order.
const (
	SortConfig SortMode = iota
	SortFailures
	SortStreak
	SortLatency
	SortHost
)

func (m SortMode) String() string {
	switch m {
	case SortConfig:
		return "config"
	case SortFailures:
		return "failures"
	case SortStreak:
		return "streak"
	case SortLatency:
		return "latency"
	case SortHost:
		return "host"
	default:
		return "(unknown)"
	}
}

// Label is the human name shown in the status box.
func (m SortMode) Label() string {
	switch m {
	case SortConfig:
		return "Config Order"
	case SortFailures:
		return "Failure Count"
	case SortStreak:
		return "Failure Streak"
	case SortLatency:
		return "Latest Latency"
	case SortHost:
		return "Host Name"
	default:
		return "(unknown)"
	}
}

// Next cycles to the following sort mode.
func (m SortMode) Next() SortMode { return (m + 1) % 5 }

// FilterMode restricts which hosts show.
type FilterMode int

// Filter modes, in `f` cycle order.
const (
	FilterAll FilterMode = iota
	FilterFailures
	FilterLatency
)

func (m FilterMode) String() string {
	switch m {
	case FilterAll:
		return "all"
	case FilterFailures:
		return "failures"
	case FilterLatency:
		return "latency"
	default:
		return "(unknown)"
	}
}

// Label is the human name shown in the status box.
func (m FilterMode) Label() string {
	switch m {
	case FilterAll:
		return "All Items"
	case FilterFailures:
		return "Failures Only"
	case FilterLatency:
		return "High Latency Only"
	default:
		return "(unknown)"
	}
}

// Next cycles to the following filter mode.
func (m FilterMode) Next() FilterMode { return (m + 1) % 3 }
