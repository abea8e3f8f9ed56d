// Command paraping is an interactive terminal monitor that concurrently
// probes many hosts with ICMP echo requests and renders the evolving health
// of each as a scrolling timeline, sparkline, or square grid, with a live
// summary panel and time-travel through recent history.
//
// The privileged ICMP work lives in a separate helper binary (see
// cmd/ping_helper); this process never opens a raw socket itself.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"runtime/debug"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/icecake0141/paraping/internal/config"
	"github.com/icecake0141/paraping/internal/helper"
	"github.com/icecake0141/paraping/internal/hostlist"
	"github.com/icecake0141/paraping/internal/layout"
	"github.com/icecake0141/paraping/internal/ratelimit"
	"github.com/icecake0141/paraping/internal/tui"
)

var Version = "(unknown)" // Set via -ldflags

// Flags.
var (
	timeoutSecs   = pflag.IntP("timeout", "t", 1, "Timeout in seconds for each ping.")
	count         = pflag.IntP("count", "c", 0, "Number of ping attempts per host (0 for infinite).")
	slowThreshold = pflag.Float64P("slow-threshold", "s", 0.5, "Threshold in seconds for a slow ping.")
	interval      = pflag.Float64P("interval", "i", 1.0, "Interval in seconds between pings per host (0.1-60).")
	verbose       = pflag.BoolP("verbose", "v", false, "Enable verbose logging of ping results.")
	inputFile     = pflag.StringP("input", "f", "", "Input file of hosts, one 'IP,alias' per line.")
	panelPos      = pflag.StringP("panel-position", "P", "right", "Summary panel position (right|left|top|bottom|none).")
	pauseMode     = pflag.StringP("pause-mode", "m", "display", "Pause behavior: display (stop updates) or ping (pause pings too).")
	displayTZ     = pflag.StringP("timezone", "z", "", "Display timezone (IANA name, e.g. Asia/Tokyo). Defaults to UTC.")
	snapshotTZ    = pflag.StringP("snapshot-timezone", "Z", "utc", "Timezone for snapshot filenames (utc|display).")
	flashOnFail   = pflag.BoolP("flash-on-fail", "F", false, "Flash the screen when a ping fails.")
	bellOnFail    = pflag.BoolP("bell-on-fail", "B", false, "Ring the terminal bell when a ping fails.")
	color         = pflag.BoolP("color", "C", false, "Enable colored output.")
	helperPath    = pflag.StringP("ping-helper", "H", "./ping_helper", "Path to the ping_helper binary.")
	logfile       = pflag.String("logfile", "", "File to output logs.")
	configPath    = pflag.String("config", "", "Config file path (default ~/.paraping.conf).")
	noConfig      = pflag.Bool("no-config", false, "Do not load a config file.")
	printVersion  = pflag.Bool("version", false, "Output the version number.")
)

func main() {
	pflag.Parse()

	if *printVersion {
		printVersionInfo()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := &config.File{}
	if !*noConfig {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return err
		}
	}
	applyConfig(cfg)

	if *timeoutSecs <= 0 {
		return fmt.Errorf("timeout must be a positive number of seconds")
	}
	if *count < 0 {
		return fmt.Errorf("count must be a non-negative number (0 for infinite)")
	}
	if *interval < 0.1 || *interval > 60.0 {
		return fmt.Errorf("interval must be between 0.1 and 60.0 seconds")
	}
	pos := layout.PanelPosition(*panelPos)
	if !pos.Valid() {
		return fmt.Errorf("invalid panel position %q", *panelPos)
	}
	if *pauseMode != string(tui.PauseDisplay) && *pauseMode != string(tui.PausePing) {
		return fmt.Errorf("invalid pause mode %q", *pauseMode)
	}

	entries := hostlist.FromArgs(pflag.Args())
	if *inputFile != "" {
		fileEntries, err := hostlist.ReadFile(*inputFile, os.Stderr)
		if err != nil {
			return err
		}
		entries = append(entries, fileEntries...)
	}
	if len(entries) == 0 && len(cfg.Hosts) > 0 {
		entries = hostlist.FromArgs(cfg.Hosts)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no hosts specified; provide hosts as arguments or use -f/--input")
	}

	if ok, _, err := ratelimit.Validate(len(entries), *interval); !ok {
		return err
	}

	display := time.UTC
	if *displayTZ != "" {
		loc, err := time.LoadLocation(*displayTZ)
		if err != nil {
			return fmt.Errorf("unknown timezone %q; use an IANA name like 'Asia/Tokyo'", *displayTZ)
		}
		display = loc
	}
	snapshot := time.UTC
	switch *snapshotTZ {
	case "display":
		snapshot = display
	case "utc":
	default:
		return fmt.Errorf("invalid snapshot timezone %q (utc|display)", *snapshotTZ)
	}

	helperBin := expandHome(*helperPath)
	runner := &helper.ExecRunner{Path: helperBin}
	if err := runner.Check(); err != nil {
		return err
	}

	hosts, err := hostlist.Build(entries, nil)
	if err != nil {
		return err
	}

	setupLogging(cfg)

	colorSupported := isatty.IsTerminal(os.Stdout.Fd())

	model := tui.New(&tui.Options{
		Hosts:          hosts,
		Interval:       time.Duration(*interval * float64(time.Second)),
		Timeout:        time.Duration(*timeoutSecs) * time.Second,
		Count:          *count,
		SlowThreshold:  time.Duration(*slowThreshold * float64(time.Second)),
		PanelPos:       pos,
		PauseMode:      tui.PauseMode(*pauseMode),
		HelperPath:     helperBin,
		Color:          *color,
		ColorSupported: colorSupported,
		FlashOnFail:    *flashOnFail,
		BellOnFail:     *bellOnFail,
		DisplayTZ:      display,
		SnapshotTZ:     snapshot,
	})

	prog := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}

	printSummary(hosts, model)
	return nil
}

// applyConfig backfills flag values the user did not set from the config
// file. CLI beats config; config beats defaults.
func applyConfig(cfg *config.File) {
	set := func(name string) bool { return pflag.Lookup(name).Changed }
	if cfg.Interval != nil && !set("interval") {
		*interval = *cfg.Interval
	}
	if cfg.Timeout != nil && !set("timeout") {
		*timeoutSecs = *cfg.Timeout
	}
	if cfg.SlowThreshold != nil && !set("slow-threshold") {
		*slowThreshold = *cfg.SlowThreshold
	}
	if cfg.Timezone != nil && !set("timezone") {
		*displayTZ = *cfg.Timezone
	}
	if cfg.Color != nil && !set("color") {
		*color = *cfg.Color
	}
	if cfg.FlashOnFail != nil && !set("flash-on-fail") {
		*flashOnFail = *cfg.FlashOnFail
	}
	if cfg.BellOnFail != nil && !set("bell-on-fail") {
		*bellOnFail = *cfg.BellOnFail
	}
	if cfg.PanelPosition != nil && !set("panel-position") {
		*panelPos = *cfg.PanelPosition
	}
	if cfg.PauseMode != nil && !set("pause-mode") {
		*pauseMode = *cfg.PauseMode
	}
	if cfg.PingHelper != nil && !set("ping-helper") {
		*helperPath = *cfg.PingHelper
	}
	if cfg.LogFile != nil && !set("logfile") {
		*logfile = *cfg.LogFile
	}
	if cfg.SnapshotTimezone != nil && !set("snapshot-timezone") {
		*snapshotTZ = *cfg.SnapshotTimezone
	}
}

// setupLogging routes the standard logger. Without a log file all output is
// discarded so stray log lines cannot corrupt the rendered frame.
func setupLogging(cfg *config.File) {
	if *logfile == "" {
		log.SetOutput(io.Discard)
		return
	}
	prefix := ""
	if cfg.LogLevel != nil && *cfg.LogLevel == "debug" || *verbose {
		prefix = "debug"
	}
	if _, err := tea.LogToFile(*logfile, prefix); err != nil {
		fmt.Fprintf(os.Stderr, "Error opening output log: %v\n", err)
		log.SetOutput(io.Discard)
	}
}

func expandHome(p string) string {
	if len(p) >= 2 && p[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return path.Join(home, p[2:])
		}
	}
	return p
}

func printSummary(hosts []hostlist.Host, model *tui.Model) {
	stats := model.FinalStats()
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	for _, h := range hosts {
		st := stats[h.ID]
		pct := 0.0
		if st.Total > 0 {
			pct = float64(st.Success) / float64(st.Total) * 100
		}
		status := "FAILED"
		if st.Success > 0 {
			status = "OK"
		}
		fmt.Printf("%-30s %d/%d replies, %d slow, %d failed (%.1f%%) [%s]\n",
			h.Alias, st.Success, st.Total, st.Slow, st.Fail, pct, status)
	}
}

func printVersionInfo() {
	inf, ok := debug.ReadBuildInfo()
	if !ok {
		fmt.Println("paraping: unknown version")
		return
	}
	fmt.Printf("%s %s\nbuilt with %s\n", path.Base(inf.Path), Version, inf.GoVersion)
}
