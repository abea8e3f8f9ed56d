// Package config loads persistent settings from ~/.paraping.conf. The file
// may be INI or YAML; the format is autodetected from the first non-blank,
// non-comment line (a leading "[" means INI). Precedence is
// CLI flags > config file > hardcoded defaults; the merge happens at the
// flag layer, this package only reports what the file sets.
package config

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".paraping.conf"
	}
	return filepath.Join(home, ".paraping.conf")
}

// File holds the settings a config file may carry. Pointer fields are nil
// when the file does not set them, so the flag layer can tell "unset" from
// a zero value.
type File struct {
	Interval         *float64
	Timeout          *int
	SlowThreshold    *float64
	Timezone         *string
	Color            *bool
	FlashOnFail      *bool
	BellOnFail       *bool
	PanelPosition    *string
	PauseMode        *string
	PingHelper       *string
	LogLevel         *string
	LogFile          *string
	SnapshotTimezone *string
	Hosts            []string
}

var knownKeys = map[string]bool{
	"interval": true, "timeout": true, "slow_threshold": true,
	"timezone": true, "color": true, "flash_on_fail": true,
	"bell_on_fail": true, "panel_position": true, "pause_mode": true,
	"ping_helper": true, "log_level": true, "log_file": true,
	"snapshot_timezone": true,
}

// Load reads and parses the config file at path (DefaultPath when empty).
// A missing file is not an error; it returns an empty File.
func Load(path string) (*File, error) {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err != nil {
		return &File{}, nil
	}
	yamlish, err := isYAML(path)
	if err != nil {
		return nil, err
	}
	if yamlish {
		return loadYAML(path)
	}
	return loadINI(path)
}

// isYAML sniffs the file format: INI files open with a [section] header.
func isYAML(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("reading config file: %w", err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return !strings.HasPrefix(line, "["), nil
	}
	return false, nil
}

func loadINI(path string) (*File, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		AllowBooleanKeys:         true,
		KeyValueDelimiterOnWrite: "=",
		KeyValueDelimiters:       "=:",
	}, path)
	if err != nil {
		return nil, fmt.Errorf("invalid config file %q: %w", path, err)
	}

	out := &File{}
	if sec, err := cfg.GetSection("default"); err == nil {
		for _, key := range sec.Keys() {
			name := strings.ToLower(key.Name())
			if !knownKeys[name] {
				log.Printf("Unknown config key %q in [default] section of %q; ignoring.", name, path)
				continue
			}
			if err := out.set(name, key.String()); err != nil {
				return nil, fmt.Errorf("config file %q: %w", path, err)
			}
		}
	}
	if sec, err := cfg.GetSection("hosts"); err == nil {
		for _, key := range sec.Keys() {
			entry := strings.TrimSpace(key.String())
			if entry == "" || entry == "true" {
				// Bare host line; ini records it as a boolean key.
				entry = strings.TrimSpace(key.Name())
			}
			if entry != "" {
				out.Hosts = append(out.Hosts, entry)
			}
		}
	}
	return out, nil
}

// set coerces a string value into the typed field for name.
func (f *File) set(name, raw string) error {
	parseBool := func() (bool, error) {
		switch strings.ToLower(raw) {
		case "true", "yes", "1", "on":
			return true, nil
		case "false", "no", "0", "off":
			return false, nil
		}
		return false, fmt.Errorf("cannot parse %q as a boolean for %q", raw, name)
	}
	switch name {
	case "interval", "slow_threshold":
		var v float64
		if _, err := fmt.Sscanf(raw, "%g", &v); err != nil {
			return fmt.Errorf("invalid value for %q: %q", name, raw)
		}
		if name == "interval" {
			f.Interval = &v
		} else {
			f.SlowThreshold = &v
		}
	case "timeout":
		var v int
		if _, err := fmt.Sscanf(raw, "%d", &v); err != nil {
			return fmt.Errorf("invalid value for %q: %q", name, raw)
		}
		f.Timeout = &v
	case "color", "flash_on_fail", "bell_on_fail":
		v, err := parseBool()
		if err != nil {
			return err
		}
		switch name {
		case "color":
			f.Color = &v
		case "flash_on_fail":
			f.FlashOnFail = &v
		case "bell_on_fail":
			f.BellOnFail = &v
		}
	default:
		v := raw
		switch name {
		case "timezone":
			f.Timezone = &v
		case "panel_position":
			f.PanelPosition = &v
		case "pause_mode":
			f.PauseMode = &v
		case "ping_helper":
			f.PingHelper = &v
		case "log_level":
			f.LogLevel = &v
		case "log_file":
			f.LogFile = &v
		case "snapshot_timezone":
			f.SnapshotTimezone = &v
		}
	}
	return nil
}

type yamlConfig struct {
	Default yamlDefaults `yaml:"default"`
	Hosts   []string     `yaml:"hosts"`
}

type yamlDefaults struct {
	Interval         *float64 `yaml:"interval"`
	Timeout          *int     `yaml:"timeout"`
	SlowThreshold    *float64 `yaml:"slow_threshold"`
	Timezone         *string  `yaml:"timezone"`
	Color            *bool    `yaml:"color"`
	FlashOnFail      *bool    `yaml:"flash_on_fail"`
	BellOnFail       *bool    `yaml:"bell_on_fail"`
	PanelPosition    *string  `yaml:"panel_position"`
	PauseMode        *string  `yaml:"pause_mode"`
	PingHelper       *string  `yaml:"ping_helper"`
	LogLevel         *string  `yaml:"log_level"`
	LogFile          *string  `yaml:"log_file"`
	SnapshotTimezone *string  `yaml:"snapshot_timezone"`
}

func loadYAML(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML in config file %q: %w", path, err)
	}
	out := &File{
		Interval:         raw.Default.Interval,
		Timeout:          raw.Default.Timeout,
		SlowThreshold:    raw.Default.SlowThreshold,
		Timezone:         raw.Default.Timezone,
		Color:            raw.Default.Color,
		FlashOnFail:      raw.Default.FlashOnFail,
		BellOnFail:       raw.Default.BellOnFail,
		PanelPosition:    raw.Default.PanelPosition,
		PauseMode:        raw.Default.PauseMode,
		PingHelper:       raw.Default.PingHelper,
		LogLevel:         raw.Default.LogLevel,
		LogFile:          raw.Default.LogFile,
		SnapshotTimezone: raw.Default.SnapshotTimezone,
	}
	for _, h := range raw.Hosts {
		if h = strings.TrimSpace(h); h != "" {
			out.Hosts = append(out.Hosts, h)
		}
	}
	return out, nil
}
