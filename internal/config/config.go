// Package config provides the YAML-based service configuration,
// including first-run config creation, normalization of partial files,
// and atomic saves with 0600 permissions.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"calsched/internal/model"
)

// BreakConfig is one break window inside working hours, "HH:MM" each.
type BreakConfig struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// WorkingHoursConfig describes the bookable day.
type WorkingHoursConfig struct {
	Start  string        `yaml:"start" json:"start"`
	End    string        `yaml:"end" json:"end"`
	Breaks []BreakConfig `yaml:"breaks" json:"breaks"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level service configuration.
type Config struct {
	// Listen is the HTTP listen address for the JSON API.
	Listen string `yaml:"listen" json:"listen"`

	// LogLevel is one of DEBUG, INFO, ERROR.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// SlotMinutes is the availability slot granularity.
	SlotMinutes int `yaml:"slot_minutes" json:"slot_minutes"`

	// DispatchCron is a cron-style schedule (e.g. "* * * * *") for the
	// reminder dispatch sweep.
	DispatchCron string `yaml:"dispatch_cron" json:"dispatch_cron"`

	// WorkingHours bounds availability computation.
	WorkingHours WorkingHoursConfig `yaml:"working_hours" json:"working_hours"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       "127.0.0.1:8080",
		LogLevel:     "INFO",
		SlotMinutes:  60,
		DispatchCron: "* * * * *",
		WorkingHours: WorkingHoursConfig{
			Start: "09:00",
			End:   "17:00",
			Breaks: []BreakConfig{
				{Start: "12:00", End: "13:00"},
			},
		},
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	switch c.LogLevel {
	case "DEBUG", "INFO", "ERROR":
	default:
		c.LogLevel = "INFO"
	}
	if c.SlotMinutes <= 0 {
		c.SlotMinutes = 60
	}
	if c.DispatchCron == "" {
		c.DispatchCron = "* * * * *"
	}
	if c.WorkingHours.Start == "" {
		c.WorkingHours.Start = "09:00"
	}
	if c.WorkingHours.End == "" {
		c.WorkingHours.End = "17:00"
	}
}

// Spec converts the working-hours config into the engine's
// minutes-since-midnight representation, validating it on the way.
func (w WorkingHoursConfig) Spec() (model.WorkingHours, error) {
	start, err := parseHHMM(w.Start)
	if err != nil {
		return model.WorkingHours{}, fmt.Errorf("working_hours.start: %w", err)
	}
	end, err := parseHHMM(w.End)
	if err != nil {
		return model.WorkingHours{}, fmt.Errorf("working_hours.end: %w", err)
	}

	wh := model.WorkingHours{StartOfDay: start, EndOfDay: end}
	for i, b := range w.Breaks {
		bs, err := parseHHMM(b.Start)
		if err != nil {
			return model.WorkingHours{}, fmt.Errorf("working_hours.breaks[%d].start: %w", i, err)
		}
		be, err := parseHHMM(b.End)
		if err != nil {
			return model.WorkingHours{}, fmt.Errorf("working_hours.breaks[%d].end: %w", i, err)
		}
		wh.Breaks = append(wh.Breaks, model.MinuteRange{Start: bs, End: be})
	}

	if err := wh.Validate(); err != nil {
		return model.WorkingHours{}, err
	}
	return wh, nil
}

// parseHHMM parses "HH:MM" into minutes since midnight.
func parseHHMM(s string) (int, error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("bad time %q, want HH:MM", s)
	}
	hh, err := strconv.Atoi(h)
	if err != nil || hh < 0 || hh > 24 {
		return 0, fmt.Errorf("bad hour in %q", s)
	}
	mm, err := strconv.Atoi(m)
	if err != nil || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("bad minute in %q", s)
	}
	return hh*60 + mm, nil
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (0600,
// parent directory created as needed) and returned. Otherwise the file
// is unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically: marshal to a temp file in the
// same directory, chmod 0600, then rename over the target.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calsched-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
