// Package config loads and persists ccbar settings.
//
// Loading starts from the built-in defaults and unmarshals the on-disk file
// over them, so persisted values win per-key and anything missing falls
// back to a default. Mutations persist immediately.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all ccbar settings.
type Config struct {
	Version    int              `yaml:"version"`
	Mode       string           `yaml:"mode"`  // local | remote
	Style      string           `yaml:"style"` // minimal | compact | full | detailed
	Gradient   bool             `yaml:"gradient"`
	Debug      bool             `yaml:"debug"`
	Logs       LogsConfig       `yaml:"logs"`
	Remote     RemoteConfig     `yaml:"remote"`
	Cache      CacheConfig      `yaml:"cache"`
	History    HistoryConfig    `yaml:"history"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Plan       PlanConfig       `yaml:"plan"`
}

// LogsConfig holds local-mode settings.
type LogsConfig struct {
	Root string `yaml:"root"` // empty = ~/.claude/projects
}

// RemoteConfig holds usage endpoint settings.
type RemoteConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutSec  int    `yaml:"timeout_sec"`
	MaxAttempts int    `yaml:"max_attempts"`
	BaseDelayMS int    `yaml:"base_delay_ms"`
}

// CacheConfig holds snapshot cache settings.
type CacheConfig struct {
	TTLMinutes int `yaml:"ttl_minutes"`
}

// HistoryConfig holds sample retention settings.
type HistoryConfig struct {
	MaxSamples         int `yaml:"max_samples"`
	MinIntervalMinutes int `yaml:"min_interval_minutes"`
}

// ThresholdsConfig holds the color band boundaries.
type ThresholdsConfig struct {
	GreenMax  float64 `yaml:"green_max"`
	YellowMax float64 `yaml:"yellow_max"`
	OrangeMax float64 `yaml:"orange_max"`
}

// PlanConfig holds plan calibration overrides. Zero values defer to the
// built-in ceilings for the named plan.
type PlanConfig struct {
	Name           string           `yaml:"name"`             // empty = detect from credentials
	WeeklyResetDay int              `yaml:"weekly_reset_day"` // 0=Sunday .. 6=Saturday
	SessionPrompts int              `yaml:"session_prompts"`
	WeeklyTokens   map[string]int64 `yaml:"weekly_tokens"` // per-tier ceiling overrides
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version:  1,
		Mode:     "remote",
		Style:    "full",
		Gradient: false,
		Remote: RemoteConfig{
			BaseURL:     "https://api.anthropic.com",
			TimeoutSec:  10,
			MaxAttempts: 3,
			BaseDelayMS: 500,
		},
		Cache: CacheConfig{TTLMinutes: 60},
		History: HistoryConfig{
			MaxSamples:         288,
			MinIntervalMinutes: 5,
		},
		Thresholds: ThresholdsConfig{
			GreenMax:  50,
			YellowMax: 75,
			OrangeMax: 90,
		},
		Plan: PlanConfig{
			WeeklyResetDay: int(time.Wednesday),
		},
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ccbar.yaml"), nil
}

// Load reads the config at path, merging it over the defaults. A missing
// file yields the defaults without error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to path with owner-only permissions.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Timeout returns the remote fetch timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Remote.TimeoutSec) * time.Second
}

// BaseDelay returns the first retry delay as a duration.
func (c *Config) BaseDelay() time.Duration {
	return time.Duration(c.Remote.BaseDelayMS) * time.Millisecond
}

// CacheTTL returns the snapshot cache time-to-live.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}

// MinSampleInterval returns the history sampling gate.
func (c *Config) MinSampleInterval() time.Duration {
	return time.Duration(c.History.MinIntervalMinutes) * time.Minute
}

// Set assigns a named option from its string form. Keys are dotted paths
// matching the YAML structure, e.g. "thresholds.green_max".
func (c *Config) Set(key, value string) error {
	switch key {
	case "mode":
		if value != "local" && value != "remote" {
			return fmt.Errorf("mode must be local or remote, got %q", value)
		}
		c.Mode = value
	case "style":
		switch value {
		case "minimal", "compact", "full", "detailed":
			c.Style = value
		default:
			return fmt.Errorf("unknown style %q", value)
		}
	case "gradient":
		return setBool(&c.Gradient, value)
	case "debug":
		return setBool(&c.Debug, value)
	case "logs.root":
		c.Logs.Root = value
	case "remote.base_url":
		c.Remote.BaseURL = value
	case "remote.timeout_sec":
		return setInt(&c.Remote.TimeoutSec, value)
	case "remote.max_attempts":
		return setInt(&c.Remote.MaxAttempts, value)
	case "remote.base_delay_ms":
		return setInt(&c.Remote.BaseDelayMS, value)
	case "cache.ttl_minutes":
		return setInt(&c.Cache.TTLMinutes, value)
	case "history.max_samples":
		return setInt(&c.History.MaxSamples, value)
	case "history.min_interval_minutes":
		return setInt(&c.History.MinIntervalMinutes, value)
	case "thresholds.green_max":
		return setFloat(&c.Thresholds.GreenMax, value)
	case "thresholds.yellow_max":
		return setFloat(&c.Thresholds.YellowMax, value)
	case "thresholds.orange_max":
		return setFloat(&c.Thresholds.OrangeMax, value)
	case "plan.name":
		c.Plan.Name = value
	case "plan.weekly_reset_day":
		return setInt(&c.Plan.WeeklyResetDay, value)
	case "plan.session_prompts":
		return setInt(&c.Plan.SessionPrompts, value)
	default:
		if tier, ok := strings.CutPrefix(key, "plan.weekly_tokens."); ok {
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("expected a number, got %q", value)
			}
			if c.Plan.WeeklyTokens == nil {
				c.Plan.WeeklyTokens = make(map[string]int64)
			}
			c.Plan.WeeklyTokens[tier] = n
			return nil
		}
		return fmt.Errorf("unknown option %q", key)
	}
	return nil
}

// Toggle flips a named boolean option and returns its new value.
func (c *Config) Toggle(key string) (bool, error) {
	var target *bool
	switch key {
	case "gradient":
		target = &c.Gradient
	case "debug":
		target = &c.Debug
	default:
		return false, fmt.Errorf("option %q is not a toggle", key)
	}
	*target = !*target
	return *target, nil
}

func setBool(target *bool, value string) error {
	switch strings.ToLower(value) {
	case "true", "on", "yes", "1":
		*target = true
	case "false", "off", "no", "0":
		*target = false
	default:
		return fmt.Errorf("expected a boolean, got %q", value)
	}
	return nil
}

func setInt(target *int, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("expected a number, got %q", value)
	}
	*target = n
	return nil
}

func setFloat(target *float64, value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("expected a number, got %q", value)
	}
	*target = f
	return nil
}
