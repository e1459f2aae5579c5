package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvMergePollInterval   = "BOXMERGE_POLL_INTERVAL"
	EnvMergePollBudget     = "BOXMERGE_POLL_BUDGET"
	EnvMergeMinSources     = "BOXMERGE_MIN_SOURCES"
	EnvMergeSkipValidation = "BOXMERGE_SKIP_VALIDATION"
)

// MergeConfig holds the workflow's polling cadence and entry gate.
// SkipValidation disables the per-file well-formedness check before staging,
// trading safety for throughput on large source files.
type MergeConfig struct {
	PollInterval   string `toml:"poll_interval"`
	PollBudget     string `toml:"poll_budget"`
	MinSources     int    `toml:"min_sources"`
	SkipValidation bool   `toml:"skip_validation"`
}

// PollIntervalDuration returns PollInterval as a time.Duration.
func (c *MergeConfig) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// PollBudgetDuration returns PollBudget as a time.Duration.
func (c *MergeConfig) PollBudgetDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollBudget)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *MergeConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *MergeConfig) Merge(overlay *MergeConfig) {
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
	if overlay.PollBudget != "" {
		c.PollBudget = overlay.PollBudget
	}
	if overlay.MinSources != 0 {
		c.MinSources = overlay.MinSources
	}
	if overlay.SkipValidation {
		c.SkipValidation = true
	}
}

func (c *MergeConfig) loadDefaults() {
	if c.PollInterval == "" {
		c.PollInterval = "5s"
	}
	if c.PollBudget == "" {
		c.PollBudget = "300s"
	}
	if c.MinSources == 0 {
		c.MinSources = 2
	}
}

func (c *MergeConfig) loadEnv() {
	if v := os.Getenv(EnvMergePollInterval); v != "" {
		c.PollInterval = v
	}
	if v := os.Getenv(EnvMergePollBudget); v != "" {
		c.PollBudget = v
	}
	if v := os.Getenv(EnvMergeMinSources); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MinSources = n
		}
	}
	if v := os.Getenv(EnvMergeSkipValidation); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.SkipValidation = b
		}
	}
}

func (c *MergeConfig) validate() error {
	interval, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return fmt.Errorf("invalid poll_interval: %w", err)
	}
	budget, err := time.ParseDuration(c.PollBudget)
	if err != nil {
		return fmt.Errorf("invalid poll_budget: %w", err)
	}
	if interval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if budget < interval {
		return fmt.Errorf("poll_budget must be at least poll_interval")
	}
	if c.MinSources < 1 {
		return fmt.Errorf("min_sources must be at least 1")
	}
	return nil
}
