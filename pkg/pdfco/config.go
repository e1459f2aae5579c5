package pdfco

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds PDF.co API access and staging parameters.
type Config struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	// Expiration is the result availability window, in minutes, requested
	// for staged files and merge results.
	Expiration int `toml:"expiration"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	APIKey     string
	BaseURL    string
	Expiration string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Expiration != 0 {
		c.Expiration = overlay.Expiration
	}
}

func (c *Config) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.pdf.co/v1"
	}
	if c.Expiration == 0 {
		c.Expiration = 60
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.Expiration != "" {
		if v := os.Getenv(env.Expiration); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.Expiration = n
			}
		}
	}
}

// A missing API key is not a validation failure: the service starts and
// reports a configuration error per request instead.
func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if c.Expiration < 1 {
		return fmt.Errorf("invalid expiration: %d", c.Expiration)
	}
	return nil
}
