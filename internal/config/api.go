package config

import (
	"fmt"
	"os"

	"github.com/justinaw04/box-pdf-merger/pkg/middleware"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "BOXMERGE_CORS_ENABLED",
	Origins:          "BOXMERGE_CORS_ORIGINS",
	AllowedMethods:   "BOXMERGE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "BOXMERGE_CORS_ALLOWED_HEADERS",
	AllowCredentials: "BOXMERGE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "BOXMERGE_CORS_MAX_AGE",
}

// APIConfig holds API routing and CORS settings.
type APIConfig struct {
	BasePath string                `toml:"base_path"`
	AppPath  string                `toml:"app_path"`
	CORS     middleware.CORSConfig `toml:"cors"`
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS config.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.AppPath != "" {
		c.AppPath = overlay.AppPath
	}

	c.CORS.Merge(&overlay.CORS)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.AppPath == "" {
		c.AppPath = "/app"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("BOXMERGE_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("BOXMERGE_APP_PATH"); v != "" {
		c.AppPath = v
	}
}
