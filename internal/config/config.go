package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/justinaw04/box-pdf-merger/pkg/box"
	"github.com/justinaw04/box-pdf-merger/pkg/pdfco"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvBoxMergeEnv             = "BOXMERGE_ENV"
	EnvBoxMergeShutdownTimeout = "BOXMERGE_SHUTDOWN_TIMEOUT"
	EnvBoxMergeVersion         = "BOXMERGE_VERSION"
)

// The credential env var names match the deployment convention the service
// has always used; everything else is namespaced under BOXMERGE_.
var boxEnv = &box.Env{
	CredentialsJSON: "BOX_JWT_CONFIG_JSON",
	CredentialsPath: "BOXMERGE_BOX_CREDENTIALS_PATH",
	APIURL:          "BOXMERGE_BOX_API_URL",
	UploadURL:       "BOXMERGE_BOX_UPLOAD_URL",
	TokenURL:        "BOXMERGE_BOX_TOKEN_URL",
	ListLimit:       "BOXMERGE_BOX_LIST_LIMIT",
}

var pdfcoEnv = &pdfco.Env{
	APIKey:     "PDF_CO_API_KEY",
	BaseURL:    "BOXMERGE_PDFCO_BASE_URL",
	Expiration: "BOXMERGE_PDFCO_EXPIRATION",
}

// Config is the root configuration for the merger service.
type Config struct {
	Server          ServerConfig `toml:"server"`
	Box             box.Config   `toml:"box"`
	PDFCo           pdfco.Config `toml:"pdfco"`
	Workflow        MergeConfig  `toml:"merge"`
	API             APIConfig    `toml:"api"`
	ShutdownTimeout string       `toml:"shutdown_timeout"`
	Version         string       `toml:"version"`
}

// Env returns the BOXMERGE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvBoxMergeEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Box.Merge(&overlay.Box)
	c.PDFCo.Merge(&overlay.PDFCo)
	c.Workflow.Merge(&overlay.Workflow)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Box.Finalize(boxEnv); err != nil {
		return fmt.Errorf("box: %w", err)
	}
	if err := c.PDFCo.Finalize(pdfcoEnv); err != nil {
		return fmt.Errorf("pdfco: %w", err)
	}
	if err := c.Workflow.Finalize(); err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvBoxMergeShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvBoxMergeVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvBoxMergeEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
