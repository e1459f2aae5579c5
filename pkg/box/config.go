package box

import (
	"fmt"
	"os"
	"strconv"
)

// MaxListCap bounds the folder listing page size accepted from configuration.
const MaxListCap = 1000

// Config holds Box API endpoints and credential sources.
// Credentials may be supplied inline as the JWT app config JSON or as a
// path to a file containing it; inline wins when both are set.
type Config struct {
	CredentialsJSON string `toml:"credentials_json"`
	CredentialsPath string `toml:"credentials_path"`
	APIURL          string `toml:"api_url"`
	UploadURL       string `toml:"upload_url"`
	TokenURL        string `toml:"token_url"`
	ListLimit       int    `toml:"list_limit"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	CredentialsJSON string
	CredentialsPath string
	APIURL          string
	UploadURL       string
	TokenURL        string
	ListLimit       string
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
	if overlay.CredentialsJSON != "" {
		c.CredentialsJSON = overlay.CredentialsJSON
	}
	if overlay.CredentialsPath != "" {
		c.CredentialsPath = overlay.CredentialsPath
	}
	if overlay.APIURL != "" {
		c.APIURL = overlay.APIURL
	}
	if overlay.UploadURL != "" {
		c.UploadURL = overlay.UploadURL
	}
	if overlay.TokenURL != "" {
		c.TokenURL = overlay.TokenURL
	}
	if overlay.ListLimit != 0 {
		c.ListLimit = overlay.ListLimit
	}
}

func (c *Config) loadDefaults() {
	if c.APIURL == "" {
		c.APIURL = "https://api.box.com/2.0"
	}
	if c.UploadURL == "" {
		c.UploadURL = "https://upload.box.com/api/2.0"
	}
	if c.TokenURL == "" {
		c.TokenURL = "https://api.box.com/oauth2/token"
	}
	if c.ListLimit == 0 {
		c.ListLimit = 100
	}
	if c.ListLimit > MaxListCap {
		c.ListLimit = MaxListCap
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.CredentialsJSON != "" {
		if v := os.Getenv(env.CredentialsJSON); v != "" {
			c.CredentialsJSON = v
		}
	}
	if env.CredentialsPath != "" {
		if v := os.Getenv(env.CredentialsPath); v != "" {
			c.CredentialsPath = v
		}
	}
	if env.APIURL != "" {
		if v := os.Getenv(env.APIURL); v != "" {
			c.APIURL = v
		}
	}
	if env.UploadURL != "" {
		if v := os.Getenv(env.UploadURL); v != "" {
			c.UploadURL = v
		}
	}
	if env.TokenURL != "" {
		if v := os.Getenv(env.TokenURL); v != "" {
			c.TokenURL = v
		}
	}
	if env.ListLimit != "" {
		if v := os.Getenv(env.ListLimit); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.ListLimit = min(n, MaxListCap)
			}
		}
	}
}

// Missing credentials are not a validation failure: the service starts and
// reports a configuration error per request instead.
func (c *Config) validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url required")
	}
	if c.UploadURL == "" {
		return fmt.Errorf("upload_url required")
	}
	if c.TokenURL == "" {
		return fmt.Errorf("token_url required")
	}
	return nil
}
