package box

import (
	"encoding/json"
	"fmt"
	"os"
)

// SubjectType selects the authentication subject of a JWT session.
type SubjectType string

// Subject types recognized by the Box token endpoint.
const (
	SubjectEnterprise SubjectType = "enterprise"
	SubjectUser       SubjectType = "user"
)

// Credentials mirrors the Box JWT app configuration JSON downloaded from the
// developer console. Loaded once at startup and immutable afterwards.
type Credentials struct {
	BoxAppSettings AppSettings `json:"boxAppSettings"`
	EnterpriseID   string      `json:"enterpriseID"`
	UserID         string      `json:"userID"`
}

// AppSettings holds the OAuth client pair and the app auth key material.
type AppSettings struct {
	ClientID     string  `json:"clientID"`
	ClientSecret string  `json:"clientSecret"`
	AppAuth      AppAuth `json:"appAuth"`
}

// AppAuth holds the RSA signing key registered with the Box app.
type AppAuth struct {
	PublicKeyID string `json:"publicKeyID"`
	PrivateKey  string `json:"privateKey"`
	Passphrase  string `json:"passphrase"`
}

// Subject returns the authentication subject type and id. The enterprise
// subject wins when both are present.
func (c *Credentials) Subject() (SubjectType, string) {
	if c.EnterpriseID != "" {
		return SubjectEnterprise, c.EnterpriseID
	}
	return SubjectUser, c.UserID
}

// ParseCredentials decodes and validates a JWT app configuration document.
func ParseCredentials(data []byte) (*Credentials, error) {
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("%w: parse app config: %w", ErrInvalidCredentials, err)
	}
	if err := creds.validate(); err != nil {
		return nil, err
	}
	return &creds, nil
}

// LoadCredentials resolves credentials from the configured sources:
// inline JSON first, then a file path. Returns ErrNotConfigured when
// neither source is set.
func LoadCredentials(cfg *Config) (*Credentials, error) {
	if cfg.CredentialsJSON != "" {
		return ParseCredentials([]byte(cfg.CredentialsJSON))
	}
	if cfg.CredentialsPath != "" {
		data, err := os.ReadFile(cfg.CredentialsPath)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrInvalidCredentials, cfg.CredentialsPath, err)
		}
		return ParseCredentials(data)
	}
	return nil, ErrNotConfigured
}

func (c *Credentials) validate() error {
	if c.BoxAppSettings.ClientID == "" || c.BoxAppSettings.ClientSecret == "" {
		return fmt.Errorf("%w: missing client id or secret", ErrInvalidCredentials)
	}
	if c.BoxAppSettings.AppAuth.PublicKeyID == "" || c.BoxAppSettings.AppAuth.PrivateKey == "" {
		return fmt.Errorf("%w: missing app auth key material", ErrInvalidCredentials)
	}
	if c.EnterpriseID == "" && c.UserID == "" {
		return fmt.Errorf("%w: neither enterpriseID nor userID present", ErrInvalidCredentials)
	}
	return nil
}
