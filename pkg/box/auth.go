package box

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	grantJWTBearer    = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionValidity = 45 * time.Second
)

// Session is an authenticated handle to the Box content API. Each merge run
// derives its own session; sessions are not shared across requests.
type Session struct {
	accessToken string
	expiresAt   time.Time
}

// Token returns the bearer token for API calls.
func (s *Session) Token() string {
	return s.accessToken
}

type assertionClaims struct {
	jwt.RegisteredClaims
	BoxSubType string `json:"box_sub_type"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Authenticate exchanges the app's signed JWT assertion for an access token.
func (c *client) Authenticate(ctx context.Context) (*Session, error) {
	if c.creds == nil {
		return nil, ErrNotConfigured
	}

	assertion, err := c.signAssertion()
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"grant_type":    {grantJWTBearer},
		"client_id":     {c.creds.BoxAppSettings.ClientID},
		"client_secret": {c.creds.BoxAppSettings.ClientSecret},
		"assertion":     {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: build token request: %w", ErrAuthentication, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange: %w", ErrAuthentication, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read token response: %w", ErrAuthentication, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: token endpoint returned %d: %s", ErrAuthentication, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("%w: parse token response: %w", ErrAuthentication, err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: token endpoint returned no access token", ErrAuthentication)
	}

	subType, _ := c.creds.Subject()
	c.logger.Info(
		"box session established",
		"subject_type", subType,
		"expires_in", token.ExpiresIn,
	)

	return &Session{
		accessToken: token.AccessToken,
		expiresAt:   time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
	}, nil
}

func (c *client) signAssertion() (string, error) {
	key, err := parsePrivateKey(
		[]byte(c.creds.BoxAppSettings.AppAuth.PrivateKey),
		c.creds.BoxAppSettings.AppAuth.Passphrase,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	subType, subject := c.creds.Subject()

	claims := assertionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.creds.BoxAppSettings.ClientID,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{c.cfg.TokenURL},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(assertionValidity)),
			ID:        uuid.NewString(),
		},
		BoxSubType: string(subType),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = c.creds.BoxAppSettings.AppAuth.PublicKeyID

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("%w: sign assertion: %w", ErrAuthentication, err)
	}
	return signed, nil
}

func parsePrivateKey(pemData []byte, passphrase string) (*rsa.PrivateKey, error) {
	if passphrase == "" {
		key, err := jwt.ParseRSAPrivateKeyFromPEM(pemData)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		return key, nil
	}

	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("parse private key: no PEM block found")
	}

	der, err := x509.DecryptPEMBlock(block, []byte(passphrase))
	if err != nil {
		return nil, fmt.Errorf("decrypt private key: %w", err)
	}

	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("parse private key: not an RSA key")
	}
	return key, nil
}
