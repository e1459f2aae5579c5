package box_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/justinaw04/box-pdf-merger/pkg/box"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testKey is generated once; key generation dominates test runtime otherwise.
var testKey = func() *rsa.PrivateKey {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	return key
}()

func testCredentialsJSON(t *testing.T, enterpriseID, userID string) string {
	t.Helper()

	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(testKey),
	})

	doc := map[string]any{
		"boxAppSettings": map[string]any{
			"clientID":     "test-client",
			"clientSecret": "test-secret",
			"appAuth": map[string]any{
				"publicKeyID": "key-1",
				"privateKey":  string(keyPEM),
				"passphrase":  "",
			},
		},
		"enterpriseID": enterpriseID,
		"userID":       userID,
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal credentials: %v", err)
	}
	return string(data)
}

func TestAuthenticate(t *testing.T) {
	var gotAssertion string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.FormValue("grant_type"); got != "urn:ietf:params:oauth:grant-type:jwt-bearer" {
			t.Errorf("grant_type: got %q", got)
		}
		if got := r.FormValue("client_id"); got != "test-client" {
			t.Errorf("client_id: got %q", got)
		}
		if got := r.FormValue("client_secret"); got != "test-secret" {
			t.Errorf("client_secret: got %q", got)
		}
		gotAssertion = r.FormValue("assertion")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "session-token",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	cfg := &box.Config{
		CredentialsJSON: testCredentialsJSON(t, "9001", ""),
		TokenURL:        srv.URL,
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize config: %v", err)
	}

	system, err := box.New(cfg, discardLogger())
	if err != nil {
		t.Fatalf("new system: %v", err)
	}
	if !system.Configured() {
		t.Fatal("system should report configured")
	}

	session, err := system.Authenticate(context.Background())
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if session.Token() != "session-token" {
		t.Errorf("token: got %q, want session-token", session.Token())
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(gotAssertion, claims, func(token *jwt.Token) (any, error) {
		if kid := token.Header["kid"]; kid != "key-1" {
			t.Errorf("kid: got %v, want key-1", kid)
		}
		return &testKey.PublicKey, nil
	})
	if err != nil {
		t.Fatalf("parse assertion: %v", err)
	}
	if !token.Valid {
		t.Fatal("assertion signature invalid")
	}
	if claims["box_sub_type"] != "enterprise" {
		t.Errorf("box_sub_type: got %v, want enterprise", claims["box_sub_type"])
	}
	if claims["sub"] != "9001" {
		t.Errorf("sub: got %v, want 9001", claims["sub"])
	}
	if claims["iss"] != "test-client" {
		t.Errorf("iss: got %v, want test-client", claims["iss"])
	}
}

func TestAuthenticateNotConfigured(t *testing.T) {
	cfg := &box.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize config: %v", err)
	}

	system, err := box.New(cfg, discardLogger())
	if err != nil {
		t.Fatalf("new system: %v", err)
	}
	if system.Configured() {
		t.Error("system should not report configured")
	}

	_, err = system.Authenticate(context.Background())
	if !errors.Is(err, box.ErrNotConfigured) {
		t.Errorf("error: got %v, want ErrNotConfigured", err)
	}
}

func TestAuthenticateTokenEndpointError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := &box.Config{
		CredentialsJSON: testCredentialsJSON(t, "9001", ""),
		TokenURL:        srv.URL,
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize config: %v", err)
	}

	system, err := box.New(cfg, discardLogger())
	if err != nil {
		t.Fatalf("new system: %v", err)
	}

	_, err = system.Authenticate(context.Background())
	if !errors.Is(err, box.ErrAuthentication) {
		t.Errorf("error: got %v, want ErrAuthentication", err)
	}
}

func TestParseCredentials(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid enterprise", testCredentialsJSON(t, "9001", ""), false},
		{"valid user", testCredentialsJSON(t, "", "42"), false},
		{"no subject", testCredentialsJSON(t, "", ""), true},
		{"malformed json", "{not json", true},
		{"empty document", "{}", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := box.ParseCredentials([]byte(tt.input))
			if tt.wantErr {
				if !errors.Is(err, box.ErrInvalidCredentials) {
					t.Errorf("error: got %v, want ErrInvalidCredentials", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSubjectPrecedence(t *testing.T) {
	creds, err := box.ParseCredentials([]byte(testCredentialsJSON(t, "9001", "42")))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	subType, subject := creds.Subject()
	if subType != box.SubjectEnterprise {
		t.Errorf("subject type: got %q, want enterprise", subType)
	}
	if subject != "9001" {
		t.Errorf("subject: got %q, want 9001", subject)
	}
}
