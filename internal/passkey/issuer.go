package passkey

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Mode selects between the login and registration ceremonies.
type Mode string

const (
	// ModeLogin asserts an existing passkey.
	ModeLogin Mode = "login"
	// ModeRegister creates a new passkey bound to a username.
	ModeRegister Mode = "register"
)

// Issuer represents a connector to the external passkey credential service.
// The WebAuthn ceremony behind it is opaque; it either yields a credential
// or fails (user cancellation, platform rejection, network error).
type Issuer interface {
	Issue(ctx context.Context, mode Mode, username string) (Credential, error)
}

// HTTPIssuer calls the hosted passkey transport endpoint.
type HTTPIssuer struct {
	endpoint  string
	clientKey string
	http      *http.Client
}

// NewHTTPIssuer builds an issuer against the given passkey service URL.
func NewHTTPIssuer(endpoint, clientKey string) *HTTPIssuer {
	return &HTTPIssuer{
		endpoint:  strings.TrimRight(endpoint, "/"),
		clientKey: clientKey,
		http:      &http.Client{Timeout: 2 * time.Minute},
	}
}

type issueRequest struct {
	Mode     Mode   `json:"mode"`
	Username string `json:"username,omitempty"`
}

// Issue requests a credential from the passkey service. The response body is
// the credential payload, passed through opaquely after a shape check.
func (i *HTTPIssuer) Issue(ctx context.Context, mode Mode, username string) (Credential, error) {
	body, err := json.Marshal(issueRequest{Mode: mode, Username: username})
	if err != nil {
		return Credential{}, fmt.Errorf("encode issue request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.endpoint+"/credentials", bytes.NewReader(body))
	if err != nil {
		return Credential{}, fmt.Errorf("build issue request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if i.clientKey != "" {
		req.Header.Set("X-Client-Key", i.clientKey)
	}

	resp, err := i.http.Do(req)
	if err != nil {
		return Credential{}, fmt.Errorf("issue credential: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Credential{}, fmt.Errorf("read credential: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Credential{}, fmt.Errorf("issue credential: unexpected status %d", resp.StatusCode)
	}

	return Decode(payload)
}

// StaticIssuer simulates a successful ceremony for local development and
// tests.
type StaticIssuer struct{}

// Issue returns a synthetic credential.
func (StaticIssuer) Issue(_ context.Context, mode Mode, username string) (Credential, error) {
	payload := fmt.Sprintf(`{"id":"static-%s","username":%q}`, mode, username)
	return Decode([]byte(payload))
}
