package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const googleTokenURL = "https://oauth2.googleapis.com/token"

// ErrNotAuthenticated is returned when no valid access token is available
// and none can be acquired.
var ErrNotAuthenticated = errors.New("gmail: not authenticated")

// Credentials are the long-lived OAuth client credentials obtained through
// the external authorization flow. The short-lived access token derived from
// them is held in memory only.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// TokenSource exchanges a refresh token for bearer tokens and caches the
// current one with its expiry. An expired token is treated as absent.
type TokenSource struct {
	creds    Credentials
	tokenURL string
	client   *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewTokenSource creates a token source for the given credentials.
func NewTokenSource(creds Credentials) *TokenSource {
	return &TokenSource{
		creds:    creds,
		tokenURL: googleTokenURL,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether the external authorization flow has been
// completed, i.e. refresh credentials exist.
func (ts *TokenSource) Configured() bool {
	return ts.creds.ClientID != "" && ts.creds.ClientSecret != "" && ts.creds.RefreshToken != ""
}

// Token returns a currently valid bearer token, refreshing if the cached
// one is absent or expired.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	// Leave a minute of slack so a token does not expire mid-request.
	if ts.token != "" && time.Until(ts.expires) > time.Minute {
		return ts.token, nil
	}

	if !ts.Configured() {
		return "", ErrNotAuthenticated
	}

	form := url.Values{
		"client_id":     {ts.creds.ClientID},
		"client_secret": {ts.creds.ClientSecret},
		"refresh_token": {ts.creds.RefreshToken},
		"grant_type":    {"refresh_token"},
	}

	req, err := http.NewRequestWithContext(ctx, "POST", ts.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token refresh failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token refresh rejected (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	ts.token = payload.AccessToken
	ts.expires = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	return ts.token, nil
}
