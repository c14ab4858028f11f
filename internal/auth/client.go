package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client exchanges API keys for JWTs against the platform auth endpoint.
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

// New constructs a Client for the given platform base URL.
func New(base string) *Client {
	return &Client{BaseURL: base, httpClient: &http.Client{Timeout: 10 * time.Second}}
}

type exchangeRequest struct {
	APIKey string `json:"apiKey"`
}

type exchangeResponse struct {
	JWT          string `json:"jwt"`
	ExpiresIn    int64  `json:"expiresIn"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Exchange trades an API key for a session token. The expiry instant is
// computed from the server's relative expiresIn at the time of the call.
func (c *Client) Exchange(ctx context.Context, apiKey string) (*Token, error) {
	b, _ := json.Marshal(exchangeRequest{APIKey: apiKey})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/auth/exchange", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("auth exchange: unexpected status %s", resp.Status)
	}
	var v exchangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return nil, fmt.Errorf("auth exchange: decode response: %w", err)
	}
	if v.JWT == "" {
		return nil, fmt.Errorf("auth exchange: response carried no token")
	}
	return &Token{
		Token:        v.JWT,
		ExpiresAt:    time.Now().Add(time.Duration(v.ExpiresIn) * time.Second).Unix(),
		Claims:       ParseClaims(v.JWT),
		RefreshToken: v.RefreshToken,
	}, nil
}
