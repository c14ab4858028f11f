// Package platform is the HTTP client for the hosted API: telemetry ingest
// and command risk analysis. All calls carry the session JWT and a 10 second
// timeout so a slow platform can never stall the relay.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gaspardpetit/mcptap/internal/telemetry"
)

// ErrRateLimited marks a 429 from the ingest endpoints. Callers treat it as
// a delivered-enough outcome and must not retry.
var ErrRateLimited = errors.New("platform: rate limited")

// Client talks to the platform API.
type Client struct {
	BaseURL    string
	Token      string
	httpClient *http.Client
}

// New constructs a Client authenticating with the given session token.
func New(base, token string) *Client {
	return &Client{
		BaseURL:    base,
		Token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// CommandEvent reports one proxied command launch.
type CommandEvent struct {
	EventType string            `json:"event_type"`
	Timestamp time.Time         `json:"timestamp"`
	UserID    string            `json:"user_id,omitempty"`
	UserTier  string            `json:"user_tier"`
	Command   string            `json:"command"`
	Args      []string          `json:"args"`
	SessionID string            `json:"session_id"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// RiskRequest asks the platform to score a command before it is spawned.
type RiskRequest struct {
	Command  string            `json:"command"`
	Args     []string          `json:"args"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SuggestedTransform is the platform's proposed replacement command.
type SuggestedTransform struct {
	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`
	Reason  string   `json:"reason,omitempty"`
}

// RiskReport is the platform's verdict on a command.
type RiskReport struct {
	RiskScore          float64             `json:"risk_score"`
	RiskLevel          string              `json:"risk_level"`
	Recommendation     string              `json:"recommendation"`
	SuggestedTransform *SuggestedTransform `json:"suggested_transform,omitempty"`
}

// SendTelemetry posts a single command event.
func (c *Client) SendTelemetry(ctx context.Context, ev CommandEvent) error {
	return c.post(ctx, "/events/telemetry", ev, nil)
}

// SendBatch posts a batch of relay events.
func (c *Client) SendBatch(ctx context.Context, batch telemetry.Batch) error {
	return c.post(ctx, "/events/batch", batch, nil)
}

// AnalyzeRisk scores a command launch.
func (c *Client) AnalyzeRisk(ctx context.Context, req RiskRequest) (*RiskReport, error) {
	var report RiskReport
	if err := c.post(ctx, "/risk/analyze", req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("platform: encode %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("platform: %s returned %s", path, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("platform: decode %s response: %w", path, err)
		}
		return nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
