// Package telemetry models relayed MCP traffic as platform events and ships
// them in batches. Delivery is best-effort: a failed send drops the batch
// with a warning and the relay moves on.
package telemetry

import (
	"time"

	"github.com/google/uuid"
)

// Direction tags which way a line crossed the proxy.
type Direction string

const (
	DirectionRequest  Direction = "request"
	DirectionResponse Direction = "response"
)

// Event is one relayed line, ready for the platform ingest API. Payload is
// the raw line; encoding/json emits it base64-encoded. Size records the
// original length even when the payload was truncated.
type Event struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlationId,omitempty"`
	Direction     Direction `json:"direction"`
	Method        string    `json:"method,omitempty"`
	Payload       []byte    `json:"payload"`
	Size          int       `json:"size"`
}

// Batch groups events for a single POST to the ingest endpoint.
type Batch struct {
	Events         []Event   `json:"events"`
	CLIVersion     string    `json:"cliVersion"`
	BatchTimestamp time.Time `json:"batchTimestamp"`
	CorrelationID  string    `json:"correlationId"`
}

// NewEvent builds an event for one relayed line. limit > 0 truncates the
// payload while keeping the original size.
func NewEvent(dir Direction, line []byte, method, correlationID string, limit int) Event {
	payload := line
	if limit > 0 && len(line) > limit {
		payload = line[:limit]
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	return Event{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Direction:     dir,
		Method:        method,
		Payload:       buf,
		Size:          len(line),
	}
}
