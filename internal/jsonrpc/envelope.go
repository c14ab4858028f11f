// Package jsonrpc peeks inside newline-delimited JSON-RPC 2.0 frames without
// interpreting them. The relay only needs the id and method of each line; the
// payload itself stays opaque.
package jsonrpc

import (
	"bytes"
	"encoding/json"
)

// Envelope is the portion of a JSON-RPC message the relay cares about.
type Envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
}

// Inspect parses a single line as a JSON-RPC envelope. It reports false for
// lines that are not JSON objects or lack the jsonrpc marker; such lines are
// relayed verbatim but never correlated.
func Inspect(line []byte) (*Envelope, bool) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, false
	}
	if env.JSONRPC == "" {
		return nil, false
	}
	return &env, true
}

// HasID reports whether the message carries a non-null id, i.e. whether it
// participates in request/response correlation. Notifications have no id.
func (e *Envelope) HasID() bool {
	if e == nil || len(e.ID) == 0 {
		return false
	}
	return !bytes.Equal(e.ID, []byte("null"))
}

// CorrelationKey returns the raw id bytes as a map key. Using the raw JSON
// keeps 7 and "7" distinct, matching how the peer will echo the id back.
func (e *Envelope) CorrelationKey() string {
	return string(e.ID)
}
