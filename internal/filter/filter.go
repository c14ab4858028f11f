// Package filter runs policy over a launch command before the child process
// is spawned. Filters are ordered; each one can allow the command, block it
// with a reason, or rewrite it for the filters that follow.
package filter

import (
	"context"
	"fmt"
)

// Request is the launch command under policy review.
type Request struct {
	Command  string            `json:"command"`
	Args     []string          `json:"args"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Clone returns a deep copy so a transform never aliases the original.
func (r *Request) Clone() *Request {
	out := &Request{Command: r.Command}
	out.Args = append([]string(nil), r.Args...)
	if r.Metadata != nil {
		out.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Context carries the request and session state through the pipeline.
// Filters read it; only the pipeline replaces Request after a transform.
type Context struct {
	Request      *Request
	SessionToken string
	Metadata     map[string]string
}

// Action is the kind of decision a filter returned.
type Action int

const (
	ActionAllow Action = iota
	ActionBlock
	ActionTransform
)

// Decision is a filter verdict. Exactly one of the constructors below
// produces it.
type Decision struct {
	Action     Action
	Reason     string
	NewRequest *Request
}

// Allow lets the request continue unchanged.
func Allow() Decision { return Decision{Action: ActionAllow} }

// Block stops the pipeline; the command never runs.
func Block(reason string) Decision { return Decision{Action: ActionBlock, Reason: reason} }

// Transform replaces the request for subsequent filters.
func Transform(req *Request) Decision {
	return Decision{Action: ActionTransform, NewRequest: req}
}

// Filter is one policy stage. Blocking filters abort the pipeline when their
// Check fails; non-blocking ones log and fall through as an Allow.
type Filter interface {
	Name() string
	Blocking() bool
	Check(ctx context.Context, fc *Context) (Decision, error)
}

// BlockedError reports which filter refused the command and why.
type BlockedError struct {
	Filter string
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("request blocked by %s: %s", e.Filter, e.Reason)
}
