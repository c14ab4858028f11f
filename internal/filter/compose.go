package filter

import (
	"github.com/gaspardpetit/mcptap/internal/auth"
	"github.com/gaspardpetit/mcptap/internal/platform"
)

// Deps is everything the composer needs to assemble a pipeline.
type Deps struct {
	// CommandLog is the local metadata log path; always written.
	CommandLog string
	// Client is nil for unauthenticated (local-only) sessions.
	Client *platform.Client
	// Tier is the resolved session tier.
	Tier string
	// UserID stamps telemetry events; may be empty.
	UserID string
	// RiskThreshold is the block threshold for the risk filter.
	RiskThreshold float64
}

// Compose assembles the filter list for a session. Free and unauthenticated
// sessions only log locally; paid tiers add telemetry and risk analysis.
func Compose(d Deps) *Pipeline {
	p := NewPipeline()
	p.Add(NewLocalLog(d.CommandLog, d.Tier))
	if d.Client == nil || d.Tier == auth.FreeTier {
		return p
	}
	p.Add(NewTelemetry(d.Client, d.Tier, d.UserID))
	p.Add(NewRiskAnalysis(d.Client, d.RiskThreshold))
	return p
}
