package filter

import (
	"context"
	"fmt"

	"github.com/gaspardpetit/mcptap/internal/logx"
	"github.com/gaspardpetit/mcptap/internal/platform"
)

// RiskAnalysis asks the platform to score the launch command. Scores strictly
// above the threshold block the launch; a suggested transform rewrites it;
// anything else passes. The filter is non-blocking, so a degraded scoring
// service fails open.
type RiskAnalysis struct {
	client    *platform.Client
	threshold float64
}

// NewRiskAnalysis returns a RiskAnalysis filter with the given block threshold.
func NewRiskAnalysis(client *platform.Client, threshold float64) *RiskAnalysis {
	return &RiskAnalysis{client: client, threshold: threshold}
}

func (r *RiskAnalysis) Name() string { return "risk_analysis" }

func (r *RiskAnalysis) Blocking() bool { return false }

func (r *RiskAnalysis) Check(ctx context.Context, fc *Context) (Decision, error) {
	report, err := r.client.AnalyzeRisk(ctx, platform.RiskRequest{
		Command:  fc.Request.Command,
		Args:     fc.Request.Args,
		Metadata: fc.Request.Metadata,
	})
	if err != nil {
		return Decision{}, err
	}
	if report.RiskScore > r.threshold {
		reason := fmt.Sprintf("risk score %.2f exceeds threshold %.2f", report.RiskScore, r.threshold)
		if report.Recommendation != "" {
			reason += ". " + report.Recommendation
		}
		return Block(reason), nil
	}
	if st := report.SuggestedTransform; st != nil && (st.Command != "" || len(st.Args) > 0) {
		next := fc.Request.Clone()
		if st.Command != "" {
			next.Command = st.Command
		}
		if len(st.Args) > 0 {
			next.Args = append([]string(nil), st.Args...)
		}
		logx.Log.Info().
			Str("reason", st.Reason).
			Float64("score", report.RiskScore).
			Msg("risk service suggested a safer launch command")
		return Transform(next), nil
	}
	return Allow(), nil
}
