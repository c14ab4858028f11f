package filter

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gaspardpetit/mcptap/internal/logx"
	"github.com/gaspardpetit/mcptap/internal/platform"
)

// Telemetry posts one command_execution event per launch to the platform.
// A 429 counts as delivered; any other failure bubbles up to the pipeline's
// non-blocking handling.
type Telemetry struct {
	client *platform.Client
	tier   string
	userID string
}

// NewTelemetry returns a Telemetry filter reporting as userID on tier.
func NewTelemetry(client *platform.Client, tier, userID string) *Telemetry {
	return &Telemetry{client: client, tier: tier, userID: userID}
}

func (t *Telemetry) Name() string { return "event_sender" }

func (t *Telemetry) Blocking() bool { return false }

func (t *Telemetry) Check(ctx context.Context, fc *Context) (Decision, error) {
	ev := platform.CommandEvent{
		EventType: "command_execution",
		Timestamp: time.Now().UTC(),
		UserID:    t.userID,
		UserTier:  t.tier,
		Command:   fc.Request.Command,
		Args:      fc.Request.Args,
		SessionID: uuid.NewString(),
		Metadata:  fc.Request.Metadata,
	}
	err := t.client.SendTelemetry(ctx, ev)
	if errors.Is(err, platform.ErrRateLimited) {
		logx.Log.Warn().Msg("telemetry rate limited; event counted as sent")
		return Allow(), nil
	}
	if err != nil {
		return Decision{}, err
	}
	return Allow(), nil
}
