package filter

import (
	"context"
	"fmt"

	"github.com/gaspardpetit/mcptap/internal/logx"
)

// Pipeline evaluates filters in the order they were added.
type Pipeline struct {
	filters []Filter
}

// NewPipeline returns an empty pipeline; Execute on it allows everything.
func NewPipeline() *Pipeline { return &Pipeline{} }

// Add appends a filter to the end of the pipeline.
func (p *Pipeline) Add(f Filter) *Pipeline {
	p.filters = append(p.filters, f)
	return p
}

// Len reports how many filters are installed.
func (p *Pipeline) Len() int { return len(p.filters) }

// Execute runs every filter against fc. It returns the final request, which
// may differ from the input after transforms, or an error: *BlockedError when
// a filter refused the command, a wrapped error when a blocking filter's
// Check failed. Non-blocking Check failures are logged and skipped.
func (p *Pipeline) Execute(ctx context.Context, fc *Context) (*Request, error) {
	for _, f := range p.filters {
		dec, err := f.Check(ctx, fc)
		if err != nil {
			if f.Blocking() {
				return nil, fmt.Errorf("filter %s failed: %w", f.Name(), err)
			}
			logx.Log.Warn().Err(err).Str("filter", f.Name()).Msg("filter failed; continuing")
			continue
		}
		switch dec.Action {
		case ActionAllow:
		case ActionBlock:
			return nil, &BlockedError{Filter: f.Name(), Reason: dec.Reason}
		case ActionTransform:
			if dec.NewRequest != nil {
				logx.Log.Info().
					Str("filter", f.Name()).
					Str("command", dec.NewRequest.Command).
					Msg("launch command transformed")
				fc.Request = dec.NewRequest
			}
		}
	}
	return fc.Request, nil
}
