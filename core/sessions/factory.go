package sessions

import (
	"context"
	"fmt"

	"github.com/freightsim/callsim-core/core/llms"
)

// Factory starts LLM-backed sessions bound to a shared call.
type Factory struct {
	llm  Prompter
	opts []SessionOption
}

// NewFactory creates a session factory. opts are applied to every session it
// starts, before per-session options.
func NewFactory(llm Prompter, opts ...SessionOption) *Factory {
	return &Factory{llm: llm, opts: opts}
}

// StartSession creates and registers a session for one role. The returned
// session is ready to generate replies; it holds no per-call state beyond
// its role and label.
func (f *Factory) StartSession(ctx context.Context, role Role, label string, tools []llms.Tool) (*LLMSession, error) {
	if f.llm == nil {
		return nil, fmt.Errorf("cannot start %s session: no LLM configured", role)
	}

	opts := []SessionOption{WithTemperature(role.DefaultTemperature())}
	opts = append(opts, f.opts...)
	if label != "" {
		opts = append(opts, WithSpeakerLabel(label))
	}
	if len(tools) > 0 {
		opts = append(opts, WithSessionTools(tools...))
	}

	session := NewLLMSession(role, f.llm, opts...)
	logger.InfoContext(ctx, "Session started", "role", role, "label", session.SpeakerLabel())
	return session, nil
}
