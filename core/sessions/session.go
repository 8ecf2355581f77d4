package sessions

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/freightsim/callsim-core/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Role identifies one of the two fixed call participants.
type Role string

const (
	RoleDispatcher Role = "dispatcher"
	RoleDriver     Role = "driver"
)

// Roles lists both participants in speaking order: the dispatcher always
// opens the call.
func Roles() []Role {
	return []Role{RoleDispatcher, RoleDriver}
}

// Other returns the counterpart role.
func (r Role) Other() Role {
	if r == RoleDispatcher {
		return RoleDriver
	}
	return RoleDispatcher
}

// DefaultSpeakerLabel is the transcript label used when the call
// configuration does not name the participant.
func (r Role) DefaultSpeakerLabel() string {
	switch r {
	case RoleDispatcher:
		return "Dispatcher"
	case RoleDriver:
		return "Driver"
	}
	return string(r)
}

// DefaultTemperature is the sampling temperature a role's session runs at
// unless overridden. The dispatcher is tuned slightly hotter than the driver
// so the two agents do not sample identically.
func (r Role) DefaultTemperature() float64 {
	if r == RoleDriver {
		return 0.7
	}
	return 0.8
}

// Prompter is the LLM surface a session generates replies through.
type Prompter interface {
	Prompt(ctx context.Context, prompt string, opts ...llms.PromptOption) ([]llms.Response, error)
}

// LLMSession is one agent's conversational connection, bound to a role and a
// shared call. Instructions are supplied fresh on every reply so the session
// itself stays stateless between turns.
type LLMSession struct {
	role        Role
	label       string
	llm         Prompter
	tools       []llms.Tool
	temperature *float64

	closeTransport func(ctx context.Context) error
	closeOnce      sync.Once
}

type SessionOption func(*LLMSession)

// WithSpeakerLabel overrides the transcript label for the session.
func WithSpeakerLabel(label string) SessionOption {
	return func(s *LLMSession) {
		if label != "" {
			s.label = label
		}
	}
}

// WithSessionTools appends tools exposed to the model during this session's
// turns.
func WithSessionTools(tools ...llms.Tool) SessionOption {
	return func(s *LLMSession) {
		s.tools = append(s.tools, tools...)
	}
}

// WithTemperature sets the sampling temperature for every reply the session
// generates, overriding the role default.
func WithTemperature(temperature float64) SessionOption {
	return func(s *LLMSession) {
		s.temperature = &temperature
	}
}

// WithCloseFunc registers a transport teardown hook invoked on the first
// Close.
func WithCloseFunc(closeTransport func(ctx context.Context) error) SessionOption {
	return func(s *LLMSession) {
		s.closeTransport = closeTransport
	}
}

func NewLLMSession(role Role, llm Prompter, opts ...SessionOption) *LLMSession {
	s := &LLMSession{
		role:  role,
		label: role.DefaultSpeakerLabel(),
		llm:   llm,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *LLMSession) Role() Role {
	return s.role
}

// SpeakerLabel is the display name recorded next to this session's
// utterances.
func (s *LLMSession) SpeakerLabel() string {
	return s.label
}

// GenerateReply produces the session's next utterance. instructions carry
// the full per-turn instruction set (persona, scenario, conversation so
// far); prompt is the turn directive.
func (s *LLMSession) GenerateReply(ctx context.Context, instructions string, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "generate reply")
	defer span.End()
	span.SetAttributes(attribute.String("session.role", string(s.role)))

	if s.llm == nil {
		err := fmt.Errorf("session %q has no LLM configured", s.role)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	opts := []llms.PromptOption{
		llms.WithSystemPrompt(instructions),
		llms.WithTools(s.tools...),
	}
	if s.temperature != nil {
		opts = append(opts, llms.WithTemperature(*s.temperature))
	}

	responses, err := s.llm.Prompt(ctx, prompt, opts...)
	if err != nil {
		err = fmt.Errorf("failed to generate reply for %s: %w", s.role, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	var utterance strings.Builder
	for _, response := range responses {
		utterance.WriteString(response.Content)
	}

	return strings.TrimSpace(utterance.String()), nil
}

// Close tears the session down. It is idempotent and safe to call after the
// underlying transport has already disconnected.
func (s *LLMSession) Close(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		if s.closeTransport == nil {
			return
		}
		if closeErr := s.closeTransport(ctx); closeErr != nil {
			err = fmt.Errorf("failed to close %s session transport: %w", s.role, closeErr)
		}
	})
	return err
}
