package orchestration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/freightsim/callsim-core/core/events"
	"github.com/freightsim/callsim-core/core/llms"
	"github.com/freightsim/callsim-core/core/rooms"
	"github.com/freightsim/callsim-core/core/sessions"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Phase is the scheduler's lifecycle position.
type Phase string

const (
	PhaseInit              Phase = "INIT"
	PhaseResolvingMetadata Phase = "RESOLVING_METADATA"
	PhaseStartingSessions  Phase = "STARTING_SESSIONS"
	PhaseOpeningTurn       Phase = "OPENING_TURN"
	PhaseAlternating       Phase = "ALTERNATING"
	PhaseConcluded         Phase = "CONCLUDED"
	PhaseTimedOut          Phase = "TIMED_OUT"
	PhaseFailed            Phase = "FAILED"
)

const (
	defaultTurnPacing    = 2 * time.Second
	defaultSafetyCeiling = 600 * time.Second
	defaultMaxTurns      = 20
)

// Load statuses the dispatcher can record during the call.
const (
	LoadStatusAccepted = "accepted"
	LoadStatusRejected = "rejected"
)

// Session is what the scheduler needs from one agent leg of the call.
type Session interface {
	Role() sessions.Role
	SpeakerLabel() string
	GenerateReply(ctx context.Context, instructions string, prompt string) (string, error)
	Close(ctx context.Context) error
}

// SessionFactory starts one session per role for a call.
type SessionFactory interface {
	StartSession(ctx context.Context, role sessions.Role, label string, tools []llms.Tool) (Session, error)
}

// SessionFactoryFunc adapts a function to the SessionFactory interface.
type SessionFactoryFunc func(ctx context.Context, role sessions.Role, label string, tools []llms.Tool) (Session, error)

func (f SessionFactoryFunc) StartSession(ctx context.Context, role sessions.Role, label string, tools []llms.Tool) (Session, error) {
	return f(ctx, role, label, tools)
}

// MetadataResolver resolves call configuration before sessions start.
// Resolution is best-effort; a zero RoomMetadata means run with defaults.
type MetadataResolver interface {
	Resolve(ctx context.Context, callID string, attachedMetadata string) rooms.RoomMetadata
}

// ParticipantLister exposes the registry's room membership lookup, used for
// introspection at call start.
type ParticipantLister interface {
	ListParticipants(ctx context.Context, room string) ([]rooms.Participant, error)
}

// Outcome is the terminal result of one scheduled call.
type Outcome struct {
	Phase      Phase
	Turns      int
	Transcript TranscriptV0
	// LoadStatus is the decision the dispatcher recorded on the load, empty
	// when neither status tool was invoked.
	LoadStatus string
	// TeardownFailures lists the roles whose session close failed. Teardown
	// failures never fail the call.
	TeardownFailures []string
}

// Scheduler drives one simulated call: it resolves metadata, starts both
// agent sessions, lets the dispatcher open, then alternates turns until a
// conclusion signal, the safety ceiling, or a failure ends the call.
// Teardown runs on every exit path.
//
// A Scheduler is single-use; create a new one per call.
type Scheduler struct {
	state        *CallState
	resolver     MetadataResolver
	factory      SessionFactory
	detector     completionDetector
	tools        []llms.Tool
	pacing       time.Duration
	ceiling      time.Duration
	maxTurns     int
	onEvent      func(event events.Event)
	room         any
	participants ParticipantLister

	phase          Phase
	turns          int
	explicitEnd    bool
	endSummary     string
	loadStatus     string
	teardownOnce   sync.Once
	closedFailures []string
}

type SchedulerOption func(*Scheduler)

// WithMetadataResolver sets the resolver consulted before sessions start.
// Without one the call runs on default prompts.
func WithMetadataResolver(resolver MetadataResolver) SchedulerOption {
	return func(s *Scheduler) { s.resolver = resolver }
}

func WithSessionFactory(factory SessionFactory) SchedulerOption {
	return func(s *Scheduler) { s.factory = factory }
}

// WithRoom records the hosting room reference on the call state for
// introspection.
func WithRoom(room any) SchedulerOption {
	return func(s *Scheduler) { s.room = room }
}

// WithParticipantLister logs the room's membership when the call starts.
func WithParticipantLister(lister ParticipantLister) SchedulerOption {
	return func(s *Scheduler) { s.participants = lister }
}

// WithCompletionOptions tunes the textual conclusion heuristic.
func WithCompletionOptions(opts ...CompletionOption) SchedulerOption {
	return func(s *Scheduler) { s.detector = newCompletionDetector(opts...) }
}

// WithCallTools adds tools exposed to both agent sessions alongside the
// built-in end-of-call tool.
func WithCallTools(tools ...llms.Tool) SchedulerOption {
	return func(s *Scheduler) { s.tools = append(s.tools, tools...) }
}

// WithTurnPacing sets the pause between consecutive turns.
func WithTurnPacing(pacing time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if pacing >= 0 {
			s.pacing = pacing
		}
	}
}

// WithSafetyCeiling bounds the conversation's duration, measured from the
// opening turn. Crossing it forces teardown regardless of progress.
func WithSafetyCeiling(ceiling time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if ceiling > 0 {
			s.ceiling = ceiling
		}
	}
}

// WithMaxTurns bounds the total number of recorded utterances, the opening
// turn included. Exhausting it ends the call the same way the safety
// ceiling does.
func WithMaxTurns(turns int) SchedulerOption {
	return func(s *Scheduler) {
		if turns > 0 {
			s.maxTurns = turns
		}
	}
}

// WithEventCallback registers an observer for lifecycle events. The
// callback runs inline on the scheduler's goroutine.
func WithEventCallback(onEvent func(event events.Event)) SchedulerOption {
	return func(s *Scheduler) { s.onEvent = onEvent }
}

// NewScheduler creates a scheduler for one call around the given state.
func NewScheduler(state *CallState, opts ...SchedulerOption) *Scheduler {
	scheduler := &Scheduler{
		state:    state,
		detector: newCompletionDetector(),
		pacing:   defaultTurnPacing,
		ceiling:  defaultSafetyCeiling,
		maxTurns: defaultMaxTurns,
		phase:    PhaseInit,
	}
	for _, opt := range opts {
		opt(scheduler)
	}
	return scheduler
}

// Phase returns the scheduler's current lifecycle phase.
func (s *Scheduler) Phase() Phase {
	return s.phase
}

// Run drives the call to completion. The returned Outcome carries the
// terminal phase, the turn count, and the final transcript; err is non-nil
// only for the FAILED phase. Session teardown has already run by the time
// Run returns, whatever the exit path.
func (s *Scheduler) Run(ctx context.Context, attachedMetadata string) (Outcome, error) {
	callID := s.state.CallID()

	ctx, span := tracer.Start(ctx, "run call")
	defer span.End()
	span.SetAttributes(attribute.String("call.id", callID))

	if s.factory == nil {
		return s.fail(ctx, span, fmt.Errorf("no session factory configured"))
	}

	s.emit(events.NewCallStarted(callID))

	s.phase = PhaseResolvingMetadata
	var metadata rooms.RoomMetadata
	if s.resolver != nil {
		metadata = s.resolver.Resolve(ctx, callID, attachedMetadata)
	}
	degraded := metadata.IsEmpty()
	if degraded {
		logger.Warn("Running call with default configuration", "call", callID)
	}
	s.emit(events.NewCallMetadataResolved(callID, degraded))
	cfg := newCallConfig(metadata)

	s.phase = PhaseStartingSessions
	s.state.Reset()
	if s.room != nil {
		s.state.SetRoom(s.room)
	}
	if s.participants != nil {
		participants, err := s.participants.ListParticipants(ctx, callID)
		if err != nil {
			logger.Warn("Failed to list room participants", "call", callID, "error", err)
		} else {
			identities := make([]string, 0, len(participants))
			for _, participant := range participants {
				identities = append(identities, participant.Identity)
			}
			logger.Info("Room membership at call start", "call", callID, "participants", identities)
		}
	}
	agents := map[sessions.Role]Session{}
	for _, role := range sessions.Roles() {
		tools := append([]llms.Tool{s.endConversationTool(ctx)}, s.tools...)
		if role == sessions.RoleDispatcher {
			tools = append(tools, s.loadTools(cfg)...)
		}
		session, err := s.factory.StartSession(ctx, role, cfg.label(role), tools)
		if err != nil {
			return s.fail(ctx, span, fmt.Errorf("starting %s session: %w", role, err))
		}
		agents[role] = session
		s.state.SetSessionHandle(role, session)
	}

	s.phase = PhaseOpeningTurn
	if err := s.takeTurn(ctx, agents[sessions.RoleDispatcher], cfg, openingDirective); err != nil {
		return s.fail(ctx, span, err)
	}
	deadline := time.Now().Add(s.ceiling)

	s.phase = PhaseAlternating
	next := sessions.RoleDriver
	for {
		if s.state.IsConcluded() {
			return s.conclude(ctx, callID), nil
		}
		if time.Now().After(deadline) || s.turns >= s.maxTurns {
			return s.timeOut(ctx, callID), nil
		}

		if s.pacing > 0 {
			select {
			case <-ctx.Done():
				return s.fail(ctx, span, ctx.Err())
			case <-s.state.Done():
				continue
			case <-time.After(s.pacing):
			}
		}

		if err := s.takeTurn(ctx, agents[next], cfg, continueDirective); err != nil {
			return s.fail(ctx, span, err)
		}
		next = next.Other()
	}
}

// takeTurn runs one generation for the given session, records the utterance
// and applies the textual conclusion heuristic. A generation failure is
// fatal to the call.
func (s *Scheduler) takeTurn(ctx context.Context, session Session, cfg callConfig, directive string) error {
	s.turns++
	turn := s.turns
	role := session.Role()
	speaker := session.SpeakerLabel()

	ctx, span := tracer.Start(ctx, "take turn")
	defer span.End()
	span.SetAttributes(
		attribute.String("turn.speaker", speaker),
		attribute.Int("turn.number", turn),
	)

	s.emit(events.NewTurnStarted(speaker, turn))

	agent := cfg.agent(role)
	instructions := buildInstructions(role, agent.Prompt, agent.ActingNotes, cfg.scenarioText, s.state.FormatContext())

	utterance, err := session.GenerateReply(ctx, instructions, directive)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "turn generation failed")
		s.emit(events.NewTurnFailed(speaker, turn, err.Error()))
		return fmt.Errorf("generating turn %d for %s: %w", turn, speaker, err)
	}

	// The end-of-call tool may fire without any spoken reply.
	if utterance != "" {
		s.state.AppendMessage(speaker, utterance)
	}
	s.emit(events.NewTurnCompleted(speaker, turn, utterance))

	if !s.state.IsConcluded() && utterance != "" && s.detector.ShouldConclude(utterance) {
		logger.Info("Conversation concluded by closing line", "speaker", speaker, "turn", turn)
		s.state.SetConcluded(true)
	}
	return nil
}

func (s *Scheduler) conclude(ctx context.Context, callID string) Outcome {
	s.phase = PhaseConcluded
	s.teardown(ctx)
	s.emit(events.NewConversationConcluded(callID, s.turns, s.explicitEnd, s.endSummary))
	logger.Info("Call concluded", "call", callID, "turns", s.turns, "explicit", s.explicitEnd)
	return s.outcome()
}

func (s *Scheduler) timeOut(ctx context.Context, callID string) Outcome {
	s.phase = PhaseTimedOut
	s.teardown(ctx)
	s.emit(events.NewConversationTimedOut(callID, s.turns))
	logger.Warn("Call forced to end by safety bound", "call", callID, "turns", s.turns)
	return s.outcome()
}

func (s *Scheduler) fail(ctx context.Context, span trace.Span, err error) (Outcome, error) {
	s.phase = PhaseFailed
	s.teardown(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, "call failed")
	logger.Error("Call failed", "call", s.state.CallID(), "error", err)
	return s.outcome(), err
}

// teardown disconnects both sessions. It runs at most once per call; the
// end-of-call tool and the run loop's exit paths can both reach it.
func (s *Scheduler) teardown(ctx context.Context) {
	s.teardownOnce.Do(func() {
		failures := []string{}
		for _, result := range s.state.DisconnectAll(ctx) {
			if result.Err != nil {
				failures = append(failures, string(result.Role))
			}
		}
		s.closedFailures = failures
		s.emit(events.NewSessionsClosed(s.state.CallID(), failures))
	})
}

func (s *Scheduler) outcome() Outcome {
	return Outcome{
		Phase:            s.phase,
		Turns:            s.turns,
		Transcript:       s.state.Transcript(),
		LoadStatus:       s.loadStatus,
		TeardownFailures: s.closedFailures,
	}
}

func (s *Scheduler) emit(event events.Event) {
	if s.onEvent != nil {
		s.onEvent(event)
	}
}
