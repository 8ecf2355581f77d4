package events

const (
	// KindTurnStarted identifies one role beginning to generate.
	KindTurnStarted Kind = "turn_state.started"
	// KindTurnCompleted identifies a recorded utterance.
	KindTurnCompleted Kind = "turn_state.completed"
	// KindTurnFailed identifies a failed generation; the call aborts.
	KindTurnFailed Kind = "turn_state.failed"
)

// TurnStarted marks one role beginning to generate its utterance.
type TurnStarted struct {
	Base
	Speaker string
	Turn    int
}

// NewTurnStarted creates a turn started event.
func NewTurnStarted(speaker string, turn int) TurnStarted {
	return TurnStarted{Base: NewBase(KindTurnStarted), Speaker: speaker, Turn: turn}
}

// TurnCompleted marks an utterance recorded into the conversation history.
type TurnCompleted struct {
	Base
	Speaker string
	Turn    int
	Text    string
}

// NewTurnCompleted creates a turn completed event.
func NewTurnCompleted(speaker string, turn int, text string) TurnCompleted {
	return TurnCompleted{Base: NewBase(KindTurnCompleted), Speaker: speaker, Turn: turn, Text: text}
}

// TurnFailed marks a turn-generation failure. Generation failures are fatal
// to the call.
type TurnFailed struct {
	Base
	Speaker string
	Turn    int
	Error   string
}

// NewTurnFailed creates a turn failed event.
func NewTurnFailed(speaker string, turn int, err string) TurnFailed {
	return TurnFailed{Base: NewBase(KindTurnFailed), Speaker: speaker, Turn: turn, Error: err}
}
