package events

const (
	// KindConversationConcluded identifies a natural conclusion.
	KindConversationConcluded Kind = "conversation.concluded"
	// KindConversationTimedOut identifies a forced safety-bound exit.
	KindConversationTimedOut Kind = "conversation.timed_out"
)

// ConversationConcluded marks a conclusion signal ending the call.
type ConversationConcluded struct {
	Base
	CallID string
	Turns  int
	// Explicit is true when an agent invoked the end-of-call action, false
	// when the textual heuristic matched.
	Explicit bool
	Summary  string
}

// NewConversationConcluded creates a conversation concluded event.
func NewConversationConcluded(callID string, turns int, explicit bool, summary string) ConversationConcluded {
	return ConversationConcluded{Base: NewBase(KindConversationConcluded), CallID: callID, Turns: turns, Explicit: explicit, Summary: summary}
}

// ConversationTimedOut marks the safety ceiling (or turn bound) forcing the
// call to end without a conclusion signal.
type ConversationTimedOut struct {
	Base
	CallID string
	Turns  int
}

// NewConversationTimedOut creates a conversation timed out event.
func NewConversationTimedOut(callID string, turns int) ConversationTimedOut {
	return ConversationTimedOut{Base: NewBase(KindConversationTimedOut), CallID: callID, Turns: turns}
}
