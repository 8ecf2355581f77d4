package orchestration

import (
	"context"
	"fmt"
	"sync"

	"github.com/freightsim/callsim-core/core/sessions"
	"github.com/google/uuid"
)

const messagePreviewLength = 100

// emptyHistoryPlaceholder is what FormatContext returns before the first
// utterance is recorded.
const emptyHistoryPlaceholder = "No previous messages in this conversation yet."

// Message is one recorded utterance. Speaker labels are free-form display
// names; insertion order is conversation order.
type Message struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// SessionHandle is the non-owning reference CallState keeps per role, used
// solely to request teardown.
type SessionHandle interface {
	Close(ctx context.Context) error
}

// DisconnectResult is the per-handle outcome of DisconnectAll.
type DisconnectResult struct {
	Role sessions.Role
	Err  error
}

// CallState is the shared conversation state for one call. Both agent
// sessions and the scheduler mutate it; every access is serialized through a
// single lock, so no field is ever observed half-updated.
//
// CallState is constructed per call and passed by reference; concurrent
// calls each get their own instance.
type CallState struct {
	mu sync.Mutex

	callID      string
	concluded   bool
	concludedCh chan struct{}
	handles     map[sessions.Role]SessionHandle
	room        any
	messages    []Message
}

// NewCallState creates state for one call. An empty callID is replaced with
// a generated one.
func NewCallState(callID string) *CallState {
	if callID == "" {
		callID = uuid.NewString()
	}

	return &CallState{
		callID:      callID,
		concludedCh: make(chan struct{}),
		handles:     map[sessions.Role]SessionHandle{},
	}
}

func (s *CallState) CallID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callID
}

// Reset clears the state for a new conversation: conclusion flag, both
// session handles, the room reference and the message history. The
// conclusion latch is re-armed.
func (s *CallState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.concluded {
		s.concludedCh = make(chan struct{})
	}
	s.concluded = false
	s.handles = map[sessions.Role]SessionHandle{}
	s.room = nil
	s.messages = nil
}

// SetConcluded latches the conversation as concluded. Within one
// conversation the flag is monotonic: setting false never un-latches, and
// setting true twice is a no-op. The first transition to true closes the
// Done channel.
func (s *CallState) SetConcluded(concluded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !concluded || s.concluded {
		return
	}

	s.concluded = true
	close(s.concludedCh)
}

func (s *CallState) IsConcluded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.concluded
}

// Done returns a channel closed when the conversation concludes. Reset
// re-arms it, so callers must re-fetch the channel after a reset.
func (s *CallState) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.concludedCh
}

// SetSessionHandle registers the opaque per-role session reference. The
// handle stays owned by the external agent runtime.
func (s *CallState) SetSessionHandle(role sessions.Role, handle SessionHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handles[role] = handle
}

func (s *CallState) SessionHandle(role sessions.Role) SessionHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handles[role]
}

// SetRoom stores an opaque reference to the hosting room, used only for
// introspection.
func (s *CallState) SetRoom(room any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = room
}

func (s *CallState) Room() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

// AppendMessage records one utterance at the end of the history.
func (s *CallState) AppendMessage(speaker string, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, Message{Speaker: speaker, Text: text})

	preview := text
	if runes := []rune(preview); len(runes) > messagePreviewLength {
		preview = string(runes[:messagePreviewLength])
	}
	logger.Debug("Message recorded", "call", s.callID, "speaker", speaker, "preview", preview)
}

// Messages returns a snapshot copy of the history; later appends do not
// mutate previously returned snapshots.
func (s *CallState) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]Message, len(s.messages))
	copy(messages, s.messages)
	return messages
}

// RecentMessages returns the last count entries, or fewer if the history is
// shorter.
func (s *CallState) RecentMessages(count int) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if count <= 0 || len(s.messages) == 0 {
		return nil
	}
	if count > len(s.messages) {
		count = len(s.messages)
	}

	messages := make([]Message, count)
	copy(messages, s.messages[len(s.messages)-count:])
	return messages
}

// FormatContext renders the history as a newline-delimited block suitable
// for embedding into an agent's instructions.
func (s *CallState) FormatContext() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) == 0 {
		return emptyHistoryPlaceholder
	}

	formatted := "Previous conversation:\n"
	for _, msg := range s.messages {
		formatted += "- " + msg.Speaker + ": " + msg.Text + "\n"
	}
	return formatted
}

// DisconnectAll closes every registered session handle. One handle failing
// to close never prevents attempting the other; per-handle outcomes are
// returned so operators can observe teardown health, but no failure is ever
// raised to the caller.
func (s *CallState) DisconnectAll(ctx context.Context) []DisconnectResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := []DisconnectResult{}
	for _, role := range sessions.Roles() {
		handle, ok := s.handles[role]
		if !ok || handle == nil {
			continue
		}

		err := closeHandle(ctx, handle)
		if err != nil {
			logger.Warn("Failed to close session", "call", s.callID, "role", role, "error", err)
		}
		results = append(results, DisconnectResult{Role: role, Err: err})
	}
	return results
}

func closeHandle(ctx context.Context, handle SessionHandle) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("session close panicked: %v", recovered)
		}
	}()

	return handle.Close(ctx)
}
