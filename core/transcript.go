package orchestration

import (
	"time"

	"github.com/jinzhu/copier"
)

// TranscriptV0 is a point-in-time export of the conversation history.
type TranscriptV0 struct {
	Messages     []Message `json:"messages"`
	RecordedAt   time.Time `json:"recordedAt"`
	MessageCount int       `json:"messageCount"`
}

// Transcript exports the current history as a detached transcript. The
// returned value shares nothing with the live state.
func (s *CallState) Transcript() TranscriptV0 {
	messages := s.Messages()

	transcript := TranscriptV0{
		RecordedAt:   time.Now(),
		MessageCount: len(messages),
	}
	if err := copier.Copy(&transcript.Messages, messages); err != nil {
		logger.Warn("Failed to copy transcript messages", "error", err)
		transcript.Messages = messages
	}
	if transcript.Messages == nil {
		transcript.Messages = []Message{}
	}
	return transcript
}
