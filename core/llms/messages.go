package llms

// Response is a single response from an LLM.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// Turn is a single turn taken in the conversation.
type Turn struct {
	Role TurnRole

	// Content is the content of the turn.
	// In the user's turn it is the counterpart's utterance,
	// in the assistant's turn it is the generated response.
	Content   string
	ToolCalls []ToolCall
}

// ToolCall records one tool invocation requested by the model, together with
// the response produced by executing it.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
	Response  string
}

type MessageRole string

const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleTool      MessageRole = "tool"
)

type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)
