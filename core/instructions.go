package orchestration

import (
	"strings"

	"github.com/freightsim/callsim-core/core/sessions"
)

const (
	openingDirective  = "Start the conversation with a friendly greeting."
	continueDirective = "Continue the phone call with your next reply."
)

// buildInstructions composes the per-turn system prompt for one role. It is
// a pure function of its inputs; the conversation history arrives already
// formatted so the same inputs always produce the same prompt.
func buildInstructions(role sessions.Role, basePrompt string, actingNotes string, scenario string, history string) string {
	counterpart := role.Other().DefaultSpeakerLabel()

	sections := []string{
		basePrompt,
		"You are on a simulated phone call with a " + strings.ToLower(counterpart) + " about a load assignment.",
	}
	if scenario != "" {
		sections = append(sections, "Details of the load being discussed:\n"+scenario)
	}
	if actingNotes != "" {
		sections = append(sections, "Acting notes for this call:\n"+actingNotes)
	}
	sections = append(sections,
		history,
		"Keep replies natural, brief, and conversational, like a real phone call. Do not include stage directions or speaker labels.",
		"When the call has naturally wrapped up, call the end_conversation tool instead of replying again.",
	)

	return strings.Join(sections, "\n\n")
}
