package orchestration

import (
	"context"

	"github.com/freightsim/callsim-core/core/llms"
)

type markLoadParams struct {
	// Note is an optional remark recorded alongside the status change.
	Note string `json:"note,omitempty" jsonschema:"description=Optional remark about the decision"`
}

// loadTools are the dispatcher's TMS-facing tools: looking up the load under
// discussion and recording the driver's decision on it.
func (s *Scheduler) loadTools(cfg callConfig) []llms.Tool {
	return []llms.Tool{
		llms.NewTool(
			"get_load_details",
			"Look up the full details of the load being discussed on this call.",
			nil,
			func(struct{}) (string, error) {
				if cfg.scenarioText == "" {
					return "No load details are on file for this call.", nil
				}
				return cfg.scenarioText, nil
			},
		),
		llms.NewTool(
			"mark_load_accepted",
			"Record in the TMS that the driver accepted the load.",
			nil,
			func(params markLoadParams) (string, error) {
				s.loadStatus = LoadStatusAccepted
				logger.Info("Load marked accepted", "call", s.state.CallID(), "note", params.Note)
				return "Load marked as accepted.", nil
			},
		),
		llms.NewTool(
			"mark_load_rejected",
			"Record in the TMS that the driver turned the load down.",
			nil,
			func(params markLoadParams) (string, error) {
				s.loadStatus = LoadStatusRejected
				logger.Info("Load marked rejected", "call", s.state.CallID(), "note", params.Note)
				return "Load marked as rejected.", nil
			},
		),
	}
}

type endConversationParams struct {
	// Summary is an optional one-line description of how the call ended.
	Summary string `json:"summary,omitempty" jsonschema:"description=Optional one-line summary of how the call ended"`
}

// endConversationTool is the explicit end-of-call signal exposed to both
// agents. Invoking it is authoritative: the conversation latches concluded
// and both sessions are torn down immediately, wherever in the turn
// sequence it fires.
func (s *Scheduler) endConversationTool(ctx context.Context) llms.Tool {
	return llms.NewTool(
		"end_conversation",
		"End the phone call. Use this once the conversation has naturally wrapped up and there is nothing left to say.",
		nil,
		func(params endConversationParams) (string, error) {
			logger.Info("Conversation ended by tool call", "call", s.state.CallID(), "summary", params.Summary)

			s.explicitEnd = true
			s.endSummary = params.Summary
			s.state.SetConcluded(true)
			s.teardown(ctx)

			return "The call has ended. Do not reply further.", nil
		},
	)
}
