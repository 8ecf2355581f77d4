// Package events defines the typed call lifecycle event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - call.*
//   - turn_state.*
//   - conversation.*
//   - session.*
//
// call events
//
//   - CallStarted (call.started): the scheduler picked up a call.
//   - CallMetadataResolved (call.metadata_resolved): configuration resolution
//     finished; Degraded marks the built-in-defaults fallback.
//
// turn_state events
//
//   - TurnStarted (turn_state.started): one role began generating.
//   - TurnCompleted (turn_state.completed): the utterance was recorded.
//   - TurnFailed (turn_state.failed): generation failed; the call aborts.
//
// conversation events
//
//   - ConversationConcluded (conversation.concluded): a conclusion signal
//     (explicit or heuristic) ended the call.
//   - ConversationTimedOut (conversation.timed_out): the safety ceiling or
//     turn bound forced the call to end.
//
// session events
//
//   - SessionsClosed (session.closed): teardown ran; Failures carries the
//     per-role close outcomes that did not succeed.
package events
