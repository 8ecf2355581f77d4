package events

const (
	// KindCallStarted identifies the scheduler picking up a call.
	KindCallStarted Kind = "call.started"
	// KindCallMetadataResolved identifies the end of metadata resolution.
	KindCallMetadataResolved Kind = "call.metadata_resolved"
)

// CallStarted marks the scheduler picking up a call.
type CallStarted struct {
	Base
	CallID string
}

// NewCallStarted creates a call started event.
func NewCallStarted(callID string) CallStarted {
	return CallStarted{Base: NewBase(KindCallStarted), CallID: callID}
}

// CallMetadataResolved marks the end of configuration resolution.
type CallMetadataResolved struct {
	Base
	CallID string
	// Degraded is true when resolution exhausted its attempts and the call
	// proceeds on built-in default prompts.
	Degraded bool
}

// NewCallMetadataResolved creates a metadata resolved event.
func NewCallMetadataResolved(callID string, degraded bool) CallMetadataResolved {
	return CallMetadataResolved{Base: NewBase(KindCallMetadataResolved), CallID: callID, Degraded: degraded}
}
