package events

import "time"

// Kind is the namespaced identifier of a call lifecycle event, e.g.
// "turn_state.completed". The namespaces are documented in doc.go.
type Kind string

// Event is the contract every call lifecycle event satisfies. Consumers
// switch on Kind and assert to the concrete type for the payload.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base carries the kind and emission time shared by every event; concrete
// events embed it and add their payload fields.
type Base struct {
	kind      Kind
	timestamp time.Time
}

// NewBase stamps an event with its kind and the current time.
func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}
