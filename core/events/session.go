package events

const (
	// KindSessionsClosed identifies completed teardown.
	KindSessionsClosed Kind = "session.closed"
)

// SessionsClosed marks teardown completion. Failures lists the roles whose
// close did not succeed; a failure on one never prevents closing the other.
type SessionsClosed struct {
	Base
	CallID   string
	Failures []string
}

// NewSessionsClosed creates a sessions closed event.
func NewSessionsClosed(callID string, failures []string) SessionsClosed {
	return SessionsClosed{Base: NewBase(KindSessionsClosed), CallID: callID, Failures: failures}
}
