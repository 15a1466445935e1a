// Package changelog provides an optional, best-effort activity feed for
// document mutations, mirroring the teacher lineage's pattern of
// publishing an activity log entry for every storage write. It is
// never on the critical path of Set/Delete's atomicity (§4.4): a
// publish failure is logged and swallowed, never returned to the
// caller.
package changelog

// Op identifies which DocStore operation produced an Event.
type Op string

const (
	OpSet    Op = "set"
	OpDelete Op = "delete"
)

// Event describes one committed document mutation.
type Event struct {
	DocID string
	Op    Op
	Body  any // nil for OpDelete
}

// Publisher is notified of committed mutations. Implementations must
// not block the caller for long and must not panic.
type Publisher interface {
	Publish(Event)
}

// Noop is a Publisher that does nothing. It is the default publisher
// used when none is configured.
var Noop Publisher = noopPublisher{}

type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
