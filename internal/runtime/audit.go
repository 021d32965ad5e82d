package runtime

import (
	"sync"
	"time"
)

// AuditEvent is one structured entry in the runtime's audit trail: a
// mission block or completion, never a per-node trace (that's what the
// execution-event stream is for).
type AuditEvent struct {
	TaskID    string
	Kind      string // "blocked" or "completed"
	Reason    string
	Timestamp time.Time
}

// AuditLog accumulates events for a single runtime instance's lifetime.
type AuditLog struct {
	mu     sync.Mutex
	events []AuditEvent
}

// NewAuditLog returns an empty log.
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// Append records an event.
func (a *AuditLog) Append(e AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

// Events returns a snapshot of recorded events.
func (a *AuditLog) Events() []AuditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]AuditEvent, len(a.events))
	copy(out, a.events)
	return out
}
