// Package connectivity tracks the device's last known network state.
// The only two signals are "a request succeeded" and "a request failed with
// a transport-level error"; anything smarter belongs elsewhere.
package connectivity

import (
	"log/slog"
	"sync"
)

// Tracker records online/offline transitions. Reports are idempotent:
// repeating the current state is a no-op.
type Tracker struct {
	mu       sync.Mutex
	online   bool
	known    bool
	onChange []func(online bool)
}

// NewTracker creates a tracker with no known state. Online() is optimistic
// until the first report arrives.
func NewTracker() *Tracker {
	return &Tracker{}
}

// OnChange registers a callback invoked on every state transition.
// Callbacks run synchronously under the report call.
func (t *Tracker) OnChange(fn func(online bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = append(t.onChange, fn)
}

// ReportRestored records that a request reached the server.
func (t *Tracker) ReportRestored() {
	t.report(true)
}

// ReportLoss records a transport-level failure.
func (t *Tracker) ReportLoss() {
	t.report(false)
}

// Online returns the last known state, defaulting to true before any report.
func (t *Tracker) Online() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.known {
		return true
	}
	return t.online
}

func (t *Tracker) report(online bool) {
	t.mu.Lock()
	if t.known && t.online == online {
		t.mu.Unlock()
		return
	}
	t.known = true
	t.online = online
	callbacks := make([]func(bool), len(t.onChange))
	copy(callbacks, t.onChange)
	t.mu.Unlock()

	if online {
		slog.Debug("connectivity restored")
	} else {
		slog.Debug("connectivity lost")
	}
	for _, fn := range callbacks {
		fn(online)
	}
}
