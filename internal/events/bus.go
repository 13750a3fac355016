package events

import "sync"

// SyncNotice tells interested UI that one entity's sync state changed,
// so it can refresh that entity without a full reload.
type SyncNotice struct {
	EntityType string
	EntityID   string
}

// Bus is a broadcast channel for sync notices. Publish never blocks:
// a subscriber that has fallen behind misses the notice.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan SyncNotice
	next int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan SyncNotice)}
}

// Subscribe registers a listener and returns its channel plus a cancel
// function. The channel is buffered; it is closed by cancel.
func (b *Bus) Subscribe() (<-chan SyncNotice, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan SyncNotice, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish broadcasts a notice to every subscriber without blocking.
func (b *Bus) Publish(notice SyncNotice) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- notice:
		default:
		}
	}
}
