package events

import "sync"

// Reason says why session metadata changed
type Reason string

const (
	// ReasonFirstTurn fires once the first turn of a new session is delivered
	ReasonFirstTurn Reason = "first_turn"
	// ReasonTitleChanged fires on a title_update frame
	ReasonTitleChanged Reason = "title_changed"
)

// SessionEvent tells listeners that a session list entry is stale
type SessionEvent struct {
	SessionID string
	Reason    Reason
	Title     string
}

// Bus is a synchronous fan-out of session events.
// Subscribers run on the publishing goroutine and must not block.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]func(SessionEvent)
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]func(SessionEvent))}
}

// Subscribe registers fn and returns a function that removes it
func (b *Bus) Subscribe(fn func(SessionEvent)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers ev to every subscriber
func (b *Bus) Publish(ev SessionEvent) {
	if b == nil {
		return
	}
	b.mu.RLock()
	fns := make([]func(SessionEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Len returns the number of subscribers
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
