package service

import (
	"sync"

	"github.com/google/uuid"
)

// AuthEventPasswordRecovery is pushed when the user follows an emailed
// password-reset link, telling open reset views to switch into
// password-update mode.
const AuthEventPasswordRecovery = "PASSWORD_RECOVERY"

// AuthEvent is an auth-state change pushed to connected clients.
type AuthEvent struct {
	Type string
}

// AuthEventBroadcaster fans auth-state events out to subscribed SSE
// connections. Sends never block: a subscriber that cannot keep up misses
// events rather than stalling the broadcast.
type AuthEventBroadcaster struct {
	mu   sync.RWMutex
	subs map[string]chan AuthEvent
}

// NewAuthEventBroadcaster creates an empty broadcaster.
func NewAuthEventBroadcaster() *AuthEventBroadcaster {
	return &AuthEventBroadcaster{subs: make(map[string]chan AuthEvent)}
}

// Subscribe registers a new listener and returns its ID and event channel.
// The caller must Unsubscribe with the same ID when done.
func (b *AuthEventBroadcaster) Subscribe() (string, <-chan AuthEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan AuthEvent, 8)
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (b *AuthEventBroadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Broadcast delivers the event to every subscriber without blocking.
func (b *AuthEventBroadcaster) Broadcast(event AuthEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
