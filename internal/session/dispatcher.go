package session

import (
	"sync"

	"github.com/sparkrunner/portal/internal/client"
)

var _ client.UnauthorizedNotifier = (*Dispatcher)(nil)

// Dispatcher delivers unauthorized events to at most one handler.
// Registering a handler replaces the previous one.
type Dispatcher struct {
	mu      sync.RWMutex
	handler func()
}

// NewDispatcher creates a dispatcher with no handler registered.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register sets the handler, replacing any earlier one. A nil handler
// clears the slot.
func (d *Dispatcher) Register(handler func()) {
	d.mu.Lock()
	d.handler = handler
	d.mu.Unlock()
}

// NotifyUnauthorized calls the registered handler synchronously.
func (d *Dispatcher) NotifyUnauthorized() {
	d.mu.RLock()
	handler := d.handler
	d.mu.RUnlock()

	if handler != nil {
		handler()
	}
}
