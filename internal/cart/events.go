package cart

import (
	"sync"

	"backend/internal/models"
)

// CartChanged is published after every cart mutation and carries the
// full current cart, so surfaces can replace their view wholesale
// instead of patching it.
type CartChanged struct {
	Owner string
	Lines []models.CartLine
}

// LineAdded is published when a configured product is appended to a
// cart, carrying just the new line.
type LineAdded struct {
	Owner string
	Line  models.CartLine
}

// Bus is a typed in-process event bus. Producers publish without
// knowing their consumers; consumers register callbacks once at wiring
// time. Callbacks run synchronously on the publishing goroutine.
type Bus struct {
	mu        sync.RWMutex
	onChanged []func(CartChanged)
	onAdded   []func(LineAdded)
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) SubscribeCartChanged(fn func(CartChanged)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChanged = append(b.onChanged, fn)
}

func (b *Bus) SubscribeLineAdded(fn func(LineAdded)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onAdded = append(b.onAdded, fn)
}

func (b *Bus) PublishCartChanged(event CartChanged) {
	b.mu.RLock()
	subscribers := make([]func(CartChanged), len(b.onChanged))
	copy(subscribers, b.onChanged)
	b.mu.RUnlock()

	for _, fn := range subscribers {
		fn(event)
	}
}

func (b *Bus) PublishLineAdded(event LineAdded) {
	b.mu.RLock()
	subscribers := make([]func(LineAdded), len(b.onAdded))
	copy(subscribers, b.onAdded)
	b.mu.RUnlock()

	for _, fn := range subscribers {
		fn(event)
	}
}
