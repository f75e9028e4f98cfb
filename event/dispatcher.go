package event

import (
	"context"
	"sync"
)

// Handler is a listener attached to a named topic. Handlers run synchronously
// in attachment order and share the same event context.
type Handler func(ctx context.Context, e *Event) error

// Dispatcher maps topic names to their ordered handler chains.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]Handler),
	}
}

// Attach appends a handler to the topic's chain. Attachment order is the
// invocation order.
func (d *Dispatcher) Attach(topic string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[topic] = append(d.handlers[topic], handler)
}

// Trigger invokes every handler attached to topic, in order, passing the same
// event context to each. The first handler error aborts the chain and is
// returned as-is. A topic without handlers is a successful no-op.
func (d *Dispatcher) Trigger(ctx context.Context, topic string, e *Event) error {
	d.mu.RLock()
	chain := make([]Handler, len(d.handlers[topic]))
	copy(chain, d.handlers[topic])
	d.mu.RUnlock()

	e.Name = topic

	for _, handler := range chain {
		if err := handler(ctx, e); err != nil {
			return err
		}
	}

	return nil
}

// Listeners returns the number of handlers attached to topic.
func (d *Dispatcher) Listeners(topic string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.handlers[topic])
}
