package shop

import (
	"sync"
	"time"
)

// EventType represents the type of registry event.
type EventType int

const (
	// EventRegistered is emitted when a shop definition is accepted.
	EventRegistered EventType = iota
	// EventRefreshed is emitted after a shop's listing is replaced.
	EventRefreshed
	// EventOpened is emitted when a shop opens.
	EventOpened
	// EventClosed is emitted when an open request is refused by the shop's condition.
	EventClosed
)

// String returns a human-readable representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventRegistered:
		return "Registered"
	case EventRefreshed:
		return "Refreshed"
	case EventOpened:
		return "Opened"
	case EventClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Event describes something that happened to one shop.
type Event struct {
	Type      EventType `json:"type"`
	Shop      *Shop     `json:"shop"`
	Timestamp time.Time `json:"timestamp"`
}

// EventBus manages event subscriptions and delivery.
type EventBus interface {
	// Subscribe registers a handler under a subscriber id.
	Subscribe(id string, handler func(Event))

	// Unsubscribe removes the handler for an id.
	Unsubscribe(id string)

	// Publish sends an event to subscribed handlers.
	Publish(event Event)
}

// SimpleEventBus is a basic in-memory event bus implementation.
type SimpleEventBus struct {
	mu       sync.RWMutex
	handlers map[string]func(Event)
}

// NewSimpleEventBus creates an empty event bus.
func NewSimpleEventBus() *SimpleEventBus {
	return &SimpleEventBus{handlers: make(map[string]func(Event))}
}

// Subscribe registers a handler under a subscriber id.
func (bus *SimpleEventBus) Subscribe(id string, handler func(Event)) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[id] = handler
}

// Unsubscribe removes the handler for an id.
func (bus *SimpleEventBus) Unsubscribe(id string) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.handlers, id)
}

// Publish sends an event to every subscriber.
// Handlers are called asynchronously in separate goroutines to prevent blocking.
func (bus *SimpleEventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	for _, handler := range bus.handlers {
		go handler(event)
	}
}

// NullEventBus is an event bus that does nothing.
type NullEventBus struct{}

// Subscribe does nothing.
func (NullEventBus) Subscribe(string, func(Event)) {}

// Unsubscribe does nothing.
func (NullEventBus) Unsubscribe(string) {}

// Publish does nothing.
func (NullEventBus) Publish(Event) {}
