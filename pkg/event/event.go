// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Common event types
const (
	SimulationStarted Type = "simulation_started"
	SimulationStopped Type = "simulation_stopped"
	VesselRegistered  Type = "vessel_registered"
	TargetAssigned    Type = "target_assigned"
	VesselArrived     Type = "vessel_arrived"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler so it can be removed later.
type Subscription uint64

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type]map[Subscription]Handler
	nextSub  Subscription
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type]map[Subscription]Handler),
	}
}

// Subscribe registers a handler for a specific event type and returns a
// subscription token for later removal.
func (b *Bus) Subscribe(eventType Type, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSub++
	sub := b.nextSub
	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[Subscription]Handler)
	}
	b.handlers[eventType][sub] = handler
	return sub
}

// Unsubscribe removes a previously registered handler.
func (b *Bus) Unsubscribe(eventType Type, sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if handlers, ok := b.handlers[eventType]; ok {
		delete(handlers, sub)
	}
}

// Publish sends an event to all subscribed handlers. Handlers run on the
// publisher's goroutine, so they should be quick and must not block.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[event.GetType()]))
	for _, h := range b.handlers[event.GetType()] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// VesselEvent contains information about vessel lifecycle events
type VesselEvent struct {
	BaseEvent
	VesselID string
}

// NewVesselEvent creates a new vessel event
func NewVesselEvent(eventType Type, source interface{}, vesselID string) *VesselEvent {
	return &VesselEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		VesselID: vesselID,
	}
}

// TargetEvent contains information about a target assignment
type TargetEvent struct {
	BaseEvent
	VesselID string
	X        float64
	Y        float64
}

// NewTargetEvent creates a new target assignment event
func NewTargetEvent(source interface{}, vesselID string, x, y float64) *TargetEvent {
	return &TargetEvent{
		BaseEvent: BaseEvent{
			EventType: TargetAssigned,
			Source:    source,
		},
		VesselID: vesselID,
		X:        x,
		Y:        y,
	}
}
