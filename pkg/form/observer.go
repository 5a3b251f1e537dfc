package form

import (
	"context"
	"time"
)

// EventType names a lifecycle outcome.
type EventType string

// Lifecycle event types.
const (
	EventLoad     EventType = "load"
	EventSave     EventType = "save"
	EventDelete   EventType = "delete"
	EventReset    EventType = "reset"
	EventCancel   EventType = "cancel"
	EventDeferred EventType = "deferred"
)

// Event describes one completed lifecycle operation.
type Event struct {
	Type      EventType `json:"type"`
	Operation string    `json:"operation,omitempty"`
	State     State     `json:"state"`
	Succeeded bool      `json:"succeeded"`
	Exception bool      `json:"exception"`
	Message   string    `json:"message,omitempty"`
	Errors    []string  `json:"errors,omitempty"`
	Err       error     `json:"-"`
	Time      time.Time `json:"time"`
}

// Observer receives lifecycle events after the matching hooks ran.
type Observer interface {
	Notify(ctx context.Context, event Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, event Event)

// Notify calls f.
func (f ObserverFunc) Notify(ctx context.Context, event Event) {
	f(ctx, event)
}
