package api

import "time"

// EventType names a registry lifecycle event.
type EventType string

const (
	EventToolRegistered     EventType = "tool_registered"
	EventToolExecuted       EventType = "tool_executed"
	EventToolFailed         EventType = "tool_failed"
	EventToolUnregistered   EventType = "tool_unregistered"
	EventPromptRegistered   EventType = "prompt_registered"
	EventPromptExecuted     EventType = "prompt_executed"
	EventPromptFailed       EventType = "prompt_failed"
	EventPromptUnregistered EventType = "prompt_unregistered"
	EventRegistryCleared    EventType = "registry_cleared"
)

// RegisteredEvent returns the registration event for t.
func RegisteredEvent(t EntryType) EventType {
	if t == EntryTypePrompt {
		return EventPromptRegistered
	}
	return EventToolRegistered
}

// ExecutedEvent returns the successful execution event for t.
func ExecutedEvent(t EntryType) EventType {
	if t == EntryTypePrompt {
		return EventPromptExecuted
	}
	return EventToolExecuted
}

// FailedEvent returns the failed execution event for t.
func FailedEvent(t EntryType) EventType {
	if t == EntryTypePrompt {
		return EventPromptFailed
	}
	return EventToolFailed
}

// UnregisteredEvent returns the removal event for t.
func UnregisteredEvent(t EntryType) EventType {
	if t == EntryTypePrompt {
		return EventPromptUnregistered
	}
	return EventToolUnregistered
}

// Event is delivered synchronously to every listener.
type Event struct {
	Type      EventType `json:"type"`
	Name      string    `json:"name,omitempty"`
	EntryType EntryType `json:"entryType,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	// Context is set for execution events.
	Context *ExecutionContext `json:"context,omitempty"`

	// Duration is the handler run time for execution events.
	Duration time.Duration `json:"duration,omitempty"`

	// Error carries the handler or validation failure for *_failed events.
	Error string `json:"error,omitempty"`
}

// EventListener observes registry events. Listeners are compared by identity
// on removal, so implementations should be pointer types.
type EventListener interface {
	OnRegistryEvent(event Event)
}

// ListenerFunc adapts a function to EventListener.
type ListenerFunc struct {
	fn func(Event)
}

// NewListener wraps fn. Keep the returned pointer to remove the listener later.
func NewListener(fn func(Event)) *ListenerFunc {
	return &ListenerFunc{fn: fn}
}

// OnRegistryEvent implements EventListener.
func (l *ListenerFunc) OnRegistryEvent(event Event) {
	if l.fn != nil {
		l.fn(event)
	}
}
