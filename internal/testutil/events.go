package testutil

import (
	"sync"

	"github.com/mcoot/tilekeeper/internal/model"
)

// EventRecorder collects published events
type EventRecorder struct {
	mu     sync.Mutex
	events []model.Event
}

// Publish records the event
func (r *EventRecorder) Publish(event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns everything published so far
func (r *EventRecorder) Events() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Event(nil), r.events...)
}

// Types returns the types of everything published so far
func (r *EventRecorder) Types() []model.EventType {
	var types []model.EventType
	for _, e := range r.Events() {
		types = append(types, e.Type)
	}
	return types
}

// Reset forgets recorded events
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
