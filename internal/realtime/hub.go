// Package realtime fans task events out to clients watching a project.
// One logical channel exists per project id; a subscriber receives only
// events for channels it joined and nothing after it disconnects. Delivery
// is at-most-once: there is no acknowledgment, retry or replay, and a
// subscriber that cannot keep up has events dropped.
//
// The hub is a transport primitive, not a security boundary. Whether a user
// may join a channel is checked by the websocket handler against the access
// rules before Join is called.
package realtime

import (
	"encoding/json"
	"sync"
)

const (
	EventTaskCreated      = "task-created"
	EventTaskDeleted      = "task-deleted"
	EventTaskUpdated      = "task-updated"
	EventTaskStateChanged = "task-state-changed"
)

// Event is a single frame delivered to channel subscribers. Task carries
// the full task payload (with its embedded project reference) exactly as
// published, so receivers can update their view without a refetch.
type Event struct {
	Type    string          `json:"type"`
	Project uint            `json:"project,omitempty"`
	Task    json.RawMessage `json:"task,omitempty"`
	Message string          `json:"message,omitempty"`
}

type Subscriber struct {
	events chan Event
	done   chan struct{}
	once   sync.Once
}

// Events yields frames published to channels this subscriber joined.
func (s *Subscriber) Events() <-chan Event {
	return s.events
}

// Done is closed when the subscriber is disconnected from the hub.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// Send queues an event for this subscriber alone, outside channel fan-out.
// Connection-scoped frames go through here so they share the one delivery
// path with published events. Reports false when the buffer is full and the
// event was dropped.
func (s *Subscriber) Send(event Event) bool {
	select {
	case s.events <- event:
		return true
	default:
		return false
	}
}

type Hub struct {
	mu       sync.RWMutex
	channels map[uint]map[*Subscriber]bool
}

func NewHub() *Hub {
	return &Hub{
		channels: make(map[uint]map[*Subscriber]bool),
	}
}

// Subscribe registers a new connection with the hub. buffer bounds how many
// undelivered events the subscriber may hold before further ones are dropped.
func (h *Hub) Subscribe(buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = 16
	}
	return &Subscriber{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
}

func (h *Hub) Join(projectID uint, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.channels[projectID] == nil {
		h.channels[projectID] = make(map[*Subscriber]bool)
	}
	h.channels[projectID][sub] = true
}

func (h *Hub) Leave(projectID uint, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(projectID, sub)
}

// Joined reports whether the subscriber is currently in the channel.
func (h *Hub) Joined(projectID uint, sub *Subscriber) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.channels[projectID][sub]
}

// Disconnect removes the subscriber from every channel and signals Done.
// No events are delivered afterwards. Safe to call more than once.
func (h *Hub) Disconnect(sub *Subscriber) {
	h.mu.Lock()
	for projectID := range h.channels {
		h.removeLocked(projectID, sub)
	}
	h.mu.Unlock()

	sub.once.Do(func() {
		close(sub.done)
	})
}

// Publish fans the event out to every current subscriber of the channel
// except the sender, which already holds the state it published. A full
// subscriber buffer drops the event for that subscriber only.
func (h *Hub) Publish(projectID uint, sender *Subscriber, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.channels[projectID] {
		if sub == sender {
			continue
		}
		select {
		case sub.events <- event:
		default:
		}
	}
}

func (h *Hub) removeLocked(projectID uint, sub *Subscriber) {
	subs, ok := h.channels[projectID]
	if !ok {
		return
	}

	delete(subs, sub)

	if len(subs) == 0 {
		delete(h.channels, projectID)
	}
}
