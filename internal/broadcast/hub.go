// Package broadcast implements best-effort live fan-out of state-change
// events to subscribers grouped by resource scope. It carries no durability:
// a subscriber not joined at publish time receives nothing. The durable
// record lives in the notification store, not here.
package broadcast

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Event names emitted by the workflow engine.
const (
	EventProjectUpdated      = "project_updated"
	EventProjectDeleted      = "project_deleted"
	EventNewTask             = "new_task"
	EventTaskUpdated         = "task_updated"
	EventTaskDeleted         = "task_deleted"
	EventNewComment          = "new_comment"
	EventCommentDeleted      = "comment_deleted"
	EventTaskUpdatedComments = "task_updated_comments"
	EventNotification        = "notification"
)

func ProjectScope(id uuid.UUID) string { return "project:" + id.String() }
func TaskScope(id uuid.UUID) string    { return "task:" + id.String() }
func UserScope(id uuid.UUID) string    { return "user:" + id.String() }

// Event is what a subscriber receives on publish.
type Event struct {
	Scope   string `json:"scope"`
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

// Subscriber is one live connection. Send must be safe for concurrent use;
// a Send error evicts the subscriber from every scope.
type Subscriber interface {
	Send(event Event) error
}

// Hub is the process-local subscription table. Safe for concurrent
// Join/Leave/Publish.
type Hub struct {
	mu     sync.RWMutex
	scopes map[string]map[Subscriber]bool
}

func NewHub() *Hub {
	return &Hub{scopes: make(map[string]map[Subscriber]bool)}
}

func (h *Hub) Join(scope string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.scopes[scope] == nil {
		h.scopes[scope] = make(map[Subscriber]bool)
	}
	h.scopes[scope][sub] = true
}

func (h *Hub) Leave(scope string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(scope, sub)
}

// Disconnect removes the subscriber from every scope it joined.
func (h *Hub) Disconnect(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for scope := range h.scopes {
		h.removeLocked(scope, sub)
	}
}

func (h *Hub) removeLocked(scope string, sub Subscriber) {
	subs, exists := h.scopes[scope]
	if !exists {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.scopes, scope)
	}
}

// Publish delivers the event to every current subscriber of the scope. The
// member set is snapshotted first so sends happen without holding the lock.
func (h *Hub) Publish(scope, name string, payload any) {
	h.mu.RLock()
	subs, exists := h.scopes[scope]
	if !exists || len(subs) == 0 {
		h.mu.RUnlock()
		return
	}
	snapshot := make([]Subscriber, 0, len(subs))
	for sub := range subs {
		snapshot = append(snapshot, sub)
	}
	h.mu.RUnlock()

	event := Event{Scope: scope, Name: name, Payload: payload}
	for _, sub := range snapshot {
		if err := sub.Send(event); err != nil {
			log.Printf("broadcast: dropping subscriber on %s: %v", scope, err)
			h.Disconnect(sub)
		}
	}
}

// SubscriberCount reports the current membership of a scope.
func (h *Hub) SubscriberCount(scope string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.scopes[scope])
}

func (h *Hub) String() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return fmt.Sprintf("broadcast.Hub{scopes: %d}", len(h.scopes))
}
