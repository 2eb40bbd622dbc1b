// Package feed streams post lifecycle events to websocket subscribers.
//
// The hub is in-process only: events are not persisted, and a slow subscriber
// drops events rather than blocking a mutation.
package feed

import (
	"log/slog"
	"sync"
	"time"

	"quill/cmd/internal/content"
)

// Event is a post lifecycle notification.
type Event struct {
	Type string    `json:"type"` // post.created | post.updated | post.deleted
	Post postBody  `json:"post"`
	At   time.Time `json:"at"`
}

type postBody struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	UserID      string `json:"user_id"`
}

// Hub fans events out to subscribers. It implements content.Publisher.
type Hub struct {
	log *slog.Logger

	mu   sync.Mutex
	subs map[uint64]chan Event
	next uint64
}

// NewHub constructs a Hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		log:  log,
		subs: make(map[uint64]chan Event),
	}
}

const subQueueSize = 64

// Subscribe registers a subscriber and returns its id and event channel.
func (h *Hub) Subscribe() (uint64, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.next++
	id := h.next
	ch := make(chan Event, subQueueSize)
	h.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Publish delivers an event to every subscriber without blocking.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.log.Warn("feed.subscriber.slow", "subscriber", id, "dropped", ev.Type)
		}
	}
}

func toBody(p content.Post) postBody {
	return postBody{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		UserID:      p.UserID,
	}
}

// PostCreated implements content.Publisher.
func (h *Hub) PostCreated(p content.Post) { h.Publish(Event{Type: "post.created", Post: toBody(p)}) }

// PostUpdated implements content.Publisher.
func (h *Hub) PostUpdated(p content.Post) { h.Publish(Event{Type: "post.updated", Post: toBody(p)}) }

// PostDeleted implements content.Publisher.
func (h *Hub) PostDeleted(p content.Post) { h.Publish(Event{Type: "post.deleted", Post: toBody(p)}) }
