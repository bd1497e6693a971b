// Package realtime fans out newly ingested events to connected viewers.
// Delivery is best-effort: there is no acknowledgement, retry or replay, and a
// subscriber whose buffer is full misses the event.
package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

// EventHardwareLog is emitted once per stored hardware log entry.
const EventHardwareLog = "hw_log"

// Frame is the wire format of one event sent to subscribers.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Observer receives hub activity, typically for metrics.
type Observer interface {
	SubscribersChanged(n int)
	Published()
	Dropped()
}

type nopObserver struct{}

func (nopObserver) SubscribersChanged(int) {}
func (nopObserver) Published()             {}
func (nopObserver) Dropped()               {}

// Subscription is one connected viewer.
type Subscription struct {
	ID string
	C  <-chan Frame

	ch chan Frame
}

// Hub broadcasts frames to every current subscriber.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]*Subscription
	buffer int
	obs    Observer
	closed bool
}

// NewHub creates a hub whose subscribers each buffer up to buffer frames.
func NewHub(buffer int, obs Observer) *Hub {
	if buffer <= 0 {
		buffer = 1
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &Hub{
		subs:   make(map[string]*Subscription),
		buffer: buffer,
		obs:    obs,
	}
}

// Subscribe registers a new subscriber. Only frames published after this call are delivered.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan Frame, h.buffer)
	sub := &Subscription{ID: uuid.NewString(), C: ch, ch: ch}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return sub
	}
	h.subs[sub.ID] = sub
	h.obs.SubscribersChanged(len(h.subs))
	return sub
}

// Unsubscribe removes the subscriber and closes its channel. It is safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.ID]; !ok {
		return
	}
	delete(h.subs, sub.ID)
	close(sub.ch)
	h.obs.SubscribersChanged(len(h.subs))
}

// Publish sends payload as event to all subscribers without blocking.
// Frames are enqueued under one lock, so every subscriber sees the
// process-wide publish order.
func (h *Hub) Publish(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("realtime: failed to marshal %s payload: %v", event, err)
		return
	}
	frame := Frame{Event: event, Data: data}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for _, sub := range h.subs {
		select {
		case sub.ch <- frame:
		default:
			h.obs.Dropped()
			log.Printf("realtime: subscriber %s is not keeping up; dropped %s", sub.ID, event)
		}
	}
	h.obs.Published()
}

// Len returns the number of connected subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close disconnects every subscriber. Later publishes are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		close(sub.ch)
		delete(h.subs, id)
	}
	h.obs.SubscribersChanged(0)
}
