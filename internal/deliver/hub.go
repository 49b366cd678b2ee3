// Package deliver fans locally delivered messages out to subscribers.
//
// The event loop publishes every newly accepted message exactly once; the
// CLI (or anything else interested in delivered traffic) subscribes. Publish
// never blocks: the loop must keep polling peers even if a subscriber is
// slow, so a full subscriber queue drops the delivery for that subscriber
// only.
package deliver

import (
	"sync"

	"github.com/google/uuid"

	"floodcast/internal/message"
)

// Delivery is one message accepted by the node, tagged with the address it
// arrived from. From is empty for locally originated broadcasts.
type Delivery struct {
	From string
	Msg  message.Message
}

const subscriberQueueDepth = 64

// Subscriber consumes deliveries from a Hub.
type Subscriber interface {
	Deliveries() <-chan Delivery
	Unsubscribe()
}

type subscriber struct {
	id    string
	queue chan Delivery
	hub   *Hub
	once  sync.Once
}

func (s *subscriber) Deliveries() <-chan Delivery {
	return s.queue
}

func (s *subscriber) Unsubscribe() {
	s.once.Do(func() {
		s.hub.remove(s.id)
	})
}

// Hub is the fan-out point for delivered messages.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]*subscriber
	closed      bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]*subscriber)}
}

// Subscribe registers a new consumer of deliveries.
func (h *Hub) Subscribe() Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := &subscriber{
		id:    uuid.NewString(),
		queue: make(chan Delivery, subscriberQueueDepth),
		hub:   h,
	}
	if h.closed {
		close(s.queue)
		return s
	}
	h.subscribers[s.id] = s
	return s
}

// Publish hands d to every current subscriber without blocking.
func (h *Hub) Publish(d Delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, s := range h.subscribers {
		select {
		case s.queue <- d:
		default:
			// Slow subscriber; drop rather than stall the event loop.
		}
	}
}

// Shutdown closes every subscriber queue. Further Publish calls are no-ops.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, s := range h.subscribers {
		close(s.queue)
		delete(h.subscribers, id)
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.subscribers[id]; ok {
		close(s.queue)
		delete(h.subscribers, id)
	}
}
