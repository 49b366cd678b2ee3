package deliver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floodcast/internal/message"
)

func newDelivery(t *testing.T, from, text string) Delivery {
	t.Helper()
	m, err := message.New(text)
	require.NoError(t, err)
	return Delivery{From: from, Msg: m}
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	h := NewHub()
	defer h.Shutdown()

	a := h.Subscribe()
	b := h.Subscribe()

	d := newDelivery(t, "10.0.0.1:4000", "hello")
	h.Publish(d)

	for _, sub := range []Subscriber{a, b} {
		select {
		case got := <-sub.Deliveries():
			assert.Equal(t, d, got)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive delivery")
		}
	}
}

func TestUnsubscribeStopsDeliveries(t *testing.T) {
	h := NewHub()
	defer h.Shutdown()

	s := h.Subscribe()
	s.Unsubscribe()

	// Queue is closed once unsubscribed.
	_, open := <-s.Deliveries()
	assert.False(t, open)

	// Publishing afterwards must not panic.
	h.Publish(newDelivery(t, "", "after"))
}

func TestPublishDropsWhenSubscriberFull(t *testing.T) {
	h := NewHub()
	defer h.Shutdown()

	s := h.Subscribe()
	for i := 0; i <= subscriberQueueDepth; i++ {
		h.Publish(newDelivery(t, "", "flood"))
	}

	// The queue holds at most its depth; the overflow was dropped, and the
	// hub never blocked getting here.
	assert.Len(t, s.Deliveries(), subscriberQueueDepth)
}

func TestShutdownClosesSubscribers(t *testing.T) {
	h := NewHub()
	s := h.Subscribe()

	h.Shutdown()

	_, open := <-s.Deliveries()
	assert.False(t, open)

	// Subscribing after shutdown yields an already-closed queue.
	late := h.Subscribe()
	_, open = <-late.Deliveries()
	assert.False(t, open)
}
