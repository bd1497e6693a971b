package realtime

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	mu          sync.Mutex
	subscribers int
	published   int
	dropped     int
}

func (o *countingObserver) SubscribersChanged(n int) { o.mu.Lock(); o.subscribers = n; o.mu.Unlock() }
func (o *countingObserver) Published()               { o.mu.Lock(); o.published++; o.mu.Unlock() }
func (o *countingObserver) Dropped()                 { o.mu.Lock(); o.dropped++; o.mu.Unlock() }

type sample struct {
	ID int `json:"id"`
}

func decode(t *testing.T, f Frame) sample {
	t.Helper()
	var s sample
	require.NoError(t, json.Unmarshal(f.Data, &s))
	return s
}

func TestHub_FanOutPreservesOrder(t *testing.T) {
	obs := &countingObserver{}
	hub := NewHub(16, obs)
	a := hub.Subscribe()
	b := hub.Subscribe()
	assert.Equal(t, 2, obs.subscribers)

	for i := 1; i <= 5; i++ {
		hub.Publish(EventHardwareLog, sample{ID: i})
	}

	for _, sub := range []*Subscription{a, b} {
		for i := 1; i <= 5; i++ {
			f := <-sub.C
			assert.Equal(t, EventHardwareLog, f.Event)
			assert.Equal(t, i, decode(t, f).ID)
		}
	}
	assert.Equal(t, 5, obs.published)
	assert.Zero(t, obs.dropped)
}

func TestHub_LateSubscriberMissesEarlierEvents(t *testing.T) {
	hub := NewHub(4, nil)
	hub.Publish(EventHardwareLog, sample{ID: 1})

	sub := hub.Subscribe()
	hub.Publish(EventHardwareLog, sample{ID: 2})

	f := <-sub.C
	assert.Equal(t, 2, decode(t, f).ID)
	assert.Len(t, sub.C, 0)
}

func TestHub_SlowSubscriberDropsWithoutBlocking(t *testing.T) {
	obs := &countingObserver{}
	hub := NewHub(2, obs)
	slow := hub.Subscribe()

	for i := 1; i <= 5; i++ {
		hub.Publish(EventHardwareLog, sample{ID: i})
	}

	assert.Equal(t, 3, obs.dropped)
	assert.Equal(t, 1, decode(t, <-slow.C).ID)
	assert.Equal(t, 2, decode(t, <-slow.C).ID)
}

func TestHub_Unsubscribe(t *testing.T) {
	obs := &countingObserver{}
	hub := NewHub(4, obs)
	sub := hub.Subscribe()

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)

	_, ok := <-sub.C
	assert.False(t, ok, "channel is closed after unsubscribe")
	assert.Equal(t, 0, hub.Len())
	assert.Equal(t, 0, obs.subscribers)

	hub.Publish(EventHardwareLog, sample{ID: 1})
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(4, nil)
	a := hub.Subscribe()
	hub.Close()

	_, ok := <-a.C
	assert.False(t, ok)

	late := hub.Subscribe()
	_, ok = <-late.C
	assert.False(t, ok, "subscribing to a closed hub yields a closed channel")

	hub.Publish(EventHardwareLog, sample{ID: 1})
	hub.Close()
}

func TestHub_UnmarshalablePayload(t *testing.T) {
	obs := &countingObserver{}
	hub := NewHub(4, obs)
	sub := hub.Subscribe()

	hub.Publish(EventHardwareLog, make(chan int))

	assert.Len(t, sub.C, 0)
	assert.Zero(t, obs.published)
}
