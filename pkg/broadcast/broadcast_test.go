package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobot/fleetctl/pkg/types"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	broker := NewBroker()
	sub := broker.Subscribe("op-1")
	defer broker.Unsubscribe("op-1", sub)

	broker.Publish("op-1", types.ProgressEvent{Stage: "sync", Message: "started"})

	select {
	case event := <-sub:
		assert.Equal(t, "sync", event.Stage)
		assert.False(t, event.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPublishIgnoresUnrelatedOpID(t *testing.T) {
	broker := NewBroker()
	sub := broker.Subscribe("op-1")
	defer broker.Unsubscribe("op-1", sub)

	broker.Publish("op-2", types.ProgressEvent{Stage: "other"})

	select {
	case event := <-sub:
		t.Fatalf("unexpected event delivered: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	broker := NewBroker()
	sub := broker.Subscribe("op-1")
	broker.Unsubscribe("op-1", sub)

	_, ok := <-sub
	assert.False(t, ok, "channel should be closed after Unsubscribe")
	assert.Equal(t, 0, broker.SubscriberCount("op-1"))
}

func TestPublishDropsSlowSubscriberInsteadOfBlocking(t *testing.T) {
	broker := NewBroker()
	sub := broker.Subscribe("op-1")

	// Fill the subscriber's buffer past capacity without reading.
	for i := 0; i < 60; i++ {
		broker.Publish("op-1", types.ProgressEvent{Stage: "tick"})
	}

	require.Eventually(t, func() bool {
		return broker.SubscriberCount("op-1") == 0
	}, time.Second, time.Millisecond, "slow subscriber should be dropped, not block publishers")
}

func TestSubscriberCount(t *testing.T) {
	broker := NewBroker()
	assert.Equal(t, 0, broker.SubscriberCount("op-1"))

	sub1 := broker.Subscribe("op-1")
	sub2 := broker.Subscribe("op-1")
	assert.Equal(t, 2, broker.SubscriberCount("op-1"))

	broker.Unsubscribe("op-1", sub1)
	assert.Equal(t, 1, broker.SubscriberCount("op-1"))
	broker.Unsubscribe("op-1", sub2)
}
</content>
