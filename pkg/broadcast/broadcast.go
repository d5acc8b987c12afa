// Package broadcast implements the Progress Broadcaster (spec C8): an
// in-memory pub/sub keyed by operation ID, so an HTTP long-poll or
// websocket handler can subscribe to exactly the playbook run or sync
// it asked about rather than every event in the system.
package broadcast

import (
	"sync"
	"time"

	"github.com/autobot/fleetctl/pkg/log"
	"github.com/autobot/fleetctl/pkg/types"
)

// Subscriber is a channel that receives ProgressEvents for one op_id.
type Subscriber chan types.ProgressEvent

// Broker fans ProgressEvents out to subscribers of the same op_id. A
// subscriber whose buffer is full is dropped rather than blocking the
// publisher — a slow consumer must not stall a sync or playbook run.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[Subscriber]bool
}

// NewBroker constructs an empty Broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[Subscriber]bool)}
}

// Subscribe returns a channel that receives events published under opID
// until Unsubscribe is called.
func (b *Broker) Subscribe(opID string) Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 50)
	if b.subs[opID] == nil {
		b.subs[opID] = make(map[Subscriber]bool)
	}
	b.subs[opID][sub] = true
	return sub
}

// Unsubscribe removes sub from opID's subscriber set and closes it.
func (b *Broker) Unsubscribe(opID string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if set, ok := b.subs[opID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(b.subs, opID)
		}
	}
	close(sub)
}

// Publish implements playbook.ProgressSink and orchestrator-side
// progress reporting: it delivers event to every current subscriber
// of opID. A subscriber whose channel is full is removed rather than
// left to accumulate a backlog it will never catch up on.
func (b *Broker) Publish(opID string, event types.ProgressEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			log.WithComponent("broadcast").Error().Interface("panic", rec).Str("op_id", opID).Msg("publish panicked")
		}
	}()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	set := b.subs[opID]
	for sub := range set {
		select {
		case sub <- event:
		default:
			delete(set, sub)
			close(sub)
		}
	}
}

// SubscriberCount reports how many subscribers are currently attached
// to opID, for diagnostics.
func (b *Broker) SubscriberCount(opID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[opID])
}
