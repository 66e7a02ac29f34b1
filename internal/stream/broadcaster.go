// Package stream fans order lifecycle events out to every currently
// connected viewer. Delivery is best-effort and in-memory: a viewer that
// misses an event reconciles through its periodic poll.
package stream

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Event is one framed lifecycle notification. Data is the payload
// marshalled once at publish time and shared across subscribers.
type Event struct {
	Name string
	Data []byte
}

// Subscription is one viewer's handle on the broadcaster. Events arrive
// on C; the channel is closed when the subscription is removed.
type Subscription struct {
	id uint64
	C  chan Event
}

// Broadcaster keeps the registry of open viewer channels. A single
// instance is owned by main and handed to the transport layer; the
// registry is the only shared mutable state in the core.
type Broadcaster struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*Subscription
	buffer int
	closed bool
}

// NewBroadcaster creates a broadcaster whose subscriber channels hold up
// to buffer undelivered events before the subscriber is dropped.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = 16
	}
	return &Broadcaster{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
	}
}

// Subscribe registers a new viewer channel. The caller must Unsubscribe
// when the viewer disconnects.
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id: b.nextID,
		C:  make(chan Event, b.buffer),
	}
	if b.closed {
		close(sub.C)
		return sub
	}
	b.subs[sub.id] = sub

	log.Debug().Uint64("subscription_id", sub.id).Int("subscribers", len(b.subs)).Msg("stream: viewer subscribed")
	return sub
}

// Unsubscribe removes a viewer channel from the registry. Idempotent.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub.id]; !ok {
		return
	}
	delete(b.subs, sub.id)
	close(sub.C)

	log.Debug().Uint64("subscription_id", sub.id).Int("subscribers", len(b.subs)).Msg("stream: viewer unsubscribed")
}

// Publish serializes payload and delivers the event to every registered
// subscriber. A subscriber whose buffer is full is dropped; delivery
// failures never surface to the caller.
func (b *Broadcaster) Publish(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("stream: failed to marshal event payload")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subs {
		select {
		case sub.C <- Event{Name: event, Data: data}:
		default:
			// Stalled viewer: drop it rather than block the publisher.
			delete(b.subs, id)
			close(sub.C)
			log.Warn().Uint64("subscription_id", id).Str("event", event).Msg("stream: dropped stalled subscriber")
		}
	}
}

// Len reports the number of registered subscribers.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close drops every subscriber and rejects future ones. Called on server
// shutdown so open SSE handlers unwind.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.C)
	}
}
