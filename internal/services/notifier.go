package services

import (
	"log"
	"sync"
	"time"
)

// Topics the notifier publishes on, keyed by entity type like the tables the
// progress pages watch.
const (
	TopicCampaigns = "campaigns"
	TopicSevas     = "seva_opportunities"
	TopicDonations = "donations"
)

// Event tells subscribers that something changed. Value carries the new
// aggregate for convenience, but delivery is at-least-once and unordered, so
// subscribers must re-fetch the entity rather than trust the payload.
type Event struct {
	Topic    string    `json:"topic"`
	EntityID string    `json:"entity_id,omitempty"`
	Value    int64     `json:"value,omitempty"`
	At       time.Time `json:"at"`
}

// Subscriber receives events for its topics on a buffered channel. A
// subscriber that falls behind misses intermediate events; it will see the
// final state on its next fetch.
type Subscriber struct {
	topics map[string]bool
	ch     chan Event
}

// Events returns the subscriber's event channel. It is closed on unsubscribe.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

// Notifier is an in-process change feed. Publishing never blocks the
// settlement pipeline: a full subscriber buffer drops the event.
type Notifier struct {
	mu   sync.RWMutex
	subs map[*Subscriber]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[*Subscriber]struct{})}
}

// Subscribe registers interest in the given topics. No topics means all
// topics.
func (n *Notifier) Subscribe(topics ...string) *Subscriber {
	sub := &Subscriber{
		topics: make(map[string]bool, len(topics)),
		ch:     make(chan Event, 16),
	}
	for _, t := range topics {
		sub.topics[t] = true
	}

	n.mu.Lock()
	n.subs[sub] = struct{}{}
	n.mu.Unlock()
	return sub
}

// Unsubscribe removes the subscriber and closes its channel. Safe to call
// once per subscriber.
func (n *Notifier) Unsubscribe(sub *Subscriber) {
	n.mu.Lock()
	_, ok := n.subs[sub]
	delete(n.subs, sub)
	n.mu.Unlock()

	// Channel is only closed after removal, so no publish can race the close.
	if ok {
		close(sub.ch)
	}
}

// Publish fans the event out to every matching subscriber without blocking.
func (n *Notifier) Publish(evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now()
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	for sub := range n.subs {
		if len(sub.topics) > 0 && !sub.topics[evt.Topic] {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			log.Printf("Dropping %s event for slow subscriber", evt.Topic)
		}
	}
}
