/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com

Package events is a small in-process pub/sub bus. It replaces the
browser-global "taskUpdated" event with explicit subscriptions.
*/
package events

import (
	"strings"
	"sync"
)

const defaultBufferSize = 64

// Event is a message published on the bus.
type Event struct {
	Topic   string
	Payload any
}

// Subscription receives events whose topic starts with its prefix.
type Subscription struct {
	id     int
	prefix string
	ch     chan Event
}

// Ch returns the channel to receive events on. It is closed on Unsubscribe.
func (s *Subscription) Ch() <-chan Event {
	return s.ch
}

// Bus fans events out to subscribers. Delivery never blocks the publisher:
// a subscriber with a full buffer misses the event.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*Subscription
	nextID int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]*Subscription)}
}

// Subscribe registers interest in a topic prefix. "" matches everything.
func (b *Bus) Subscribe(topicPrefix string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:     b.nextID,
		prefix: topicPrefix,
		ch:     make(chan Event, defaultBufferSize),
	}
	b.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes the subscription and closes its channel.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub.id]; ok {
		delete(b.subs, sub.id)
		close(sub.ch)
	}
}

// Publish delivers payload to all matching subscribers.
func (b *Bus) Publish(topic string, payload any) {
	ev := Event{Topic: topic, Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if sub.prefix != "" && !strings.HasPrefix(topic, sub.prefix) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
