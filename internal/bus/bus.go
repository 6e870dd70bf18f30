// Package bus is the in-process publish/subscribe channel between the
// entity store and whatever surface is attached to it. Subscribers filter
// by kind prefix; slow subscribers drop events rather than block a
// publisher mid-mutation.
package bus

import (
	"strings"
	"sync"
	"time"
)

// Bus fans events out to prefix-filtered subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*subscriber
	nextID int
}

type subscriber struct {
	prefix string
	ch     chan Event
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[int]*subscriber)}
}

// Publish delivers evt to every subscriber whose prefix matches evt.Kind.
// Delivery is non-blocking; a full subscriber silently misses the event.
func (b *Bus) Publish(evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		if strings.HasPrefix(evt.Kind, s.prefix) {
			select {
			case s.ch <- evt:
			default:
			}
		}
	}
}

// Notify publishes a user-facing notice. level maps onto the kind suffix
// so surfaces can subscribe to "notice." or just "notice.error".
func (b *Bus) Notify(level NoticeLevel, text string) {
	kind := "notice.info"
	switch level {
	case NoticeSuccess:
		kind = "notice.success"
	case NoticeError:
		kind = "notice.error"
	}
	b.Publish(Event{Kind: kind, Payload: Notice{Level: level, Text: text}})
}

// Subscribe registers a subscriber for kinds beginning with prefix. The
// returned cancel func removes the subscription; the channel is never
// closed.
func (b *Bus) Subscribe(prefix string, buf int) (<-chan Event, func()) {
	ch := make(chan Event, buf)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = &subscriber{prefix: prefix, ch: ch}
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}
