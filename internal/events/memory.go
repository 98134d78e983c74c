package events

import (
	"context"
	"sync"
)

// subscriberBuffer bounds how many undelivered events a subscriber may hold.
const subscriberBuffer = 16

type subscriber struct {
	ch        chan Event
	topics    map[Topic]struct{} // nil means all topics
	closeOnce sync.Once
}

// close is safe to call from both Bus.Close and the subscriber's cancel func.
func (s *subscriber) close() {
	s.closeOnce.Do(func() { close(s.ch) })
}

// memoryBus is the in-process Bus used in tests and single-node deployments.
type memoryBus struct {
	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	closed bool
}

// NewMemoryBus creates an in-process event bus.
func NewMemoryBus() Bus {
	return &memoryBus{subs: make(map[*subscriber]struct{})}
}

func (b *memoryBus) Publish(_ context.Context, e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for sub := range b.subs {
		if sub.topics != nil {
			if _, ok := sub.topics[e.Topic]; !ok {
				continue
			}
		}
		select {
		case sub.ch <- e:
		default:
			// subscriber is behind; the next event on this topic carries
			// the same "re-fetch" meaning
		}
	}
}

func (b *memoryBus) Subscribe(_ context.Context, topics ...Topic) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}
	if len(topics) > 0 {
		sub.topics = make(map[Topic]struct{}, len(topics))
		for _, t := range topics {
			sub.topics[t] = struct{}{}
		}
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.close()
		return sub.ch, func() {}
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.subs, sub)
		b.mu.Unlock()
		sub.close()
	}
	return sub.ch, cancel
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for sub := range b.subs {
		sub.close()
		delete(b.subs, sub)
	}
	return nil
}
