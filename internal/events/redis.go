package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"

	"centavo/internal/logger"
)

const channelPrefix = "centavo:events:"

// redisBus fans events out over Redis pub/sub so that every API node sees
// mutations made on any of them.
type redisBus struct {
	client *redis.Client

	mu     sync.Mutex
	closed bool
}

// NewRedisBus connects to Redis at addr and verifies the connection.
func NewRedisBus(ctx context.Context, addr string) (Bus, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &redisBus{client: client}, nil
}

func (b *redisBus) Publish(ctx context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		logger.Get().Errorw("failed to marshal event", "error", err, "topic", e.Topic)
		return
	}
	if err := b.client.Publish(ctx, channelPrefix+string(e.Topic), payload).Err(); err != nil {
		logger.Get().Errorw("failed to publish event", "error", err, "topic", e.Topic)
	}
}

func (b *redisBus) Subscribe(ctx context.Context, topics ...Topic) (<-chan Event, func()) {
	if len(topics) == 0 {
		topics = AllTopics()
	}
	channels := make([]string, len(topics))
	for i, t := range topics {
		channels[i] = channelPrefix + string(t)
	}

	pubsub := b.client.Subscribe(ctx, channels...)
	out := make(chan Event, subscriberBuffer)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				logger.Get().Warnw("dropping malformed event payload", "error", err, "channel", msg.Channel)
				continue
			}
			select {
			case out <- e:
			default:
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			_ = pubsub.Close()
		})
	}
	return out, cancel
}

func (b *redisBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return b.client.Close()
}
