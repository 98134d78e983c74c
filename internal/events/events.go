// Package events provides the invalidation bus that tells dashboard clients
// and sibling API nodes which entities changed. Topics are a fixed set; every
// successful mutation publishes one event per affected topic, once, after the
// database transaction has committed.
package events

import (
	"context"
	"time"
)

// Topic names a class of entities whose consumers should re-fetch.
type Topic string

const (
	TopicAccounts     Topic = "accounts"
	TopicCards        Topic = "cards"
	TopicTransactions Topic = "transactions"
	TopicInvoiceItems Topic = "invoice-items"
	TopicGoals        Topic = "goals"
)

// AllTopics lists every topic, in a stable order.
func AllTopics() []Topic {
	return []Topic{TopicAccounts, TopicCards, TopicTransactions, TopicInvoiceItems, TopicGoals}
}

// ValidTopic reports whether t is a known topic.
func ValidTopic(t Topic) bool {
	switch t {
	case TopicAccounts, TopicCards, TopicTransactions, TopicInvoiceItems, TopicGoals:
		return true
	}
	return false
}

// Action describes what happened to the entity.
type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
	ActionPaid     Action = "paid"
	ActionReversed Action = "reversed"
)

// Event is a single invalidation signal with payload.
type Event struct {
	Topic      Topic     `json:"topic"`
	Action     Action    `json:"action"`
	EntityID   string    `json:"entity_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Bus fans events out to subscribers. Publish must not block on slow
// consumers; events to a subscriber whose buffer is full are dropped, since
// a refresh signal is superseded by any later one on the same topic.
type Bus interface {
	Publish(ctx context.Context, e Event)
	// Subscribe returns a channel of events for the given topics (all topics
	// when none are given) and a cancel function that releases the
	// subscription and closes the channel.
	Subscribe(ctx context.Context, topics ...Topic) (<-chan Event, func())
	Close() error
}

// New builds an Event stamped with the current time.
func New(topic Topic, action Action, entityID string) Event {
	return Event{Topic: topic, Action: action, EntityID: entityID, OccurredAt: time.Now().UTC()}
}
