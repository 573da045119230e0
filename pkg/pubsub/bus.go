package pubsub

import (
	"context"
	"sync"
	"time"

	"github.com/premiumstore/premiumstore-backend/pkg/logger"
)

// Topic identifies one change-event stream.
type Topic string

const (
	TopicCartChanged     Topic = "cart.changed"
	TopicWishlistChanged Topic = "wishlist.changed"
	TopicPromoChanged    Topic = "promo.changed"
)

// Event carries the post-mutation snapshot for one session store.
// Publishers emit strictly after the new state is committed, so a
// subscriber reading store state from its handler observes the
// post-mutation value.
type Event struct {
	Topic      Topic     `json:"topic"`
	SessionID  string    `json:"session_id"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher is the surface the stores depend on.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

const subscriberBuffer = 32

type subscription struct {
	topics map[Topic]struct{}
	ch     chan Event
}

// Bus is an in-process publish/subscribe fanout. Mutators publish,
// views subscribe; there is no polling. A slow subscriber never blocks
// a mutation: events past its buffer are dropped and logged.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*subscription
	nextID int
	logg   *logger.Logger
}

// NewBus builds an empty bus.
func NewBus(logg *logger.Logger) *Bus {
	return &Bus{
		subs: make(map[int]*subscription),
		logg: logg,
	}
}

// Subscribe registers interest in the given topics (all topics when
// none are named) and returns the event channel plus a cancel func.
// The channel is closed on cancel.
func (b *Bus) Subscribe(topics ...Topic) (<-chan Event, func()) {
	sub := &subscription{
		ch: make(chan Event, subscriberBuffer),
	}
	if len(topics) > 0 {
		sub.topics = make(map[Topic]struct{}, len(topics))
		for _, topic := range topics {
			sub.topics[topic] = struct{}{}
		}
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(existing.ch)
		}
	}
	return sub.ch, cancel
}

// Publish fans the event out to every matching subscriber. Delivery
// order per topic follows publish order for each subscriber.
func (b *Bus) Publish(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if sub.topics != nil {
			if _, ok := sub.topics[event.Topic]; !ok {
				continue
			}
		}
		select {
		case sub.ch <- event:
		default:
			if b.logg != nil {
				dropCtx := b.logg.WithFields(ctx, map[string]any{
					"topic":      string(event.Topic),
					"session_id": event.SessionID,
				})
				b.logg.Warn(dropCtx, "event dropped for slow subscriber")
			}
		}
	}
}
