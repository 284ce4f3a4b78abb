package sink

import (
	"context"
	"inbox-lab/domain"
	"inbox-lab/domain/event"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Subscription binds one connected session to a user.
// It buffers notifications in a bounded queue: when the queue is full the oldest
// pending notification is dropped, so a slow reader only degrades itself and the
// publisher never waits.
// Subscriptions live only as long as the connection; nothing is persisted or replayed.
type Subscription struct {
	ID     uuid.UUID
	UserID domain.UserID

	mu      sync.Mutex
	closed  bool
	events  chan event.DomainEvent
	dropped atomic.Uint64
}

func NewSubscription(userID domain.UserID, bufferSize int) *Subscription {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Subscription{
		ID:     uuid.New(),
		UserID: userID,
		events: make(chan event.DomainEvent, bufferSize),
	}
}

// Consume is called by fanout
// Enqueue the event without ever blocking; a closed subscription silently ignores it.
func (s *Subscription) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	for {
		select {
		case s.events <- e:
			return nil
		default:
		}
		// Queue is full: make room by discarding the oldest notification.
		select {
		case <-s.events:
			s.dropped.Add(1)
		default:
		}
	}
}

// Events is read by the connection owning the subscription.
// The channel is closed once the subscription is closed.
func (s *Subscription) Events() <-chan event.DomainEvent {
	return s.events
}

// Close is idempotent. No further deliveries reach the subscription afterwards.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}

// Dropped returns how many notifications were discarded because the queue was full.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}
