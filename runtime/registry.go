package runtime

import (
	"inbox-lab/contract"
	"inbox-lab/domain"
	"inbox-lab/sink"
	"sync"

	"github.com/google/uuid"
)

var _ contract.IRegistry = (*Registry)(nil)

type Registry struct {
	mu            sync.RWMutex
	subscriptions map[uuid.UUID]*sink.Subscription         // subscription -> sink
	users         map[domain.UserID]map[uuid.UUID]struct{} // user -> open subscriptions
}

func NewRegistry() *Registry {
	return &Registry{
		subscriptions: make(map[uuid.UUID]*sink.Subscription),
		users:         make(map[domain.UserID]map[uuid.UUID]struct{}),
	}
}

// Subscribe opens a new subscription for userID.
// A user may hold several at once, one per open session.
func (r *Registry) Subscribe(userID domain.UserID, bufferSize int) *sink.Subscription {
	sub := sink.NewSubscription(userID, bufferSize)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscriptions[sub.ID] = sub
	if _, ok := r.users[userID]; !ok {
		r.users[userID] = make(map[uuid.UUID]struct{})
	}
	r.users[userID][sub.ID] = struct{}{}
	return sub
}

// Unsubscribe closes and forgets the subscription. Unknown IDs are ignored,
// and a user without subscriptions is removed to prevent leaks over time.
func (r *Registry) Unsubscribe(subscriptionID uuid.UUID) {
	r.mu.Lock()
	sub, ok := r.subscriptions[subscriptionID]
	if ok {
		delete(r.subscriptions, subscriptionID)
		if open, exists := r.users[sub.UserID]; exists {
			delete(open, subscriptionID)
			if len(open) == 0 {
				delete(r.users, sub.UserID)
			}
		}
	}
	r.mu.Unlock()

	if ok {
		sub.Close()
	}
}

// SinksFor resolves every live subscription held by any of userIDs.
func (r *Registry) SinksFor(userIDs []domain.UserID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sinks []contract.EventSink
	for _, userID := range userIDs {
		for id := range r.users[userID] {
			sinks = append(sinks, r.subscriptions[id])
		}
	}
	return sinks
}

// Count returns the number of open subscriptions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscriptions)
}
