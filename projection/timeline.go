// Package projection builds the local view of one conversation on a client.
// It merges history pages and live notifications, deduplicating by message id
// and keeping the store's order. It does not emit events or touch the network.
package projection

import (
	"context"
	"fmt"
	"inbox-lab/contract"
	"inbox-lab/domain"
	"inbox-lab/domain/event"
	"inbox-lab/errors"
	"slices"
	"sync"
)

type ViewState int

const (
	Idle ViewState = iota
	LoadingHistory
	Ready
	Sending
)

func (s ViewState) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case LoadingHistory:
		return "LOADING_HISTORY"
	case Ready:
		return "READY"
	case Sending:
		return "SENDING"
	default:
		return fmt.Sprintf("ViewState(%d)", int(s))
	}
}

var _ contract.EventSink = (*Timeline)(nil)

// Timeline holds a conversation view: IDLE -> LOADING_HISTORY -> READY -> SENDING -> READY.
// Live messages are accepted in every state without a transition.
type Timeline struct {
	mu             sync.Mutex
	conversationID domain.ConversationID
	state          ViewState
	messages       []domain.Message // ascending by id
	seen           map[domain.MessageID]struct{}
	hasMore        bool
}

func NewTimeline(conversationID domain.ConversationID) *Timeline {
	return &Timeline{
		conversationID: conversationID,
		seen:           make(map[domain.MessageID]struct{}),
		hasMore:        true,
	}
}

func (t *Timeline) ConversationID() domain.ConversationID {
	return t.conversationID
}

func (t *Timeline) State() ViewState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// BeginLoad starts loading the first history page.
func (t *Timeline) BeginLoad() error {
	return t.transition(Idle, LoadingHistory)
}

// ApplyPage merges a page returned by FetchHistory (newest first).
// The first page completes the initial load; older pages may be applied while READY.
// A page shorter than limit means the beginning of the conversation was reached.
func (t *Timeline) ApplyPage(page []domain.Message, limit int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.state {
	case LoadingHistory:
		t.state = Ready
	case Ready, Sending:
	default:
		return fmt.Errorf("%w: page received in state %s", errors.ErrInvalidTransition, t.state)
	}
	for _, m := range page {
		t.merge(m)
	}
	t.hasMore = len(page) >= limit && limit > 0
	return nil
}

// BeginSend marks an outgoing message in flight. Only one send at a time.
func (t *Timeline) BeginSend() error {
	return t.transition(Ready, Sending)
}

// CompleteSend returns to READY. On success the stored message is merged, so the
// later echo from the live stream is absorbed as a duplicate.
func (t *Timeline) CompleteSend(message *domain.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Sending {
		return fmt.Errorf("%w: %s -> %s", errors.ErrInvalidTransition, t.state, Ready)
	}
	t.state = Ready
	if message != nil {
		t.merge(*message)
	}
	return nil
}

// Consume applies a live notification. Events of other conversations are ignored.
func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	created, ok := e.(event.MessageCreated)
	if !ok || created.Message.ConversationID != t.conversationID {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.merge(created.Message)
	return nil
}

// Messages returns a copy of the view, oldest first.
func (t *Timeline) Messages() []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.messages)
}

// OldestID is the Before value for the next, older page. Zero when empty.
func (t *Timeline) OldestID() domain.MessageID {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.messages) == 0 {
		return 0
	}
	return t.messages[0].ID
}

// LatestID is the newest message shown, the natural target of MarkSeen.
func (t *Timeline) LatestID() domain.MessageID {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.messages) == 0 {
		return 0
	}
	return t.messages[len(t.messages)-1].ID
}

func (t *Timeline) HasMore() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasMore
}

// HasGap reports whether messages are missing between the oldest and newest shown,
// typically after notifications were dropped. The client should refetch the newest page.
// Ids are dense, so the view is contiguous exactly when it spans len(messages) ids.
func (t *Timeline) HasGap() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.messages) == 0 {
		return false
	}
	span := t.messages[len(t.messages)-1].ID - t.messages[0].ID + 1
	return span != domain.MessageID(len(t.messages))
}

func (t *Timeline) transition(from, to ViewState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != from {
		return fmt.Errorf("%w: %s -> %s", errors.ErrInvalidTransition, t.state, to)
	}
	t.state = to
	return nil
}

// merge inserts m at its ordered position unless already present.
func (t *Timeline) merge(m domain.Message) {
	if _, ok := t.seen[m.ID]; ok {
		return
	}
	t.seen[m.ID] = struct{}{}
	i, _ := slices.BinarySearchFunc(t.messages, m.ID, func(e domain.Message, id domain.MessageID) int {
		switch {
		case e.ID < id:
			return -1
		case e.ID > id:
			return 1
		default:
			return 0
		}
	})
	t.messages = slices.Insert(t.messages, i, m)
}
