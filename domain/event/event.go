package event

import (
	"inbox-lab/domain"
	"time"
)

// DomainEvent is anything the fanout may deliver to a subscription.
type DomainEvent interface {
	ConversationID() domain.ConversationID
	OccurredAt() time.Time
}

// MessageCreated is emitted once a message has been durably appended.
type MessageCreated struct {
	Message domain.Message
}

func (m MessageCreated) ConversationID() domain.ConversationID {
	return m.Message.ConversationID
}

func (m MessageCreated) OccurredAt() time.Time {
	return m.Message.SentAt
}
