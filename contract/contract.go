//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"inbox-lab/domain"
	"inbox-lab/domain/event"
	"inbox-lab/sink"
	"reflect"
	"time"

	"github.com/google/uuid"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives events from the fanout. Consume must not block the caller.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IMessageStore is the durable, append-only record of messages.
type IMessageStore interface {
	Append(conversationID domain.ConversationID, senderID domain.UserID, text string, sentAt time.Time) (domain.Message, error)
	FetchPage(conversationID domain.ConversationID, before domain.MessageID, limit int) ([]domain.Message, error)
	Latest(conversationID domain.ConversationID) (*domain.Message, error)
}

type IParticipantResolver interface {
	ParticipantsOf(conversationID domain.ConversationID) ([]domain.UserID, error)
}

// IConversationIndex maps users to conversations and owns read cursors.
type IConversationIndex interface {
	IParticipantResolver
	Create(participants []domain.UserID, at time.Time) (domain.Conversation, bool, error)
	Get(conversationID domain.ConversationID) (domain.Conversation, error)
	ConversationsFor(userID domain.UserID) ([]domain.ConversationID, error)
	CursorFor(conversationID domain.ConversationID, userID domain.UserID) (domain.ReadCursor, error)
	AdvanceCursor(conversationID domain.ConversationID, userID domain.UserID, messageID domain.MessageID, at time.Time) (domain.ReadCursor, error)
	UnseenCount(conversationID domain.ConversationID, userID domain.UserID) (int, error)
}

type IRegistry interface {
	Subscribe(userID domain.UserID, bufferSize int) *sink.Subscription
	Unsubscribe(subscriptionID uuid.UUID)
	SinksFor(userIDs []domain.UserID) []EventSink
}

// IDeliveryChannel is the transient notification path. It is never the durability path.
type IDeliveryChannel interface {
	Subscribe(userID domain.UserID) *sink.Subscription
	Unsubscribe(subscriptionID uuid.UUID)
	Publish(ctx context.Context, message domain.Message) error
}

// ITextFilter masks forbidden words and reports which ones were found.
type ITextFilter interface {
	Censor(text string) (string, []string)
}
