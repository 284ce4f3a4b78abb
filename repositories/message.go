package repositories

import (
	"inbox-lab/domain"
	"inbox-lab/errors"
	"inbox-lab/internal/keylock"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// MessageStore is the durable, append-only record of messages per conversation.
type MessageStore struct {
	db    *badger.DB
	log   *slog.Logger
	locks *keylock.KeyLock
}

func NewMessageStore(db *badger.DB, log *slog.Logger) *MessageStore {
	return &MessageStore{db: db, log: log.With("component", "message_store"), locks: keylock.New()}
}

// Append persists a message at the next position of its conversation.
// Appends on the same conversation are serialized by a per-conversation lock; the message
// and the new conversation head are written in a single transaction.
// sentAt is clamped so that it never goes before the previous message, whatever the
// clock skew between senders.
func (s *MessageStore) Append(conversationID domain.ConversationID, senderID domain.UserID,
	text string, sentAt time.Time) (domain.Message, error) {
	unlock := s.locks.Lock(string(conversationID))
	defer unlock()

	var message domain.Message
	err := update(s.db, func(txn *badger.Txn) error {
		conversation, err := loadConversation(txn, conversationID)
		if err != nil {
			return err
		}
		if !conversation.HasParticipant(senderID) {
			return errors.ErrNotAParticipant
		}
		normalized, ok := domain.NormalizeText(text)
		if !ok {
			return errors.ErrEmptyText
		}

		// Round(0) strips the monotonic clock reading, which is never persisted.
		at := sentAt.Round(0).UTC()
		if at.Before(conversation.LastSentAt) {
			at = conversation.LastSentAt
		}
		message = domain.Message{
			ID:             conversation.LastMessageID + 1,
			ConversationID: conversationID,
			SenderID:       senderID,
			SentAt:         at,
			Text:           normalized,
		}
		conversation.LastMessageID = message.ID
		conversation.LastSentAt = at

		if err = txn.Set(messageKey(conversationID, message.ID), encodeMessage(message)); err != nil {
			return err
		}
		return txn.Set(conversationKey(conversationID), encodeConversation(conversation))
	})
	if err != nil {
		return domain.Message{}, err
	}
	s.log.Debug("Message appended",
		"conversation_id", conversationID, "message_id", message.ID, "sender_id", senderID)
	return message, nil
}

// FetchPage returns up to limit messages strictly older than before, newest first.
// A zero before starts from the newest message.
// The read happens on a badger snapshot: it never blocks appends and only sees
// messages whose transaction has committed.
func (s *MessageStore) FetchPage(conversationID domain.ConversationID, before domain.MessageID, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := view(s.db, func(txn *badger.Txn) error {
		conversation, err := loadConversation(txn, conversationID)
		if err != nil {
			return err
		}
		upper := conversation.LastMessageID
		if before != 0 && before-1 < upper {
			upper = before - 1
		}
		if upper == 0 || limit <= 0 {
			return nil
		}

		prefix := messagePrefixFor(conversationID)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		options.Prefix = prefix
		options.PrefetchSize = limit
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(messageKey(conversationID, upper)); it.ValidForPrefix(prefix); it.Next() {
			if len(messages) == limit {
				break
			}
			err = it.Item().Value(func(val []byte) error {
				message, err := decodeMessage(val)
				if err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Latest returns the newest message, or nil when the conversation has none yet.
func (s *MessageStore) Latest(conversationID domain.ConversationID) (*domain.Message, error) {
	var latest *domain.Message
	err := view(s.db, func(txn *badger.Txn) error {
		conversation, err := loadConversation(txn, conversationID)
		if err != nil {
			return err
		}
		if conversation.LastMessageID == 0 {
			return nil
		}
		message, err := loadMessage(txn, conversationID, conversation.LastMessageID)
		if err != nil {
			return err
		}
		latest = &message
		return nil
	})
	return latest, err
}

// Get returns a single message of a conversation.
func (s *MessageStore) Get(conversationID domain.ConversationID, id domain.MessageID) (domain.Message, error) {
	var message domain.Message
	err := view(s.db, func(txn *badger.Txn) error {
		if _, err := loadConversation(txn, conversationID); err != nil {
			return err
		}
		var err error
		message, err = loadMessage(txn, conversationID, id)
		return err
	})
	return message, err
}
