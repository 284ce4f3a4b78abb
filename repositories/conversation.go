package repositories

import (
	"inbox-lab/domain"
	"inbox-lab/errors"
	"inbox-lab/internal/keylock"
	"log/slog"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/ristretto/v2"
	"github.com/google/uuid"
)

// sequenceBandwidth is the number of creation sequence numbers leased at once.
const sequenceBandwidth = 100

// ConversationIndex maps users to their conversations and keeps read cursors.
// Participant sets never change once created, which makes them safe to cache.
type ConversationIndex struct {
	db           *badger.DB
	log          *slog.Logger
	locks        *keylock.KeyLock
	sequence     *badger.Sequence
	participants *ristretto.Cache[string, []domain.UserID]
}

func NewConversationIndex(db *badger.DB, log *slog.Logger, cacheSize int64) (*ConversationIndex, error) {
	sequence, err := db.GetSequence([]byte(conversationSeqKey), sequenceBandwidth)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, []domain.UserID]{
		NumCounters: cacheSize * 10,
		MaxCost:     cacheSize,
		BufferItems: 64,
	})
	if err != nil {
		_ = sequence.Release()
		return nil, err
	}
	return &ConversationIndex{
		db:           db,
		log:          log.With("component", "conversation_index"),
		locks:        keylock.New(),
		sequence:     sequence,
		participants: cache,
	}, nil
}

// Close releases the leased sequence numbers and the cache. The database stays open.
func (i *ConversationIndex) Close() error {
	i.participants.Close()
	return wrapStoreErr(i.sequence.Release())
}

// Create returns the conversation owning exactly this participant set, creating it
// when it doesn't exist yet. The boolean reports whether a conversation was created.
func (i *ConversationIndex) Create(participants []domain.UserID, at time.Time) (domain.Conversation, bool, error) {
	set := domain.NormalizeParticipants(participants)
	if len(set) < 2 {
		return domain.Conversation{}, false, errors.ErrTooFewParticipants
	}
	setKey := participantSetKey(set)
	unlock := i.locks.Lock(string(setKey))
	defer unlock()

	var existing domain.ConversationID
	err := view(i.db, func(txn *badger.Txn) error {
		item, err := txn.Get(setKey)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			existing = domain.ConversationID(val)
			return nil
		})
	})
	if err != nil {
		return domain.Conversation{}, false, err
	}
	if existing != "" {
		conversation, err := i.Get(existing)
		return conversation, false, err
	}

	seq, err := i.sequence.Next()
	if err != nil {
		return domain.Conversation{}, false, wrapStoreErr(err)
	}
	conversation := domain.Conversation{
		ID:           domain.ConversationID(uuid.NewString()),
		Participants: set,
		CreatedAt:    at.Round(0).UTC(),
		CreationSeq:  seq,
	}
	err = update(i.db, func(txn *badger.Txn) error {
		if err := txn.Set(conversationKey(conversation.ID), encodeConversation(conversation)); err != nil {
			return err
		}
		if err := txn.Set(setKey, []byte(conversation.ID)); err != nil {
			return err
		}
		for _, p := range set {
			if err := txn.Set(memberKey(p, conversation.ID), []byte{}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Conversation{}, false, err
	}
	i.log.Info("Conversation created",
		"conversation_id", conversation.ID, "participants", len(set))
	return conversation, true, nil
}

// Get returns the conversation and its current head.
func (i *ConversationIndex) Get(id domain.ConversationID) (domain.Conversation, error) {
	var conversation domain.Conversation
	err := view(i.db, func(txn *badger.Txn) error {
		var err error
		conversation, err = loadConversation(txn, id)
		return err
	})
	return conversation, err
}

// ConversationsFor lists every conversation userID participates in, empty ones included.
func (i *ConversationIndex) ConversationsFor(userID domain.UserID) ([]domain.ConversationID, error) {
	var ids []domain.ConversationID
	err := view(i.db, func(txn *badger.Txn) error {
		prefix := memberPrefixFor(userID)
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, domain.ConversationID(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return ids, err
}

// ParticipantsOf returns the participant set, served from the cache when possible.
func (i *ConversationIndex) ParticipantsOf(id domain.ConversationID) ([]domain.UserID, error) {
	if participants, ok := i.participants.Get(string(id)); ok {
		return slices.Clone(participants), nil
	}
	conversation, err := i.Get(id)
	if err != nil {
		return nil, err
	}
	i.participants.Set(string(id), conversation.Participants, int64(len(conversation.Participants)))
	return slices.Clone(conversation.Participants), nil
}

// CursorFor returns the read cursor of userID, persisting a zero cursor on first access.
func (i *ConversationIndex) CursorFor(conversationID domain.ConversationID, userID domain.UserID) (domain.ReadCursor, error) {
	if err := i.checkParticipant(conversationID, userID); err != nil {
		return domain.ReadCursor{}, err
	}
	var cursor domain.ReadCursor
	err := update(i.db, func(txn *badger.Txn) error {
		var (
			exists bool
			err    error
		)
		cursor, exists, err = loadCursor(txn, conversationID, userID)
		if err != nil || exists {
			return err
		}
		return txn.Set(cursorKey(conversationID, userID), encodeCursor(cursor))
	})
	return cursor, err
}

// AdvanceCursor moves the cursor of userID to messageID when it is strictly newer.
// Advancing to an older or already seen message is a silent no-op and returns the
// current cursor.
func (i *ConversationIndex) AdvanceCursor(conversationID domain.ConversationID, userID domain.UserID,
	messageID domain.MessageID, at time.Time) (domain.ReadCursor, error) {
	if err := i.checkParticipant(conversationID, userID); err != nil {
		return domain.ReadCursor{}, err
	}
	if messageID == 0 {
		return domain.ReadCursor{}, errors.ErrUnknownMessage
	}

	var cursor domain.ReadCursor
	err := update(i.db, func(txn *badger.Txn) error {
		conversation, err := loadConversation(txn, conversationID)
		if err != nil {
			return err
		}
		if messageID > conversation.LastMessageID {
			return errors.ErrUnknownMessage
		}
		message, err := loadMessage(txn, conversationID, messageID)
		if err != nil {
			return err
		}
		cursor, _, err = loadCursor(txn, conversationID, userID)
		if err != nil {
			return err
		}
		if !cursor.IsAhead(messageID) {
			return nil
		}
		cursor.LastSeenMessageID = messageID
		cursor.LastSeenAt = message.SentAt
		cursor.UpdatedAt = at.Round(0).UTC()
		return txn.Set(cursorKey(conversationID, userID), encodeCursor(cursor))
	})
	if err != nil {
		return domain.ReadCursor{}, err
	}
	return cursor, nil
}

// UnseenCount is the number of messages after the cursor of userID.
// Message IDs are dense, so this is a difference between the conversation head and the
// cursor position: two point reads, whatever the history length.
func (i *ConversationIndex) UnseenCount(conversationID domain.ConversationID, userID domain.UserID) (int, error) {
	if err := i.checkParticipant(conversationID, userID); err != nil {
		return 0, err
	}
	var count int
	err := view(i.db, func(txn *badger.Txn) error {
		conversation, err := loadConversation(txn, conversationID)
		if err != nil {
			return err
		}
		cursor, _, err := loadCursor(txn, conversationID, userID)
		if err != nil {
			return err
		}
		if conversation.LastMessageID > cursor.LastSeenMessageID {
			count = int(conversation.LastMessageID - cursor.LastSeenMessageID)
		}
		return nil
	})
	return count, err
}

func (i *ConversationIndex) checkParticipant(conversationID domain.ConversationID, userID domain.UserID) error {
	participants, err := i.ParticipantsOf(conversationID)
	if err != nil {
		return err
	}
	if !slices.Contains(participants, userID) {
		return errors.ErrNotAParticipant
	}
	return nil
}
