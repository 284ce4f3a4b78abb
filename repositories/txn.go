package repositories

import (
	stdErrors "errors"
	"fmt"
	"inbox-lab/domain"
	"inbox-lab/errors"

	"github.com/dgraph-io/badger/v4"
)

// maxConflictRetries bounds the optimistic retries of a read-modify-write transaction.
const maxConflictRetries = 5

// update runs fn in a read-write transaction, retrying when badger detects that
// another transaction committed a key fn has read.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = db.Update(fn)
		if !stdErrors.Is(err, badger.ErrConflict) {
			return wrapStoreErr(err)
		}
	}
	return wrapStoreErr(err)
}

func view(db *badger.DB, fn func(txn *badger.Txn) error) error {
	return wrapStoreErr(db.View(fn))
}

// wrapStoreErr keeps domain errors as they are and turns anything else coming
// from badger or the codec into ErrStoreUnavailable.
func wrapStoreErr(err error) error {
	if err == nil || errors.IsClientError(err) || stdErrors.Is(err, errors.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
}

func loadConversation(txn *badger.Txn, id domain.ConversationID) (domain.Conversation, error) {
	var conversation domain.Conversation
	item, err := txn.Get(conversationKey(id))
	if stdErrors.Is(err, badger.ErrKeyNotFound) {
		return conversation, errors.ErrInvalidConversation
	}
	if err != nil {
		return conversation, err
	}
	err = item.Value(func(val []byte) error {
		conversation, err = decodeConversation(val)
		return err
	})
	return conversation, err
}

func loadMessage(txn *badger.Txn, conversationID domain.ConversationID, id domain.MessageID) (domain.Message, error) {
	var message domain.Message
	item, err := txn.Get(messageKey(conversationID, id))
	if stdErrors.Is(err, badger.ErrKeyNotFound) {
		return message, errors.ErrUnknownMessage
	}
	if err != nil {
		return message, err
	}
	err = item.Value(func(val []byte) error {
		message, err = decodeMessage(val)
		return err
	})
	return message, err
}

// loadCursor returns the stored cursor and whether it exists.
func loadCursor(txn *badger.Txn, conversationID domain.ConversationID, userID domain.UserID) (domain.ReadCursor, bool, error) {
	cursor := domain.ReadCursor{ConversationID: conversationID, UserID: userID}
	item, err := txn.Get(cursorKey(conversationID, userID))
	if stdErrors.Is(err, badger.ErrKeyNotFound) {
		return cursor, false, nil
	}
	if err != nil {
		return cursor, false, err
	}
	err = item.Value(func(val []byte) error {
		cursor, err = decodeCursor(val)
		return err
	})
	return cursor, err == nil, err
}
