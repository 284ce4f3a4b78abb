package repositories

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Row is a human readable view of one stored record.
type Row struct {
	Key    string
	Kind   string
	At     time.Time
	Detail string
}

// Inspect walks every key starting with prefix and describes it.
// Records that cannot be decoded are reported instead of aborting the scan.
func Inspect(db *badger.DB, prefix string, fn func(Row) error) error {
	return view(db, func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			var row Row
			err := item.Value(func(val []byte) error {
				row = describe(key, val)
				return nil
			})
			if err != nil {
				return err
			}
			if err := fn(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func describe(key, val []byte) Row {
	row := Row{Key: PrintableKey(key)}
	switch {
	case bytes.HasPrefix(key, []byte(conversationPrefix)):
		row.Kind = "CONVERSATION"
		c, err := decodeConversation(val)
		if err != nil {
			return undecodable(row, err)
		}
		row.At = c.CreatedAt
		row.Detail = fmt.Sprintf("#%d participants=%s head=%d", c.CreationSeq, joinIDs(c.Participants), c.LastMessageID)
	case bytes.HasPrefix(key, []byte(messagePrefix)):
		row.Kind = "MESSAGE"
		m, err := decodeMessage(val)
		if err != nil {
			return undecodable(row, err)
		}
		row.At = m.SentAt
		row.Detail = fmt.Sprintf("#%d %s: %s", m.ID, m.SenderID, m.Text)
	case bytes.HasPrefix(key, []byte(cursorPrefix)):
		row.Kind = "CURSOR"
		c, err := decodeCursor(val)
		if err != nil {
			return undecodable(row, err)
		}
		row.At = c.UpdatedAt
		row.Detail = fmt.Sprintf("seen=%d", c.LastSeenMessageID)
	case bytes.HasPrefix(key, []byte(participantSetPrefix)):
		row.Kind = "SET"
		row.Detail = string(val)
	case bytes.HasPrefix(key, []byte(memberPrefix)):
		row.Kind = "MEMBER"
	default:
		row.Kind = "OTHER"
		row.Detail = fmt.Sprintf("%d bytes", len(val))
	}
	return row
}

func undecodable(row Row, err error) Row {
	row.Detail = fmt.Sprintf("undecodable: %v", err)
	return row
}

func joinIDs[T ~string](ids []T) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return strings.Join(out, ",")
}
