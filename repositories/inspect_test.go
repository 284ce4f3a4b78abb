package repositories

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func Test_Inspect_Describes_Records(t *testing.T) {
	req := require.New(t)
	store, index := newTestRepositories(t)
	conversationID := newTestConversation(t, index, alice, bob)
	_, err := store.Append(conversationID, alice, "hello", time.Now())
	req.NoError(err)
	_, err = index.CursorFor(conversationID, bob)
	req.NoError(err)

	kinds := map[string]int{}
	var detail string
	req.NoError(Inspect(store.db, "", func(row Row) error {
		kinds[row.Kind]++
		if row.Kind == "MESSAGE" {
			detail = row.Detail
		}
		return nil
	}))

	req.Equal(1, kinds["CONVERSATION"])
	req.Equal(1, kinds["MESSAGE"])
	req.Equal(2, kinds["MEMBER"])
	req.Equal(1, kinds["SET"])
	// Only bob materialised a cursor
	req.Equal(1, kinds["CURSOR"])
	req.Equal("#1 alice: hello", detail)
}

func Test_Inspect_Reports_Undecodable(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	req.NoError(db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(messagePrefix+"c1\x0000000000000000000001"), []byte{0xff})
	}))

	var rows []Row
	req.NoError(Inspect(db, messagePrefix, func(row Row) error {
		rows = append(rows, row)
		return nil
	}))

	req.Len(rows, 1)
	req.Equal("msg:c1/00000000000000000001", rows[0].Key)
	req.Contains(rows[0].Detail, "undecodable")
}
