package repositories

import (
	"inbox-lab/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func Test_Decode_Skips_Unknown_Fields(t *testing.T) {
	req := require.New(t)
	message := domain.Message{
		ID:             3,
		ConversationID: "c1",
		SenderID:       alice,
		SentAt:         time.Unix(1555011169, 0).UTC(),
		Text:           "I am David!",
	}
	b := encodeMessage(message)
	// A field written by a newer version
	b = protowire.AppendTag(b, 42, protowire.BytesType)
	b = protowire.AppendString(b, "reaction")

	decoded, err := decodeMessage(b)
	req.NoError(err)
	req.Equal(message, decoded)
}

func Test_Decode_Truncated_Record(t *testing.T) {
	b := encodeConversation(domain.Conversation{ID: "c1", Participants: []domain.UserID{alice, bob}})
	_, err := decodeConversation(b[:len(b)-2])
	require.Error(t, err)
}
