package repositories

import (
	"inbox-lab/domain"
	"inbox-lab/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Create_Is_Find_Or_Create_By_Participant_Set(t *testing.T) {
	req := require.New(t)
	_, index := newTestRepositories(t)

	// When a conversation is created twice with the same participants in another order
	first, created, err := index.Create([]domain.UserID{bob, alice, alice}, time.Now())
	req.NoError(err)
	req.True(created)
	second, created, err := index.Create([]domain.UserID{alice, bob}, time.Now())
	req.NoError(err)

	// Then the existing conversation is returned
	req.False(created)
	req.Equal(first.ID, second.ID)
	req.Equal([]domain.UserID{alice, bob}, second.Participants)

	// And a different set is another conversation
	third, created, err := index.Create([]domain.UserID{alice, bob, clara}, time.Now())
	req.NoError(err)
	req.True(created)
	req.NotEqual(first.ID, third.ID)
	req.Greater(third.CreationSeq, first.CreationSeq)
}

func Test_Create_Needs_Two_Participants(t *testing.T) {
	_, index := newTestRepositories(t)
	_, _, err := index.Create([]domain.UserID{alice, alice, ""}, time.Now())
	require.ErrorIs(t, err, errors.ErrTooFewParticipants)
}

func Test_ConversationsFor_Includes_Empty_Conversations(t *testing.T) {
	req := require.New(t)
	_, index := newTestRepositories(t)
	withBob := newTestConversation(t, index, alice, bob)
	withClara := newTestConversation(t, index, alice, clara)

	conversations, err := index.ConversationsFor(alice)
	req.NoError(err)
	req.ElementsMatch([]domain.ConversationID{withBob, withClara}, conversations)

	conversations, err = index.ConversationsFor(clara)
	req.NoError(err)
	req.Equal([]domain.ConversationID{withClara}, conversations)

	conversations, err = index.ConversationsFor("nobody")
	req.NoError(err)
	req.Empty(conversations)
}

func Test_ParticipantsOf(t *testing.T) {
	req := require.New(t)
	_, index := newTestRepositories(t)
	conversationID := newTestConversation(t, index, bob, alice)

	// Read twice to go through the cache
	for i := 0; i < 2; i++ {
		participants, err := index.ParticipantsOf(conversationID)
		req.NoError(err)
		req.Equal([]domain.UserID{alice, bob}, participants)
		index.participants.Wait()
	}

	_, err := index.ParticipantsOf("unknown")
	req.ErrorIs(err, errors.ErrInvalidConversation)
}

func Test_CursorFor_Created_Lazily(t *testing.T) {
	req := require.New(t)
	_, index := newTestRepositories(t)
	conversationID := newTestConversation(t, index, alice, bob)

	cursor, err := index.CursorFor(conversationID, alice)
	req.NoError(err)
	req.Equal(domain.ReadCursor{ConversationID: conversationID, UserID: alice}, cursor)

	_, err = index.CursorFor(conversationID, clara)
	req.ErrorIs(err, errors.ErrNotAParticipant)

	_, err = index.CursorFor("unknown", alice)
	req.ErrorIs(err, errors.ErrInvalidConversation)
}

func Test_AdvanceCursor_Is_Monotonic_And_Idempotent(t *testing.T) {
	req := require.New(t)
	store, index := newTestRepositories(t)
	conversationID := newTestConversation(t, index, alice, bob)
	for i := 0; i < 3; i++ {
		_, err := store.Append(conversationID, alice, "hello", time.Now())
		req.NoError(err)
	}

	// When bob sees the second message
	cursor, err := index.AdvanceCursor(conversationID, bob, 2, time.Now())
	req.NoError(err)
	req.Equal(domain.MessageID(2), cursor.LastSeenMessageID)
	req.False(cursor.LastSeenAt.IsZero())

	// Then seeing the same or an older message leaves the cursor unchanged
	again, err := index.AdvanceCursor(conversationID, bob, 2, time.Now().Add(time.Hour))
	req.NoError(err)
	req.Equal(cursor, again)
	older, err := index.AdvanceCursor(conversationID, bob, 1, time.Now())
	req.NoError(err)
	req.Equal(cursor, older)

	// And a newer message moves it forward
	cursor, err = index.AdvanceCursor(conversationID, bob, 3, time.Now())
	req.NoError(err)
	req.Equal(domain.MessageID(3), cursor.LastSeenMessageID)
}

func Test_AdvanceCursor_Errors(t *testing.T) {
	req := require.New(t)
	store, index := newTestRepositories(t)
	conversationID := newTestConversation(t, index, alice, bob)
	_, err := store.Append(conversationID, alice, "hello", time.Now())
	req.NoError(err)

	_, err = index.AdvanceCursor(conversationID, bob, 2, time.Now())
	req.ErrorIs(err, errors.ErrUnknownMessage)
	_, err = index.AdvanceCursor(conversationID, bob, 0, time.Now())
	req.ErrorIs(err, errors.ErrUnknownMessage)
	_, err = index.AdvanceCursor(conversationID, clara, 1, time.Now())
	req.ErrorIs(err, errors.ErrNotAParticipant)
	_, err = index.AdvanceCursor("unknown", bob, 1, time.Now())
	req.ErrorIs(err, errors.ErrInvalidConversation)
}

func Test_UnseenCount(t *testing.T) {
	req := require.New(t)
	store, index := newTestRepositories(t)
	conversationID := newTestConversation(t, index, alice, bob)

	count, err := index.UnseenCount(conversationID, bob)
	req.NoError(err)
	req.Zero(count)

	var last domain.Message
	for i := 0; i < 4; i++ {
		last, err = store.Append(conversationID, alice, "hello", time.Now())
		req.NoError(err)
	}
	count, err = index.UnseenCount(conversationID, bob)
	req.NoError(err)
	req.Equal(4, count)

	// After seeing the latest message nothing is left
	_, err = index.AdvanceCursor(conversationID, bob, last.ID, time.Now())
	req.NoError(err)
	count, err = index.UnseenCount(conversationID, bob)
	req.NoError(err)
	req.Zero(count)

	// And k new messages give exactly k
	for i := 0; i < 2; i++ {
		_, err = store.Append(conversationID, alice, "again", time.Now())
		req.NoError(err)
	}
	count, err = index.UnseenCount(conversationID, bob)
	req.NoError(err)
	req.Equal(2, count)
}
