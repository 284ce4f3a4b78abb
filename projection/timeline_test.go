package projection

import (
	"context"
	"inbox-lab/domain"
	"inbox-lab/domain/event"
	"inbox-lab/errors"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func message(id domain.MessageID) domain.Message {
	return domain.Message{
		ID:             id,
		ConversationID: "c1",
		SenderID:       "alice",
		SentAt:         base.Add(time.Duration(id) * time.Second),
		Text:           "hello",
	}
}

// page returns ids from newest to oldest, as FetchHistory does.
func page(ids ...domain.MessageID) []domain.Message {
	return lo.Map(ids, func(id domain.MessageID, _ int) domain.Message { return message(id) })
}

func ids(messages []domain.Message) []domain.MessageID {
	return lo.Map(messages, func(m domain.Message, _ int) domain.MessageID { return m.ID })
}

func TestTimeline_Lifecycle(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("c1")
	req.Equal(Idle, timeline.State())

	// Given the first page is loading
	req.NoError(timeline.BeginLoad())
	req.Equal(LoadingHistory, timeline.State())

	// When it arrives
	req.NoError(timeline.ApplyPage(page(3, 2), 2))

	// Then the view is ready and ordered oldest first
	req.Equal(Ready, timeline.State())
	req.Equal([]domain.MessageID{2, 3}, ids(timeline.Messages()))
	req.True(timeline.HasMore())
	req.Equal(domain.MessageID(2), timeline.OldestID())

	// When a message is sent
	req.NoError(timeline.BeginSend())
	req.Equal(Sending, timeline.State())
	sent := message(4)
	req.NoError(timeline.CompleteSend(&sent))

	// Then it is shown and the view is ready again
	req.Equal(Ready, timeline.State())
	req.Equal(domain.MessageID(4), timeline.LatestID())
}

func TestTimeline_Invalid_Transitions(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("c1")

	req.ErrorIs(timeline.BeginSend(), errors.ErrInvalidTransition)
	req.ErrorIs(timeline.ApplyPage(page(1), 20), errors.ErrInvalidTransition)
	req.ErrorIs(timeline.CompleteSend(nil), errors.ErrInvalidTransition)

	req.NoError(timeline.BeginLoad())
	req.ErrorIs(timeline.BeginLoad(), errors.ErrInvalidTransition)
}

func TestTimeline_Failed_Send_Returns_To_Ready(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("c1")
	req.NoError(timeline.BeginLoad())
	req.NoError(timeline.ApplyPage(nil, 20))
	req.False(timeline.HasMore())

	req.NoError(timeline.BeginSend())
	req.NoError(timeline.CompleteSend(nil))

	req.Equal(Ready, timeline.State())
	req.Empty(timeline.Messages())
}

func TestTimeline_Deduplicates_Echo_And_Overlapping_Pages(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	timeline := NewTimeline("c1")
	req.NoError(timeline.BeginLoad())
	req.NoError(timeline.ApplyPage(page(5, 4, 3), 3))

	// Given the echo of our own send arrives before the response
	req.NoError(timeline.BeginSend())
	req.NoError(timeline.Consume(ctx, event.MessageCreated{Message: message(6)}))
	sent := message(6)
	req.NoError(timeline.CompleteSend(&sent))

	// And an older page overlapping what is already shown
	req.NoError(timeline.ApplyPage(page(4, 3, 2, 1), 4))

	// Then every message appears once, in order
	req.Equal([]domain.MessageID{1, 2, 3, 4, 5, 6}, ids(timeline.Messages()))
	req.False(timeline.HasGap())
}

func TestTimeline_Live_Events(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	timeline := NewTimeline("c1")
	req.NoError(timeline.BeginLoad())
	req.NoError(timeline.ApplyPage(page(2, 1), 20))

	// Events of other conversations are ignored
	other := message(3)
	other.ConversationID = "c2"
	req.NoError(timeline.Consume(ctx, event.MessageCreated{Message: other}))
	req.Equal([]domain.MessageID{1, 2}, ids(timeline.Messages()))

	// An event arriving after a dropped one leaves a gap
	req.NoError(timeline.Consume(ctx, event.MessageCreated{Message: message(4)}))
	req.Equal(Ready, timeline.State())
	req.True(timeline.HasGap())

	// Refetching the newest page fills it
	req.NoError(timeline.ApplyPage(page(4, 3, 2), 20))
	req.False(timeline.HasGap())
	req.Equal([]domain.MessageID{1, 2, 3, 4}, ids(timeline.Messages()))
}
