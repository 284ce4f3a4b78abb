package domain

import (
	"slices"
	"time"
)

// Conversation is a fixed set of participants and the head of their ordered history.
type Conversation struct {
	ID           ConversationID
	Participants []UserID
	CreatedAt    time.Time
	// CreationSeq orders conversations by creation, independently of wall clocks.
	CreationSeq   uint64
	LastMessageID MessageID
	LastSentAt    time.Time
}

func (c Conversation) HasParticipant(userID UserID) bool {
	return slices.Contains(c.Participants, userID)
}

// NormalizeParticipants removes duplicates and empty IDs, and sorts the set
// so that the same participants always produce the same key.
func NormalizeParticipants(participants []UserID) []UserID {
	out := make([]UserID, 0, len(participants))
	for _, p := range participants {
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
