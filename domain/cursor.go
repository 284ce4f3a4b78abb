package domain

import "time"

// ReadCursor is a participant's last-seen position in a conversation.
// A zero LastSeenMessageID means nothing has been seen yet.
type ReadCursor struct {
	ConversationID    ConversationID
	UserID            UserID
	LastSeenMessageID MessageID
	// LastSeenAt is the SentAt of the last seen message.
	LastSeenAt time.Time
	UpdatedAt  time.Time
}

// IsAhead reports whether messageID would move the cursor forward.
func (c ReadCursor) IsAhead(messageID MessageID) bool {
	return messageID > c.LastSeenMessageID
}

// SummaryEntry is one row of the inbox list view.
type SummaryEntry struct {
	ConversationID ConversationID
	Participants   []UserID
	LastMessage    *Message
	UnseenCount    int
	CreationSeq    uint64
}
