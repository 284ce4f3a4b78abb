package domain

import (
	"time"
)

type SendCommand struct {
	UserID         UserID         `validate:"required"`
	ConversationID ConversationID `validate:"required"`
	Text           string
	SentAt         time.Time
}

type FetchCommand struct {
	UserID         UserID         `validate:"required"`
	ConversationID ConversationID `validate:"required"`
	// Before is exclusive; zero fetches the newest page.
	Before MessageID
	Limit  int `validate:"gte=0"`
}

type SeenCommand struct {
	UserID         UserID         `validate:"required"`
	ConversationID ConversationID `validate:"required"`
	MessageID      MessageID      `validate:"required"`
}

type StartConversationCommand struct {
	UserID       UserID   `validate:"required"`
	Participants []UserID `validate:"required,min=1,dive,required"`
}
