// Package domain contains core concepts of the inbox.
// This file defines Message and the identifiers shared by every component.
// Messages are immutable once the store has assigned their position.
package domain

import (
	"strings"
	"time"
)

type (
	UserID         string
	ConversationID string
	// MessageID is the dense position of a message inside its conversation, starting at 1.
	// Zero means "no message".
	MessageID uint64
)

// Message represents an immutable entry of a conversation history.
type Message struct {
	ID             MessageID
	ConversationID ConversationID
	SenderID       UserID
	SentAt         time.Time
	Text           string
}

// Before reports whether m is ordered before other inside the same conversation.
// Store order is (SentAt, ID), ID breaking ties.
func (m Message) Before(other Message) bool {
	if !m.SentAt.Equal(other.SentAt) {
		return m.SentAt.Before(other.SentAt)
	}
	return m.ID < other.ID
}

// NormalizeText trims the text and reports whether anything is left.
func NormalizeText(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	return trimmed, trimmed != ""
}
