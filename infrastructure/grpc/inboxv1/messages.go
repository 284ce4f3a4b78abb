// Package inboxv1 holds the wire contract of the inbox gRPC service.
// Messages travel as JSON through the codec registered by this package.
package inboxv1

import "time"

type Message struct {
	ID             uint64    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	SentAt         time.Time `json:"sent_at"`
	Text           string    `json:"text"`
}

type SendRequest struct {
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
}

type SendResponse struct {
	Message *Message `json:"message"`
}

// FetchHistoryRequest asks for messages strictly older than Before (0 = newest page).
type FetchHistoryRequest struct {
	ConversationID string `json:"conversation_id"`
	Before         uint64 `json:"before,omitempty"`
	Limit          int32  `json:"limit,omitempty"`
}

// FetchHistoryResponse lists messages newest first.
type FetchHistoryResponse struct {
	Messages []*Message `json:"messages"`
}

type MarkSeenRequest struct {
	ConversationID string `json:"conversation_id"`
	MessageID      uint64 `json:"message_id"`
}

type ReadCursor struct {
	ConversationID    string    `json:"conversation_id"`
	LastSeenMessageID uint64    `json:"last_seen_message_id"`
	LastSeenAt        time.Time `json:"last_seen_at"`
}

type MarkSeenResponse struct {
	Cursor *ReadCursor `json:"cursor"`
}

type SummaryRequest struct{}

type SummaryEntry struct {
	ConversationID string   `json:"conversation_id"`
	Participants   []string `json:"participants"`
	LastMessage    *Message `json:"last_message,omitempty"`
	UnseenCount    int32    `json:"unseen_count"`
}

type SummaryResponse struct {
	Entries     []*SummaryEntry `json:"entries"`
	UnseenTotal int32           `json:"unseen_total"`
}

type StartConversationRequest struct {
	Participants []string `json:"participants"`
}

type Conversation struct {
	ID           string    `json:"id"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
}

type StartConversationResponse struct {
	Conversation *Conversation `json:"conversation"`
	Created      bool          `json:"created"`
}

type ConnectRequest struct{}

// InboxEvent is pushed on the Connect stream. It only notifies: clients reconcile
// with FetchHistory, which stays the source of truth.
type InboxEvent struct {
	Message *Message `json:"message,omitempty"`
}
