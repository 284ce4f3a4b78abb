package repositories

import (
	"inbox-lab/domain"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// Records are stored in protobuf wire format, written field by field.
// Field numbers are part of the on-disk format and must never be reused.
const (
	messageFieldID           protowire.Number = 1
	messageFieldConversation protowire.Number = 2
	messageFieldSender       protowire.Number = 3
	messageFieldSentAt       protowire.Number = 4
	messageFieldText         protowire.Number = 5

	conversationFieldID            protowire.Number = 1
	conversationFieldParticipant   protowire.Number = 2
	conversationFieldCreatedAt     protowire.Number = 3
	conversationFieldCreationSeq   protowire.Number = 4
	conversationFieldLastMessageID protowire.Number = 5
	conversationFieldLastSentAt    protowire.Number = 6

	cursorFieldConversation protowire.Number = 1
	cursorFieldUser         protowire.Number = 2
	cursorFieldLastSeenID   protowire.Number = 3
	cursorFieldLastSeenAt   protowire.Number = 4
	cursorFieldUpdatedAt    protowire.Number = 5
)

func encodeMessage(m domain.Message) []byte {
	var b []byte
	b = appendVarint(b, messageFieldID, uint64(m.ID))
	b = appendString(b, messageFieldConversation, string(m.ConversationID))
	b = appendString(b, messageFieldSender, string(m.SenderID))
	b = appendTime(b, messageFieldSentAt, m.SentAt)
	b = appendString(b, messageFieldText, m.Text)
	return b
}

func decodeMessage(b []byte) (domain.Message, error) {
	var m domain.Message
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case messageFieldID:
			return consumeVarint(typ, b, func(v uint64) { m.ID = domain.MessageID(v) })
		case messageFieldConversation:
			return consumeString(typ, b, func(v string) { m.ConversationID = domain.ConversationID(v) })
		case messageFieldSender:
			return consumeString(typ, b, func(v string) { m.SenderID = domain.UserID(v) })
		case messageFieldSentAt:
			return consumeTime(typ, b, &m.SentAt)
		case messageFieldText:
			return consumeString(typ, b, func(v string) { m.Text = v })
		}
		return protowire.ConsumeFieldValue(num, typ, b)
	})
	return m, err
}

func encodeConversation(c domain.Conversation) []byte {
	var b []byte
	b = appendString(b, conversationFieldID, string(c.ID))
	for _, p := range c.Participants {
		b = appendString(b, conversationFieldParticipant, string(p))
	}
	b = appendTime(b, conversationFieldCreatedAt, c.CreatedAt)
	b = appendVarint(b, conversationFieldCreationSeq, c.CreationSeq)
	b = appendVarint(b, conversationFieldLastMessageID, uint64(c.LastMessageID))
	b = appendTime(b, conversationFieldLastSentAt, c.LastSentAt)
	return b
}

func decodeConversation(b []byte) (domain.Conversation, error) {
	var c domain.Conversation
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case conversationFieldID:
			return consumeString(typ, b, func(v string) { c.ID = domain.ConversationID(v) })
		case conversationFieldParticipant:
			return consumeString(typ, b, func(v string) { c.Participants = append(c.Participants, domain.UserID(v)) })
		case conversationFieldCreatedAt:
			return consumeTime(typ, b, &c.CreatedAt)
		case conversationFieldCreationSeq:
			return consumeVarint(typ, b, func(v uint64) { c.CreationSeq = v })
		case conversationFieldLastMessageID:
			return consumeVarint(typ, b, func(v uint64) { c.LastMessageID = domain.MessageID(v) })
		case conversationFieldLastSentAt:
			return consumeTime(typ, b, &c.LastSentAt)
		}
		return protowire.ConsumeFieldValue(num, typ, b)
	})
	return c, err
}

func encodeCursor(c domain.ReadCursor) []byte {
	var b []byte
	b = appendString(b, cursorFieldConversation, string(c.ConversationID))
	b = appendString(b, cursorFieldUser, string(c.UserID))
	b = appendVarint(b, cursorFieldLastSeenID, uint64(c.LastSeenMessageID))
	b = appendTime(b, cursorFieldLastSeenAt, c.LastSeenAt)
	b = appendTime(b, cursorFieldUpdatedAt, c.UpdatedAt)
	return b
}

func decodeCursor(b []byte) (domain.ReadCursor, error) {
	var c domain.ReadCursor
	err := decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case cursorFieldConversation:
			return consumeString(typ, b, func(v string) { c.ConversationID = domain.ConversationID(v) })
		case cursorFieldUser:
			return consumeString(typ, b, func(v string) { c.UserID = domain.UserID(v) })
		case cursorFieldLastSeenID:
			return consumeVarint(typ, b, func(v uint64) { c.LastSeenMessageID = domain.MessageID(v) })
		case cursorFieldLastSeenAt:
			return consumeTime(typ, b, &c.LastSeenAt)
		case cursorFieldUpdatedAt:
			return consumeTime(typ, b, &c.UpdatedAt)
		}
		return protowire.ConsumeFieldValue(num, typ, b)
	})
	return c, err
}

// decodeFields walks every field of b. read must return the number of bytes consumed
// after the tag, or a negative protowire error code.
func decodeFields(b []byte, read func(num protowire.Number, typ protowire.Type, b []byte) int) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		n = read(num, typ, b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
	}
	return nil
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// appendTime stores nanoseconds since epoch. The zero time is omitted.
func appendTime(b []byte, num protowire.Number, t time.Time) []byte {
	if t.IsZero() {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(t.UnixNano()))
}

func consumeVarint(typ protowire.Type, b []byte, set func(uint64)) int {
	if typ != protowire.VarintType {
		return protowire.ConsumeFieldValue(0, typ, b)
	}
	v, n := protowire.ConsumeVarint(b)
	if n >= 0 {
		set(v)
	}
	return n
}

func consumeString(typ protowire.Type, b []byte, set func(string)) int {
	if typ != protowire.BytesType {
		return protowire.ConsumeFieldValue(0, typ, b)
	}
	v, n := protowire.ConsumeString(b)
	if n >= 0 {
		set(v)
	}
	return n
}

func consumeTime(typ protowire.Type, b []byte, t *time.Time) int {
	return consumeVarint(typ, b, func(v uint64) {
		*t = time.Unix(0, int64(v)).UTC()
	})
}
