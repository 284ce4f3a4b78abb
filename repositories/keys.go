package repositories

import (
	"fmt"
	"inbox-lab/domain"
	"strings"
)

// Key layout. Identifiers are joined with a NUL byte so that a user ID can never be
// mistaken for the prefix of another one during prefix scans.
//
//	conv:{conversation}                 -> conversation record (participants, head)
//	set:{user}\x00{user}...              -> conversation ID owning this exact participant set
//	member:{user}\x00{conversation}      -> empty, one per participant
//	msg:{conversation}\x00{id:020}       -> message record, ordered by id
//	cursor:{conversation}\x00{user}      -> read cursor record
const (
	conversationPrefix   = "conv:"
	participantSetPrefix = "set:"
	memberPrefix         = "member:"
	messagePrefix        = "msg:"
	cursorPrefix         = "cursor:"
	conversationSeqKey   = "seq:conversations"
	separator            = "\x00"
)

func conversationKey(id domain.ConversationID) []byte {
	return []byte(conversationPrefix + string(id))
}

func participantSetKey(participants []domain.UserID) []byte {
	ids := make([]string, len(participants))
	for i, p := range participants {
		ids[i] = string(p)
	}
	return []byte(participantSetPrefix + strings.Join(ids, separator))
}

func memberPrefixFor(userID domain.UserID) []byte {
	return []byte(memberPrefix + string(userID) + separator)
}

func memberKey(userID domain.UserID, conversationID domain.ConversationID) []byte {
	return append(memberPrefixFor(userID), conversationID...)
}

func messagePrefixFor(conversationID domain.ConversationID) []byte {
	return []byte(messagePrefix + string(conversationID) + separator)
}

// messageKey pads the id on 20 digits (max uint64) so lexicographic order is numeric order.
func messageKey(conversationID domain.ConversationID, id domain.MessageID) []byte {
	return append(messagePrefixFor(conversationID), fmt.Sprintf("%020d", uint64(id))...)
}

func cursorKey(conversationID domain.ConversationID, userID domain.UserID) []byte {
	return []byte(cursorPrefix + string(conversationID) + separator + string(userID))
}

// PrintableKey renders a key for humans, replacing the separator.
func PrintableKey(key []byte) string {
	return strings.ReplaceAll(string(key), separator, "/")
}
