package server

import (
	"inbox-lab/domain"
	pb "inbox-lab/infrastructure/grpc/inboxv1"

	"github.com/samber/lo"
)

func toMessage(m domain.Message) *pb.Message {
	return &pb.Message{
		ID:             uint64(m.ID),
		ConversationID: string(m.ConversationID),
		SenderID:       string(m.SenderID),
		SentAt:         m.SentAt,
		Text:           m.Text,
	}
}

func toSummaryEntry(e domain.SummaryEntry) *pb.SummaryEntry {
	entry := &pb.SummaryEntry{
		ConversationID: string(e.ConversationID),
		Participants:   fromUserIDs(e.Participants),
		UnseenCount:    int32(e.UnseenCount),
	}
	if e.LastMessage != nil {
		entry.LastMessage = toMessage(*e.LastMessage)
	}
	return entry
}

func toUserIDs(ids []string) []domain.UserID {
	return lo.Map(ids, func(id string, _ int) domain.UserID { return domain.UserID(id) })
}

func fromUserIDs(ids []domain.UserID) []string {
	return lo.Map(ids, func(id domain.UserID, _ int) string { return string(id) })
}
