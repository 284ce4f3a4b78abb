package server

import (
	"context"
	"inbox-lab/auth"
	"inbox-lab/domain"
	"inbox-lab/domain/event"
	"inbox-lab/errors"
	pb "inbox-lab/infrastructure/grpc/inboxv1"
	"inbox-lab/services"
	"log/slog"

	"github.com/samber/lo"
	"google.golang.org/grpc/metadata"
)

// SubscriptionHeader is sent once the Connect subscription is registered; messages
// sent after the client has read it are queued on its subscription.
const SubscriptionHeader = "x-subscription-id"

type InboxServer struct {
	pb.UnimplementedInboxServiceServer
	log          *slog.Logger
	inboxService services.IInboxService
}

func NewInboxServer(log *slog.Logger, inboxService services.IInboxService) *InboxServer {
	return &InboxServer{log: log.With("component", "inbox_server"), inboxService: inboxService}
}

// Send stores a message on behalf of the authenticated user and returns it with its
// assigned id. The sender also receives it on its own Connect streams.
func (s *InboxServer) Send(ctx context.Context, req *pb.SendRequest) (*pb.SendResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	message, err := s.inboxService.Send(ctx, domain.SendCommand{
		UserID:         userID,
		ConversationID: domain.ConversationID(req.ConversationID),
		Text:           req.Text,
	})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.SendResponse{Message: toMessage(message)}, nil
}

func (s *InboxServer) FetchHistory(ctx context.Context, req *pb.FetchHistoryRequest) (*pb.FetchHistoryResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	messages, err := s.inboxService.FetchHistory(ctx, domain.FetchCommand{
		UserID:         userID,
		ConversationID: domain.ConversationID(req.ConversationID),
		Before:         domain.MessageID(req.Before),
		Limit:          int(req.Limit),
	})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.FetchHistoryResponse{Messages: lo.Map(messages, func(m domain.Message, _ int) *pb.Message {
		return toMessage(m)
	})}, nil
}

func (s *InboxServer) MarkSeen(ctx context.Context, req *pb.MarkSeenRequest) (*pb.MarkSeenResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	cursor, err := s.inboxService.MarkSeen(ctx, domain.SeenCommand{
		UserID:         userID,
		ConversationID: domain.ConversationID(req.ConversationID),
		MessageID:      domain.MessageID(req.MessageID),
	})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.MarkSeenResponse{Cursor: &pb.ReadCursor{
		ConversationID:    string(cursor.ConversationID),
		LastSeenMessageID: uint64(cursor.LastSeenMessageID),
		LastSeenAt:        cursor.LastSeenAt,
	}}, nil
}

func (s *InboxServer) Summarize(ctx context.Context, _ *pb.SummaryRequest) (*pb.SummaryResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.inboxService.Summarize(ctx, userID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.SummaryResponse{
		Entries: lo.Map(entries, func(e domain.SummaryEntry, _ int) *pb.SummaryEntry {
			return toSummaryEntry(e)
		}),
		UnseenTotal: int32(lo.SumBy(entries, func(e domain.SummaryEntry) int { return e.UnseenCount })),
	}, nil
}

func (s *InboxServer) StartConversation(ctx context.Context, req *pb.StartConversationRequest) (*pb.StartConversationResponse, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	conversation, created, err := s.inboxService.StartConversation(ctx, domain.StartConversationCommand{
		UserID:       userID,
		Participants: toUserIDs(req.Participants),
	})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.StartConversationResponse{
		Conversation: &pb.Conversation{
			ID:           string(conversation.ID),
			Participants: fromUserIDs(conversation.Participants),
			CreatedAt:    conversation.CreatedAt,
		},
		Created: created,
	}, nil
}

// Connect streams live notifications for every conversation of the caller.
// This method blocks until the client disconnects, a network error occurs or the
// subscription is closed on shutdown. Events missed while disconnected are not replayed:
// clients catch up through FetchHistory.
func (s *InboxServer) Connect(_ *pb.ConnectRequest, stream pb.InboxService_ConnectServer) error {
	userID, err := callerID(stream.Context())
	if err != nil {
		return err
	}
	sub := s.inboxService.Subscribe(userID)
	defer s.inboxService.Unsubscribe(sub.ID)
	if err := stream.SendHeader(metadata.Pairs(SubscriptionHeader, sub.ID.String())); err != nil {
		return err
	}
	s.log.Debug("Client connected", "user_id", userID, "subscription_id", sub.ID)

	for {
		select {
		case <-stream.Context().Done():
			s.log.Debug("Client disconnected", "user_id", userID, "dropped", sub.Dropped())
			return nil
		case evt, ok := <-sub.Events():
			if !ok {
				return nil
			}
			switch e := evt.(type) {
			case event.MessageCreated:
				if err := stream.Send(&pb.InboxEvent{Message: toMessage(e.Message)}); err != nil {
					s.log.Error("failed to push event to stream",
						"user_id", userID,
						"conversation_id", e.Message.ConversationID,
						"error", err)
					return err
				}
			}
		}
	}
}

func callerID(ctx context.Context) (domain.UserID, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return "", errors.MapToGRPCError(errors.ErrUnauthenticated)
	}
	return userID, nil
}
