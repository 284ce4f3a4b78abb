package e2e

import (
	"context"
	"fmt"
	pb "inbox-lab/infrastructure/grpc/inboxv1"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type testInboxSuite struct {
	BaseGrpcSuite
}

func TestInboxSuite(t *testing.T) {
	suite.Run(t, &testInboxSuite{})
}

func (s *testInboxSuite) TestConversationFlow() {
	// Fresh users on every run, the server database may be reused
	run := uuid.NewString()[:8]
	alice, bob := "alice-"+run, "bob-"+run
	var conversationID string

	s.Run("Step 1: Alice starts a conversation with Bob", func() {
		s.WithInbox("Start conversation", alice, func(ctx context.Context, client pb.InboxServiceClient) {
			resp, err := client.StartConversation(ctx, &pb.StartConversationRequest{Participants: []string{bob}})
			s.Require().NoError(err)
			s.Require().True(resp.Created)
			s.Require().ElementsMatch([]string{alice, bob}, resp.Conversation.Participants)
			conversationID = resp.Conversation.ID
		})

		s.WithInbox("Start it again", bob, func(ctx context.Context, client pb.InboxServiceClient) {
			resp, err := client.StartConversation(ctx, &pb.StartConversationRequest{Participants: []string{alice}})
			s.Require().NoError(err)
			s.Require().False(resp.Created)
			s.Require().Equal(conversationID, resp.Conversation.ID)
		})
	})

	s.Run("Step 2: Bob is connected while Alice sends", func() {
		s.WithInbox("Bob connects", bob, func(ctx context.Context, bobClient pb.InboxServiceClient) {
			stream, err := bobClient.Connect(ctx, &pb.ConnectRequest{})
			s.Require().NoError(err)
			_, err = stream.Header()
			s.Require().NoError(err)

			s.WithInbox("Alice sends three messages", alice, func(ctx context.Context, client pb.InboxServiceClient) {
				for i := 1; i <= 3; i++ {
					resp, err := client.Send(ctx, &pb.SendRequest{ConversationID: conversationID, Text: fmt.Sprintf("hello %d", i)})
					s.Require().NoError(err)
					s.Require().Equal(uint64(i), resp.Message.ID)
				}
			})

			for i := 1; i <= 3; i++ {
				evt, err := stream.Recv()
				s.Require().NoError(err)
				s.Require().Equal(uint64(i), evt.Message.ID)
				s.Require().Equal(alice, evt.Message.SenderID)
			}
		})
	})

	s.Run("Step 3: Bob reads his inbox", func() {
		s.WithInbox("Summary before reading", bob, func(ctx context.Context, client pb.InboxServiceClient) {
			resp, err := client.Summarize(ctx, &pb.SummaryRequest{})
			s.Require().NoError(err)
			entry, found := lo.Find(resp.Entries, func(e *pb.SummaryEntry) bool { return e.ConversationID == conversationID })
			s.Require().True(found)
			s.Require().Equal(int32(3), entry.UnseenCount)
			s.Require().Equal("hello 3", entry.LastMessage.Text)
		})

		s.WithInbox("Paginate and mark seen", bob, func(ctx context.Context, client pb.InboxServiceClient) {
			page, err := client.FetchHistory(ctx, &pb.FetchHistoryRequest{ConversationID: conversationID, Limit: 2})
			s.Require().NoError(err)
			s.Require().Equal([]uint64{3, 2}, ids(page.Messages))

			page, err = client.FetchHistory(ctx, &pb.FetchHistoryRequest{ConversationID: conversationID, Before: 2, Limit: 2})
			s.Require().NoError(err)
			s.Require().Equal([]uint64{1}, ids(page.Messages))

			seen, err := client.MarkSeen(ctx, &pb.MarkSeenRequest{ConversationID: conversationID, MessageID: 2})
			s.Require().NoError(err)
			s.Require().Equal(uint64(2), seen.Cursor.LastSeenMessageID)

			resp, err := client.Summarize(ctx, &pb.SummaryRequest{})
			s.Require().NoError(err)
			entry, _ := lo.Find(resp.Entries, func(e *pb.SummaryEntry) bool { return e.ConversationID == conversationID })
			s.Require().Equal(int32(1), entry.UnseenCount)
		})
	})

	s.Run("Step 4: Strangers are kept out", func() {
		s.WithInbox("Mallory reads", "mallory-"+run, func(ctx context.Context, client pb.InboxServiceClient) {
			_, err := client.FetchHistory(ctx, &pb.FetchHistoryRequest{ConversationID: conversationID})
			s.Require().Equal(codes.PermissionDenied, status.Code(err))
		})
	})
}

func ids(messages []*pb.Message) []uint64 {
	return lo.Map(messages, func(m *pb.Message, _ int) uint64 { return m.ID })
}
