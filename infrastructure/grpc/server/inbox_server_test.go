package server_test

import (
	"context"
	"inbox-lab/auth"
	pb "inbox-lab/infrastructure/grpc/inboxv1"
	"inbox-lab/infrastructure/grpc/server"
	"inbox-lab/repositories"
	"inbox-lab/runtime"
	"inbox-lab/runtime/workers"
	"inbox-lab/services"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type testServer struct {
	client   pb.InboxServiceClient
	tokens   *auth.TokenManager
	registry *runtime.Registry
}

func startTestServer(t *testing.T) testServer {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })
	index, err := repositories.NewConversationIndex(db, log, 1000)
	req.NoError(err)
	t.Cleanup(func() { _ = index.Close() })

	registry := runtime.NewRegistry()
	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log, 10*time.Millisecond), registry, index,
		runtime.Config{EventBufferSize: 64, SubscriptionBufferSize: 16, SinkTimeout: 100 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	orchestratorDone := make(chan struct{})
	go func() {
		_ = orchestrator.Start(ctx)
		close(orchestratorDone)
	}()

	inboxService := services.NewInboxService(log, repositories.NewMessageStore(db, log), index, orchestrator, nil,
		services.InboxConfig{MaxPageSize: 100, RetryDelay: time.Millisecond})
	tokens, err := auth.NewTokenManager("a_test_secret_that_is_long_enough_1234", time.Hour)
	req.NoError(err)
	s := server.NewGRPCServer(log, auth.NewInterceptor(log, tokens), server.NewInboxServer(log, inboxService))

	listener := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(listener) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	req.NoError(err)

	t.Cleanup(func() {
		_ = conn.Close()
		s.Stop()
		cancel()
		<-orchestratorDone
	})
	return testServer{client: pb.NewInboxServiceClient(conn), tokens: tokens, registry: registry}
}

func (ts testServer) as(t *testing.T, userID string) context.Context {
	t.Helper()
	token, err := ts.tokens.GenerateToken(userID)
	require.NoError(t, err)
	return auth.WithBearer(context.Background(), token)
}

func (ts testServer) conversation(t *testing.T, creator string, others ...string) string {
	t.Helper()
	res, err := ts.client.StartConversation(ts.as(t, creator), &pb.StartConversationRequest{Participants: others})
	require.NoError(t, err)
	return res.Conversation.ID
}

func texts(messages []*pb.Message) []string {
	return lo.Map(messages, func(m *pb.Message, _ int) string { return m.Text })
}

func TestInboxServer_Send_Summarize_MarkSeen(t *testing.T) {
	req := require.New(t)
	ts := startTestServer(t)
	c1 := ts.conversation(t, "u1", "u2")

	// When u1 says hi
	sent, err := ts.client.Send(ts.as(t, "u1"), &pb.SendRequest{ConversationID: c1, Text: " hi "})
	req.NoError(err)
	req.Equal(uint64(1), sent.Message.ID)
	req.Equal("hi", sent.Message.Text)
	req.Equal("u1", sent.Message.SenderID)

	// Then u2 sees one unseen message
	summary, err := ts.client.Summarize(ts.as(t, "u2"), &pb.SummaryRequest{})
	req.NoError(err)
	req.Len(summary.Entries, 1)
	req.Equal(int32(1), summary.Entries[0].UnseenCount)
	req.Equal(int32(1), summary.UnseenTotal)
	req.Equal(sent.Message.ID, summary.Entries[0].LastMessage.ID)
	req.ElementsMatch([]string{"u1", "u2"}, summary.Entries[0].Participants)

	// When u2 marks it seen
	seen, err := ts.client.MarkSeen(ts.as(t, "u2"), &pb.MarkSeenRequest{ConversationID: c1, MessageID: 1})
	req.NoError(err)
	req.Equal(uint64(1), seen.Cursor.LastSeenMessageID)
	req.True(sent.Message.SentAt.Equal(seen.Cursor.LastSeenAt))

	// Then nothing is left unseen
	summary, err = ts.client.Summarize(ts.as(t, "u2"), &pb.SummaryRequest{})
	req.NoError(err)
	req.Equal(int32(0), summary.UnseenTotal)
}

func TestInboxServer_FetchHistory_Pagination(t *testing.T) {
	req := require.New(t)
	ts := startTestServer(t)
	c1 := ts.conversation(t, "u1", "u2")
	for _, text := range []string{"one", "two", "three"} {
		_, err := ts.client.Send(ts.as(t, "u1"), &pb.SendRequest{ConversationID: c1, Text: text})
		req.NoError(err)
	}

	page, err := ts.client.FetchHistory(ts.as(t, "u2"), &pb.FetchHistoryRequest{ConversationID: c1, Limit: 2})
	req.NoError(err)
	req.Equal([]string{"three", "two"}, texts(page.Messages))

	older, err := ts.client.FetchHistory(ts.as(t, "u2"), &pb.FetchHistoryRequest{ConversationID: c1, Before: page.Messages[1].ID, Limit: 2})
	req.NoError(err)
	req.Equal([]string{"one"}, texts(older.Messages))
}

func TestInboxServer_Error_Codes(t *testing.T) {
	ts := startTestServer(t)
	c1 := ts.conversation(t, "u1", "u2")

	tests := []struct {
		name string
		call func() error
		code codes.Code
	}{
		{
			name: "missing token",
			call: func() error {
				_, err := ts.client.Summarize(context.Background(), &pb.SummaryRequest{})
				return err
			},
			code: codes.Unauthenticated,
		},
		{
			name: "not a participant",
			call: func() error {
				_, err := ts.client.Send(ts.as(t, "u3"), &pb.SendRequest{ConversationID: c1, Text: "hi"})
				return err
			},
			code: codes.PermissionDenied,
		},
		{
			name: "unknown conversation",
			call: func() error {
				_, err := ts.client.FetchHistory(ts.as(t, "u1"), &pb.FetchHistoryRequest{ConversationID: "nope"})
				return err
			},
			code: codes.NotFound,
		},
		{
			name: "empty text",
			call: func() error {
				_, err := ts.client.Send(ts.as(t, "u1"), &pb.SendRequest{ConversationID: c1, Text: "  "})
				return err
			},
			code: codes.InvalidArgument,
		},
		{
			name: "unknown message",
			call: func() error {
				_, err := ts.client.MarkSeen(ts.as(t, "u1"), &pb.MarkSeenRequest{ConversationID: c1, MessageID: 42})
				return err
			},
			code: codes.NotFound,
		},
		{
			name: "conversation with oneself",
			call: func() error {
				_, err := ts.client.StartConversation(ts.as(t, "u1"), &pb.StartConversationRequest{Participants: []string{"u1"}})
				return err
			},
			code: codes.InvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.code, status.Code(tt.call()))
		})
	}
}

func TestInboxServer_Connect_Then_Recover_From_History(t *testing.T) {
	req := require.New(t)
	ts := startTestServer(t)
	c1 := ts.conversation(t, "u1", "u2")

	// Given u2 is connected
	streamCtx, disconnect := context.WithCancel(ts.as(t, "u2"))
	stream, err := ts.client.Connect(streamCtx, &pb.ConnectRequest{})
	req.NoError(err)
	header, err := stream.Header()
	req.NoError(err)
	req.Len(header.Get(server.SubscriptionHeader), 1)
	req.Equal(1, ts.registry.Count())

	// When u1 sends a message
	_, err = ts.client.Send(ts.as(t, "u1"), &pb.SendRequest{ConversationID: c1, Text: "live"})
	req.NoError(err)

	// Then u2 is notified
	evt, err := stream.Recv()
	req.NoError(err)
	req.Equal("live", evt.Message.Text)
	req.Equal(c1, evt.Message.ConversationID)

	// When u2 drops and messages keep flowing
	disconnect()
	req.Eventually(func() bool { return ts.registry.Count() == 0 }, time.Second, 5*time.Millisecond)
	for _, text := range []string{"missed 1", "missed 2"} {
		_, err = ts.client.Send(ts.as(t, "u1"), &pb.SendRequest{ConversationID: c1, Text: text})
		req.NoError(err)
	}

	// Then the history holds everything exactly once
	page, err := ts.client.FetchHistory(ts.as(t, "u2"), &pb.FetchHistoryRequest{ConversationID: c1})
	req.NoError(err)
	req.Equal([]string{"missed 2", "missed 1", "live"}, texts(page.Messages))
}
