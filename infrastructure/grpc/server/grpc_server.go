package server

import (
	"inbox-lab/auth"
	pb "inbox-lab/infrastructure/grpc/inboxv1"
	"log/slog"

	sdkgrpc "github.com/mama165/sdk-go/grpc"
	"google.golang.org/grpc"
)

// NewGRPCServer wires logging and authentication in front of the inbox service.
func NewGRPCServer(log *slog.Logger, interceptor *auth.Interceptor, inboxServer pb.InboxServiceServer) *grpc.Server {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			sdkgrpc.UnaryLoggingInterceptor(log),
			interceptor.Unary(),
		),
		grpc.ChainStreamInterceptor(interceptor.Stream()),
	)
	pb.RegisterInboxServiceServer(s, inboxServer)
	return s
}
