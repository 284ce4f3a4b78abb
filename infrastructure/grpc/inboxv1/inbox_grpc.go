package inboxv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	InboxService_Send_FullMethodName              = "/inbox.v1.InboxService/Send"
	InboxService_FetchHistory_FullMethodName      = "/inbox.v1.InboxService/FetchHistory"
	InboxService_MarkSeen_FullMethodName          = "/inbox.v1.InboxService/MarkSeen"
	InboxService_Summarize_FullMethodName         = "/inbox.v1.InboxService/Summarize"
	InboxService_StartConversation_FullMethodName = "/inbox.v1.InboxService/StartConversation"
	InboxService_Connect_FullMethodName           = "/inbox.v1.InboxService/Connect"
)

// InboxServiceClient is the client API for InboxService.
type InboxServiceClient interface {
	Send(ctx context.Context, in *SendRequest, opts ...grpc.CallOption) (*SendResponse, error)
	FetchHistory(ctx context.Context, in *FetchHistoryRequest, opts ...grpc.CallOption) (*FetchHistoryResponse, error)
	MarkSeen(ctx context.Context, in *MarkSeenRequest, opts ...grpc.CallOption) (*MarkSeenResponse, error)
	Summarize(ctx context.Context, in *SummaryRequest, opts ...grpc.CallOption) (*SummaryResponse, error)
	StartConversation(ctx context.Context, in *StartConversationRequest, opts ...grpc.CallOption) (*StartConversationResponse, error)
	Connect(ctx context.Context, in *ConnectRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[InboxEvent], error)
}

type inboxServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewInboxServiceClient(cc grpc.ClientConnInterface) InboxServiceClient {
	return &inboxServiceClient{cc}
}

// callOptions forces the JSON codec on every call.
func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.StaticMethod(), grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *inboxServiceClient) Send(ctx context.Context, in *SendRequest, opts ...grpc.CallOption) (*SendResponse, error) {
	out := new(SendResponse)
	if err := c.cc.Invoke(ctx, InboxService_Send_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inboxServiceClient) FetchHistory(ctx context.Context, in *FetchHistoryRequest, opts ...grpc.CallOption) (*FetchHistoryResponse, error) {
	out := new(FetchHistoryResponse)
	if err := c.cc.Invoke(ctx, InboxService_FetchHistory_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inboxServiceClient) MarkSeen(ctx context.Context, in *MarkSeenRequest, opts ...grpc.CallOption) (*MarkSeenResponse, error) {
	out := new(MarkSeenResponse)
	if err := c.cc.Invoke(ctx, InboxService_MarkSeen_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inboxServiceClient) Summarize(ctx context.Context, in *SummaryRequest, opts ...grpc.CallOption) (*SummaryResponse, error) {
	out := new(SummaryResponse)
	if err := c.cc.Invoke(ctx, InboxService_Summarize_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inboxServiceClient) StartConversation(ctx context.Context, in *StartConversationRequest, opts ...grpc.CallOption) (*StartConversationResponse, error) {
	out := new(StartConversationResponse)
	if err := c.cc.Invoke(ctx, InboxService_StartConversation_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *inboxServiceClient) Connect(ctx context.Context, in *ConnectRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[InboxEvent], error) {
	stream, err := c.cc.NewStream(ctx, &InboxService_ServiceDesc.Streams[0], InboxService_Connect_FullMethodName, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[ConnectRequest, InboxEvent]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// InboxServiceServer is the server API for InboxService.
type InboxServiceServer interface {
	Send(context.Context, *SendRequest) (*SendResponse, error)
	FetchHistory(context.Context, *FetchHistoryRequest) (*FetchHistoryResponse, error)
	MarkSeen(context.Context, *MarkSeenRequest) (*MarkSeenResponse, error)
	Summarize(context.Context, *SummaryRequest) (*SummaryResponse, error)
	StartConversation(context.Context, *StartConversationRequest) (*StartConversationResponse, error)
	Connect(*ConnectRequest, InboxService_ConnectServer) error
	mustEmbedUnimplementedInboxServiceServer()
}

type InboxService_ConnectServer = grpc.ServerStreamingServer[InboxEvent]

// UnimplementedInboxServiceServer must be embedded to have forward compatible implementations.
type UnimplementedInboxServiceServer struct{}

func (UnimplementedInboxServiceServer) Send(context.Context, *SendRequest) (*SendResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Send not implemented")
}
func (UnimplementedInboxServiceServer) FetchHistory(context.Context, *FetchHistoryRequest) (*FetchHistoryResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method FetchHistory not implemented")
}
func (UnimplementedInboxServiceServer) MarkSeen(context.Context, *MarkSeenRequest) (*MarkSeenResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method MarkSeen not implemented")
}
func (UnimplementedInboxServiceServer) Summarize(context.Context, *SummaryRequest) (*SummaryResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Summarize not implemented")
}
func (UnimplementedInboxServiceServer) StartConversation(context.Context, *StartConversationRequest) (*StartConversationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method StartConversation not implemented")
}
func (UnimplementedInboxServiceServer) Connect(*ConnectRequest, InboxService_ConnectServer) error {
	return status.Errorf(codes.Unimplemented, "method Connect not implemented")
}
func (UnimplementedInboxServiceServer) mustEmbedUnimplementedInboxServiceServer() {}

func RegisterInboxServiceServer(s grpc.ServiceRegistrar, srv InboxServiceServer) {
	s.RegisterService(&InboxService_ServiceDesc, srv)
}

func _InboxService_Send_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SendRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InboxServiceServer).Send(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: InboxService_Send_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InboxServiceServer).Send(ctx, req.(*SendRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _InboxService_FetchHistory_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(FetchHistoryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InboxServiceServer).FetchHistory(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: InboxService_FetchHistory_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InboxServiceServer).FetchHistory(ctx, req.(*FetchHistoryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _InboxService_MarkSeen_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(MarkSeenRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InboxServiceServer).MarkSeen(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: InboxService_MarkSeen_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InboxServiceServer).MarkSeen(ctx, req.(*MarkSeenRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _InboxService_Summarize_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SummaryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InboxServiceServer).Summarize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: InboxService_Summarize_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InboxServiceServer).Summarize(ctx, req.(*SummaryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _InboxService_StartConversation_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StartConversationRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InboxServiceServer).StartConversation(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: InboxService_StartConversation_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InboxServiceServer).StartConversation(ctx, req.(*StartConversationRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _InboxService_Connect_Handler(srv any, stream grpc.ServerStream) error {
	m := new(ConnectRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(InboxServiceServer).Connect(m, &grpc.GenericServerStream[ConnectRequest, InboxEvent]{ServerStream: stream})
}

// InboxService_ServiceDesc is the grpc.ServiceDesc for InboxService.
var InboxService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "inbox.v1.InboxService",
	HandlerType: (*InboxServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Send", Handler: _InboxService_Send_Handler},
		{MethodName: "FetchHistory", Handler: _InboxService_FetchHistory_Handler},
		{MethodName: "MarkSeen", Handler: _InboxService_MarkSeen_Handler},
		{MethodName: "Summarize", Handler: _InboxService_Summarize_Handler},
		{MethodName: "StartConversation", Handler: _InboxService_StartConversation_Handler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Connect",
			Handler:       _InboxService_Connect_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "inbox/v1/inbox.proto",
}
