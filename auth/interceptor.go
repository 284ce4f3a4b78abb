package auth

import (
	"context"
	"inbox-lab/domain"
	"log/slog"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// Interceptor validates the bearer token of every incoming call and injects the
// verified user ID into the context. Handlers trust that identity.
type Interceptor struct {
	log    *slog.Logger
	tokens *TokenManager
	public map[string]struct{}
}

// NewInterceptor builds the interceptors. publicMethods are served without a token.
func NewInterceptor(log *slog.Logger, tokens *TokenManager, publicMethods ...string) *Interceptor {
	public := make(map[string]struct{}, len(publicMethods))
	for _, m := range publicMethods {
		public[m] = struct{}{}
	}
	return &Interceptor{log: log.With("component", "auth"), tokens: tokens, public: public}
}

func (i *Interceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if i.isPublic(info.FullMethod) {
			return handler(ctx, req)
		}
		newCtx, err := i.authenticate(ctx)
		if err != nil {
			return nil, err
		}
		return handler(newCtx, req)
	}
}

func (i *Interceptor) Stream() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if i.isPublic(info.FullMethod) {
			return handler(srv, ss)
		}
		newCtx, err := i.authenticate(ss.Context())
		if err != nil {
			return err
		}
		return handler(srv, &authenticatedStream{ServerStream: ss, ctx: newCtx})
	}
}

func (i *Interceptor) authenticate(ctx context.Context) (context.Context, error) {
	// 1. Extract metadata (headers) from the incoming gRPC context
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "metadata is missing")
	}

	// 2. Expecting the standard "Bearer <token>" format
	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, status.Error(codes.Unauthenticated, "authorization token is missing")
	}
	tokenStr := strings.TrimPrefix(values[0], "Bearer ")

	// 3. Validate the JWT and extract claims
	claims, err := i.tokens.ValidateToken(tokenStr)
	if err != nil {
		i.log.Debug("Token rejected", "error", err)
		return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
	}

	// 4. Inject user identity into context for downstream layers
	return context.WithValue(ctx, UserIDKey, domain.UserID(claims.UserID)), nil
}

func (i *Interceptor) isPublic(method string) bool {
	_, ok := i.public[method]
	return ok
}

// UserIDFromContext returns the identity injected by the interceptors.
func UserIDFromContext(ctx context.Context) (domain.UserID, bool) {
	userID, ok := ctx.Value(UserIDKey).(domain.UserID)
	return userID, ok && userID != ""
}

// WithBearer attaches token to the outgoing metadata of a client call.
func WithBearer(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

type authenticatedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authenticatedStream) Context() context.Context {
	return s.ctx
}
