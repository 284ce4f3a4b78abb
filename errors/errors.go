package errors

import (
	"context"
	stdErrors "errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrInvalidConversation = fmt.Errorf("invalid conversation")
	ErrNotAParticipant     = fmt.Errorf("not a participant")
	ErrEmptyText           = fmt.Errorf("message text is empty")
	ErrUnknownMessage      = fmt.Errorf("unknown message")
	ErrTooFewParticipants  = fmt.Errorf("a conversation needs at least two participants")
	ErrInvalidPayload      = fmt.Errorf("invalid payload")
	ErrUnauthenticated     = fmt.Errorf("unauthenticated")

	// ErrStoreUnavailable wraps any failure of the underlying storage.
	ErrStoreUnavailable = fmt.Errorf("store unavailable")
	// ErrChannelUnavailable is never fatal: persistence already succeeded when it is raised.
	ErrChannelUnavailable = fmt.Errorf("delivery channel unavailable")

	ErrInvalidTransition = fmt.Errorf("invalid view transition")

	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrEmptyWords  = fmt.Errorf("no words have been found")
)

// IsClientError reports whether err is caused by the caller (bad identifier or payload)
// and must be surfaced as is, without retry.
func IsClientError(err error) bool {
	switch {
	case stdErrors.Is(err, ErrInvalidConversation),
		stdErrors.Is(err, ErrNotAParticipant),
		stdErrors.Is(err, ErrEmptyText),
		stdErrors.Is(err, ErrUnknownMessage),
		stdErrors.Is(err, ErrTooFewParticipants),
		stdErrors.Is(err, ErrInvalidPayload):
		return true
	default:
		return false
	}
}

// MapToGRPCError translates domain errors to gRPC status errors.
// Errors already carrying a status are returned untouched.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case stdErrors.Is(err, ErrInvalidConversation), stdErrors.Is(err, ErrUnknownMessage):
		return status.Error(codes.NotFound, err.Error())
	case stdErrors.Is(err, ErrNotAParticipant):
		return status.Error(codes.PermissionDenied, err.Error())
	case stdErrors.Is(err, ErrEmptyText),
		stdErrors.Is(err, ErrTooFewParticipants),
		stdErrors.Is(err, ErrInvalidPayload):
		return status.Error(codes.InvalidArgument, err.Error())
	case stdErrors.Is(err, ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, err.Error())
	case stdErrors.Is(err, ErrStoreUnavailable), stdErrors.Is(err, ErrChannelUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case stdErrors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case stdErrors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
