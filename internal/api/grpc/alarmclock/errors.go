package alarmclock

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// ToStatus converts a domain error into a gRPC status error.
// A fire time that is not in the future depends on the current time, so it is
// OutOfRange; InvalidArgument is left to malformed requests.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.OutOfRange, err.Error())
	case errors.Is(err, domain.ErrPermissionDenied):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, domain.ErrLaunchFailure):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// FromStatus converts a gRPC status error back into a domain error that keeps
// the server's message. Codes without a domain meaning are returned unchanged.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.OutOfRange:
		return &remoteError{sentinel: domain.ErrValidation, message: st.Message()}
	case codes.PermissionDenied:
		return &remoteError{sentinel: domain.ErrPermissionDenied, message: st.Message()}
	case codes.FailedPrecondition:
		return &remoteError{sentinel: domain.ErrLaunchFailure, message: st.Message()}
	default:
		return err
	}
}

// remoteError is a domain error reported by the daemon.
type remoteError struct {
	sentinel error
	message  string
}

func (e *remoteError) Error() string {
	return e.message
}

func (e *remoteError) Unwrap() error {
	return e.sentinel
}
