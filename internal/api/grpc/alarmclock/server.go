package alarmclock

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/platform/permission"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	Schedule(ctx context.Context, fireAt time.Time, message string) (domain.Record, error)
	Cancel(ctx context.Context) (domain.Record, bool, error)
	Status(ctx context.Context) *domain.State
	Alert(ctx context.Context) Alert
	Dismiss(ctx context.Context) bool
	Permissions(ctx context.Context) map[permission.Permission]permission.Outcome
	SetPermission(ctx context.Context, p permission.Permission, granted bool) map[permission.Permission]permission.Outcome
}

// Server implements AlarmClockServiceServer.
type Server struct {
	// service provides the business logic.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// Schedule arms an alarm and returns the new status.
func (s *Server) Schedule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	request, err := DecodeScheduleRequest(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid schedule request: %v", err)
	}

	if _, err = s.service.Schedule(ctx, request.FireAt, request.Message); err != nil {
		return nil, ToStatus(err)
	}

	return encoded(EncodeState(s.service.Status(ctx)))
}

// Cancel disarms the armed alarm.
func (s *Server) Cancel(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	record, cancelled, err := s.service.Cancel(ctx)
	if err != nil {
		return nil, ToStatus(err)
	}

	return encoded(EncodeCancelResult(record, cancelled))
}

// GetStatus returns the armed slot.
func (s *Server) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return encoded(EncodeState(s.service.Status(ctx)))
}

// GetAlert returns the alert surface state.
func (s *Server) GetAlert(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return encoded(EncodeAlert(s.service.Alert(ctx)))
}

// Dismiss closes the alert surface.
func (s *Server) Dismiss(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return encoded(EncodeDismissResult(s.service.Dismiss(ctx)))
}

// GetPermissions returns the current grants.
func (s *Server) GetPermissions(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return encoded(EncodePermissions(s.service.Permissions(ctx)))
}

// SetPermission grants or revokes a capability.
func (s *Server) SetPermission(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	p, granted, err := DecodePermissionRequest(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid permission request: %v", err)
	}

	return encoded(EncodePermissions(s.service.SetPermission(ctx, p, granted)))
}

func encoded(doc *structpb.Struct, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}

	return doc, nil
}
