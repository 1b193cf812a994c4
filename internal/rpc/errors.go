package rpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/signalsfoundry/mission-designer/core"
	"github.com/signalsfoundry/mission-designer/kb"
)

var (
	// ErrInvalidRequest is returned for requests missing required fields.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound is returned when a solution has no evaluation to report.
	ErrNotFound = errors.New("not found")
)

// ToStatusError maps mission registry errors onto gRPC status codes.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, kb.ErrMissionNotFound),
		errors.Is(err, core.ErrSolutionNotFound):
		return status.Error(codes.NotFound, err.Error())

	case errors.Is(err, ErrInvalidRequest),
		core.IsConstructionError(err):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, kb.ErrMissionExists),
		errors.Is(err, core.ErrSolutionExists),
		errors.Is(err, core.ErrDuplicateID):
		return status.Error(codes.AlreadyExists, err.Error())

	default:
		return status.Error(codes.Internal, err.Error())
	}
}
