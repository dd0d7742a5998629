package frameapi

import (
	"errors"

	"github.com/signalsfoundry/refframe/frames"
	"github.com/signalsfoundry/refframe/internal/conversion"
	"github.com/signalsfoundry/refframe/sites"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToStatusError maps conversion and catalogue errors onto gRPC status codes.
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, frames.ErrOriginRequired):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, ErrMalformedMessage),
		errors.Is(err, conversion.ErrInvalidRequest),
		errors.Is(err, frames.ErrUnknownFrame),
		errors.Is(err, sites.ErrInvalidSite):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, sites.ErrSiteNotFound):
		return status.Error(codes.NotFound, err.Error())

	case errors.Is(err, sites.ErrSiteExists):
		return status.Error(codes.AlreadyExists, err.Error())

	default:
		return status.Error(codes.Internal, err.Error())
	}
}
