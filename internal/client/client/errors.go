package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/repoboard/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized matches common.ErrorUnauthorized.
	ErrUnauthorized = common.ErrorUnauthorized
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.InvalidArgument:
		if ve := validationError(st); ve != nil {
			return ve
		}
		return fmt.Errorf("%w: %s", common.ErrorValidation, st.Message())
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.AlreadyExists:
		return common.ErrorAlreadyExists
	case codes.ResourceExhausted:
		return common.ErrorLimitExceeded
	case codes.PermissionDenied:
		return common.ErrorForbidden
	case codes.Unauthenticated:
		switch st.Message() {
		case common.ErrTokenExpired.Error():
			return fmt.Errorf("%w: %w", ErrUnauthorized, common.ErrTokenExpired)
		case common.ErrRefreshTokenExpired.Error():
			return fmt.Errorf("%w: %w", ErrUnauthorized, common.ErrRefreshTokenExpired)
		}
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", common.ErrorUnknownWidgetType, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

// validationError rebuilds the per-field messages from a BadRequest detail.
func validationError(st *status.Status) *common.ValidationError {
	for _, d := range st.Details() {
		br, ok := d.(*errdetails.BadRequest)
		if !ok {
			continue
		}
		ve := &common.ValidationError{}
		for _, v := range br.GetFieldViolations() {
			ve.Add(v.GetField(), v.GetDescription())
		}
		if !ve.Empty() {
			return ve
		}
	}
	return nil
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}
