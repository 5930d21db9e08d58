// Package grpcerr maps domain errors to gRPC status errors.
package grpcerr

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var codeOf = []struct {
	err  error
	code codes.Code
}{
	{model.ErrNotFound, codes.NotFound},
	{model.ErrPermissionDenied, codes.PermissionDenied},
	{model.ErrWarehouseForbidden, codes.PermissionDenied},
	{model.ErrInvalidArgument, codes.InvalidArgument},
	{model.ErrEmptyOrder, codes.InvalidArgument},
	{model.ErrInactiveCustomer, codes.InvalidArgument},
	{model.ErrInactiveProduct, codes.InvalidArgument},
	{model.ErrWarehouseRequired, codes.InvalidArgument},
	{model.ErrDuplicateStock, codes.AlreadyExists},
	{model.ErrDuplicateSKU, codes.AlreadyExists},
	{model.ErrUsernameTaken, codes.AlreadyExists},
	{model.ErrInsufficientStock, codes.FailedPrecondition},
	{model.ErrInvalidTransition, codes.FailedPrecondition},
	{model.ErrAlreadyCancelled, codes.FailedPrecondition},
	{model.ErrOrderLocked, codes.FailedPrecondition},
	{model.ErrConcurrentUpdate, codes.Aborted},
	{model.ErrBusy, codes.Unavailable},
	{auth.ErrInvalidCredentials, codes.Unauthenticated},
	{auth.ErrInvalidToken, codes.Unauthenticated},
	{context.Canceled, codes.Canceled},
	{context.DeadlineExceeded, codes.DeadlineExceeded},
}

// From converts err into a status error. Unknown errors are logged and
// reported as Internal without leaking their text.
func From(ctx context.Context, log logger.ZapLogger, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var shortage *model.StockShortageError
	if errors.As(err, &shortage) {
		return status.Error(codes.FailedPrecondition, shortage.Localize(auth.Languages(ctx)...))
	}

	for _, c := range codeOf {
		if errors.Is(err, c.err) {
			return status.Error(c.code, err.Error())
		}
	}

	log.Error("unhandled error", zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}
