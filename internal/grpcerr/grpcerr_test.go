package grpcerr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/model"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestFromMapsDomainErrors(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{model.ErrNotFound, codes.NotFound},
		{model.Invalid("name", "too short"), codes.InvalidArgument},
		{fmt.Errorf("%w: Laptop", model.ErrInactiveProduct), codes.InvalidArgument},
		{fmt.Errorf("save: %w", model.ErrDuplicateSKU), codes.AlreadyExists},
		{model.ErrOrderLocked, codes.FailedPrecondition},
		{model.ErrConcurrentUpdate, codes.Aborted},
		{model.ErrBusy, codes.Unavailable},
		{auth.ErrInvalidCredentials, codes.Unauthenticated},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{status.Error(codes.ResourceExhausted, "slow down"), codes.ResourceExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.code, status.Code(From(context.Background(), logger.NewNop(), tt.err)))
		})
	}
}

func TestFromHidesUnknownErrors(t *testing.T) {
	err := From(context.Background(), logger.NewNop(), errors.New("pq: connection refused"))
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, "internal error", st.Message())
	assert.NoError(t, From(context.Background(), logger.NewNop(), nil))
}

func TestFromLocalizesShortage(t *testing.T) {
	shortage := &model.StockShortageError{
		WarehouseName: "Milano",
		Shortages:     []model.Shortage{{ProductID: "p-1", ProductName: "Laptop", Requested: 5, Available: 2}},
	}

	en := From(context.Background(), logger.NewNop(), shortage)
	assert.Equal(t, codes.FailedPrecondition, status.Code(en))
	assert.Contains(t, status.Convert(en).Message(), "Laptop")

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("accept-language", "it"))
	it := From(ctx, logger.NewNop(), shortage)
	assert.Contains(t, status.Convert(it).Message(), "scorte insufficienti presso Milano")
}
