package middleware

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Authenticator validates a bearer token and returns a context carrying the
// caller identity.
type Authenticator func(ctx context.Context, token string) (context.Context, error)

// ContextInterceptor authenticates every call except the listed public
// methods (full method names, e.g. "/omnipos.erp.v1.AccountService/Login").
// Public methods still get the identity attached when a valid token is sent.
func ContextInterceptor(authn Authenticator, publicMethods ...string) grpc.UnaryServerInterceptor {
	public := make(map[string]bool, len(publicMethods))
	for _, m := range publicMethods {
		public[m] = true
	}

	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		token := bearerToken(ctx)
		if token == "" {
			if public[info.FullMethod] || strings.HasPrefix(info.FullMethod, "/grpc.health.v1.Health/") {
				return handler(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, "missing bearer token")
		}

		authCtx, err := authn(ctx, token)
		if err != nil {
			if public[info.FullMethod] {
				return handler(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		return handler(authCtx, req)
	}
}

func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return ""
	}
	v := strings.TrimSpace(vals[0])
	if len(v) > 7 && strings.EqualFold(v[:7], "bearer ") {
		return strings.TrimSpace(v[7:])
	}
	return ""
}

func LoggingInterceptor(log logger.ZapLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("duration", time.Since(start)),
			zap.String("code", status.Code(err).String()),
		}
		switch status.Code(err) {
		case codes.OK:
			log.Debug("rpc completed", fields...)
		case codes.Internal, codes.Unknown, codes.DataLoss:
			log.Error("rpc failed", append(fields, zap.Error(err))...)
		default:
			log.Info("rpc rejected", append(fields, zap.Error(err))...)
		}
		return resp, err
	}
}

func RecoveryInterceptor(log logger.ZapLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic in rpc handler",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
