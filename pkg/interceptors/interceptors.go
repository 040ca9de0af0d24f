// interceptors собирает серверный unary-интерсептор для gRPC health-сервиса Cowele.
//
// Один интерсептор выполняет три шага в порядке вызова:
//  1. кладёт в контекст логгер с request_id, методом, peer и проверяемым компонентом;
//  2. навешивает дедлайн Options.Timeout, если у вызова его нет;
//  3. перехватывает панику обработчика и отвечает codes.Internal.
//
// По завершении пишется одна запись "grpc": пробы health на уровне Debug,
// ответы с ошибкой на Warn, остальное на Info.
package interceptors

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/haroldove90-spec/Cowele/pkg/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// healthPrefix: методы health-сервиса.
const healthPrefix = "/grpc.health.v1.Health/"

// ProcessComponent: имя компонента для пустого service в HealthCheckRequest (процесс целиком).
const ProcessComponent = "cowele"

// Options: параметры интерсептора.
type Options struct {
	// Logger: базовый логгер; nil означает slog.Default().
	Logger *slog.Logger
	// Timeout: дедлайн вызова без собственного дедлайна; <= 0 отключает.
	Timeout time.Duration
}

// Unary возвращает интерсептор с логированием, дедлайном и восстановлением после паники.
func Unary(opts Options) grpc.UnaryServerInterceptor {
	base := opts.Logger
	if base == nil {
		base = slog.Default()
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		attrs := []any{
			slog.String("request_id", requestID(ctx)),
			slog.String("method", info.FullMethod),
			slog.String("peer", peerAddr(ctx)),
		}
		if c, ok := component(req); ok {
			attrs = append(attrs, slog.String("component", c))
		}

		l := base.With(attrs...)
		ctx = log.Into(ctx, l)

		if opts.Timeout > 0 {
			if _, ok := ctx.Deadline(); !ok {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
				defer cancel()
			}
		}

		resp, err := invoke(ctx, l, req, info, handler)

		l.Log(ctx, level(info.FullMethod, err), "grpc",
			slog.String("code", status.Code(err).String()),
			slog.Duration("dur", time.Since(start)),
		)

		return resp, err
	}
}

// invoke вызывает handler; паника превращается в codes.Internal без деталей для клиента.
func invoke(ctx context.Context, l *slog.Logger, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			l.Error("panic_recovered",
				slog.String("method", info.FullMethod),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)

			resp = nil
			err = status.Error(codes.Internal, "internal server error")
		}
	}()

	return handler(ctx, req)
}

// requestID: x-request-id из входящих metadata или новый UUID.
func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get("x-request-id"); len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}

	return uuid.NewString()
}

func peerAddr(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p != nil && p.Addr != nil {
		return p.Addr.String()
	}

	return "-"
}

// component: компонент, о котором спрашивает health-проба.
func component(req any) (string, bool) {
	hr, ok := req.(*healthpb.HealthCheckRequest)
	if !ok {
		return "", false
	}

	if hr.GetService() == "" {
		return ProcessComponent, true
	}

	return hr.GetService(), true
}

func level(method string, err error) slog.Level {
	switch {
	case status.Code(err) != codes.OK:
		return slog.LevelWarn
	case strings.HasPrefix(method, healthPrefix):
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
