package interceptors

import (
	"context"
	"log/slog"
	"net"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/haroldove90-spec/Cowele/pkg/log"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// record: одна захваченная запись лога.
type record struct {
	msg   string
	lvl   slog.Level
	attrs map[string]any
}

// capture: общий журнал записей для capHandler и его производных (With).
type capture struct {
	mu      sync.Mutex
	records []record
}

func (c *capture) last() record {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.records) == 0 {
		return record{}
	}

	return c.records[len(c.records)-1]
}

func (c *capture) find(msg string) (record, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		found record
		n     int
	)
	for _, r := range c.records {
		if r.msg == msg {
			found = r
			n++
		}
	}

	return found, n
}

// capHandler: slog.Handler, который складывает записи в capture.
type capHandler struct {
	c    *capture
	base []slog.Attr
}

func newCapLogger() (*slog.Logger, *capture) {
	c := &capture{}
	return slog.New(&capHandler{c: c}), c
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	out := make(map[string]any, len(h.base)+8)
	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})

	h.c.mu.Lock()
	h.c.records = append(h.c.records, record{msg: r.Message, lvl: r.Level, attrs: out})
	h.c.mu.Unlock()

	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &capHandler{c: h.c, base: append(slices.Clone(h.base), attrs...)}
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

func okHandler(context.Context, any) (any, error) { return "ok", nil }

// TestUnary_HealthCheck_LogsComponentAtDebug:
// health-запрос: request_id из metadata, peer, компонент из запроса, уровень Debug.
func TestUnary_HealthCheck_LogsComponentAtDebug(t *testing.T) {
	t.Parallel()

	logger, c := newCapLogger()

	md := metadata.New(map[string]string{"x-request-id": "rid-123"})
	ctx := metadata.NewIncomingContext(context.Background(), md)
	ctx = peer.NewContext(ctx, &peer.Peer{
		Addr: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 50051},
	})

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	req := &healthpb.HealthCheckRequest{Service: "cowele.store"}

	resp, err := Unary(Options{Logger: logger})(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		time.Sleep(5 * time.Millisecond)
		return "ok", nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok", resp)

	last := c.last()
	require.Equal(t, "grpc", last.msg)
	require.Equal(t, slog.LevelDebug, last.lvl)
	require.Equal(t, "rid-123", last.attrs["request_id"])
	require.Equal(t, info.FullMethod, last.attrs["method"])
	require.Equal(t, "127.0.0.1:50051", last.attrs["peer"])
	require.Equal(t, "cowele.store", last.attrs["component"])
	require.Equal(t, "OK", last.attrs["code"])

	d, ok := last.attrs["dur"].(time.Duration)
	require.True(t, ok)
	require.Greater(t, d, time.Duration(0))
}

// TestUnary_EmptyServiceIsProcess: пустой service означает процесс целиком.
func TestUnary_EmptyServiceIsProcess(t *testing.T) {
	t.Parallel()

	logger, c := newCapLogger()
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	_, err := Unary(Options{Logger: logger})(context.Background(), &healthpb.HealthCheckRequest{}, info, okHandler)
	require.NoError(t, err)
	require.Equal(t, ProcessComponent, c.last().attrs["component"])
}

// TestUnary_GeneratesUUID_AndWarnsOnError:
// без x-request-id генерируется UUID; ошибка пишется на Warn с кодом из status.
func TestUnary_GeneratesUUID_AndWarnsOnError(t *testing.T) {
	t.Parallel()

	logger, c := newCapLogger()
	info := &grpc.UnaryServerInfo{FullMethod: "/cowele.Admin/Reload"}

	_, err := Unary(Options{Logger: logger})(context.Background(), "req", info, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.InvalidArgument, "bad input")
	})
	require.Error(t, err)

	last := c.last()
	require.Equal(t, "grpc", last.msg)
	require.Equal(t, slog.LevelWarn, last.lvl)
	require.Equal(t, "InvalidArgument", last.attrs["code"])
	require.NotContains(t, last.attrs, "component")

	rid, _ := last.attrs["request_id"].(string)
	_, parseErr := uuid.Parse(rid)
	require.NoError(t, parseErr)
}

// TestUnary_PutsLoggerIntoContext: обработчик пишет через логгер из контекста.
func TestUnary_PutsLoggerIntoContext(t *testing.T) {
	t.Parallel()

	logger, c := newCapLogger()

	md := metadata.New(map[string]string{"x-request-id": "abc"})
	ctx := metadata.NewIncomingContext(context.Background(), md)
	info := &grpc.UnaryServerInfo{FullMethod: "/cowele.Admin/UseLogger"}

	_, err := Unary(Options{Logger: logger})(ctx, "req", info, func(ctx context.Context, req any) (any, error) {
		log.Op(ctx, "grpc/UseLogger").Info("handler")
		return "ok", nil
	})
	require.NoError(t, err)

	rec, n := c.find("handler")
	require.Equal(t, 1, n)
	require.Equal(t, "abc", rec.attrs["request_id"])
	require.Equal(t, "grpc/UseLogger", rec.attrs["op"])
	require.Equal(t, slog.LevelInfo, c.last().lvl)
	require.Equal(t, "-", c.last().attrs["peer"])
}

// TestUnary_PanicToInternal: паника превращается в codes.Internal, стек пишется в лог.
func TestUnary_PanicToInternal(t *testing.T) {
	t.Parallel()

	logger, c := newCapLogger()
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	resp, err := Unary(Options{Logger: logger})(context.Background(), &healthpb.HealthCheckRequest{}, info,
		func(ctx context.Context, req any) (any, error) {
			panic("boom")
		})

	require.Nil(t, resp)
	require.Equal(t, codes.Internal, status.Code(err))

	rec, n := c.find("panic_recovered")
	require.Equal(t, 1, n)
	require.Equal(t, slog.LevelError, rec.lvl)
	require.Equal(t, info.FullMethod, rec.attrs["method"])
	require.NotEmpty(t, rec.attrs["stack"])

	last := c.last()
	require.Equal(t, "grpc", last.msg)
	require.Equal(t, slog.LevelWarn, last.lvl)
	require.Equal(t, "Internal", last.attrs["code"])
}

// TestUnary_Timeout: дедлайн навешивается только при его отсутствии.
func TestUnary_Timeout(t *testing.T) {
	t.Parallel()

	info := &grpc.UnaryServerInfo{FullMethod: "/cowele.Admin/Sleep"}
	logger, _ := newCapLogger()

	t.Run("sets deadline", func(t *testing.T) {
		const d = 40 * time.Millisecond

		start := time.Now()
		_, err := Unary(Options{Logger: logger, Timeout: d})(context.Background(), "req", info,
			func(ctx context.Context, req any) (any, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			})

		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.GreaterOrEqual(t, time.Since(start), d)
	})

	t.Run("keeps existing deadline", func(t *testing.T) {
		parent, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
		defer cancel()

		want, _ := parent.Deadline()

		var got time.Time
		_, err := Unary(Options{Logger: logger, Timeout: time.Second})(parent, "req", info,
			func(ctx context.Context, req any) (any, error) {
				got, _ = ctx.Deadline()
				return "ok", nil
			})

		require.NoError(t, err)
		require.WithinDuration(t, want, got, time.Millisecond)
	})

	t.Run("zero disables", func(t *testing.T) {
		_, err := Unary(Options{Logger: logger})(context.Background(), "req", info,
			func(ctx context.Context, req any) (any, error) {
				_, hasDL := ctx.Deadline()
				require.False(t, hasDL)
				return "ok", nil
			})

		require.NoError(t, err)
	})
}

// TestUnary_HealthServer: интерсептор перед настоящим health-сервером.
func TestUnary_HealthServer(t *testing.T) {
	t.Parallel()

	logger, c := newCapLogger()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(Unary(Options{Logger: logger, Timeout: time.Second})))

	hs := health.NewServer()
	hs.SetServingStatus("cowele.store", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	client := healthpb.NewHealthClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: "cowele.store"})
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	last := c.last()
	require.Equal(t, "cowele.store", last.attrs["component"])
	require.Equal(t, slog.LevelDebug, last.lvl)

	_, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "cowele.unknown"})
	require.Equal(t, codes.NotFound, status.Code(err))

	last = c.last()
	require.Equal(t, "cowele.unknown", last.attrs["component"])
	require.Equal(t, slog.LevelWarn, last.lvl)
	require.Equal(t, "NotFound", last.attrs["code"])
}
