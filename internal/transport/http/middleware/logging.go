package middleware

import (
	"log/slog"
	"net/http"
	"time"

	logctx "github.com/haroldove90-spec/Cowele/pkg/log"
)

// Logging кладёт в контекст логгер запроса (request_id) и по завершении пишет одну запись
// с шаблоном маршрута. Уровень зависит от статуса: 5xx Error, 4xx Warn, остальное Info.
// Для потока карты запись появляется при закрытии соединения, со статусом 101.
func Logging(l *slog.Logger) Middleware {
	if l == nil {
		l = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logctx.Into(r.Context(), l)

			rid := RequestIDFrom(ctx)
			if rid == "" {
				rid = r.Header.Get("X-Request-Id")
			}
			if rid != "" {
				ctx = logctx.With(ctx, slog.String("request_id", rid))
			}

			r = r.WithContext(ctx)

			sw := newStatusWriter(w)
			start := time.Now()

			next.ServeHTTP(sw, r)

			status := sw.status
			if status == 0 {
				status = http.StatusOK
			}

			logctx.From(ctx).LogAttrs(ctx, levelFor(status), "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("route", routePattern(r)),
				slog.Int("status", status),
				slog.Duration("dur", time.Since(start)),
				slog.Int("bytes", sw.count),
			)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
