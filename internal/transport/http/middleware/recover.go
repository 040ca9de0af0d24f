package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/haroldove90-spec/Cowele/internal/metrics"
	apierrors "github.com/haroldove90-spec/Cowele/internal/transport/http/errors"
	logctx "github.com/haroldove90-spec/Cowele/pkg/log"
)

// Recover перехватывает панику обработчика. Стек пишется в лог запроса, паника учитывается
// в cowele_http_panics_total по шаблону маршрута. Если ответ ещё не начат, клиент получает
// 500/internal с общим сообщением ядра ("❌ Error.").
//
// http.ErrAbortHandler пробрасывается дальше: так net/http обрывает соединение.
func Recover(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				route := routePattern(r)
				m.Panic(route)

				logctx.From(r.Context()).LogAttrs(r.Context(), slog.LevelError, "panic_recovered",
					slog.String("method", r.Method),
					slog.String("route", route),
					slog.Any("reason", rec),
					slog.String("stack", string(debug.Stack())),
				)

				if sw.status != 0 {
					return
				}

				apierrors.WriteError(sw, r, apierrors.ErrInternal)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
