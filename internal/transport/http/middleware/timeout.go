package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	apierrors "github.com/haroldove90-spec/Cowele/internal/transport/http/errors"
)

// Timeout ограничивает обработку запроса временем d; более ранний дедлайн родителя сохраняется.
//
// Если обработчик вернулся после истечения дедлайна и ничего не записал, клиент получает
// 504/deadline_exceeded. Апгрейд на WebSocket (поток команд карты) не ограничивается.
// d <= 0 делает мидлвар no-op.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isWebSocketUpgrade(r) {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			if sw.status == 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				apierrors.WriteError(sw, r, ctx.Err())
			}
		})
	}
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}
