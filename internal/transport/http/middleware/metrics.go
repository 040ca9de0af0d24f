package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/haroldove90-spec/Cowele/internal/metrics"
)

// Metrics считает запросы и латентность по шаблону маршрута chi.
// Незарегистрированные пути попадают под route="unmatched", чтобы не раздувать кардинальность.
func Metrics(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)
			start := time.Now()

			next.ServeHTTP(sw, r)

			status := sw.status
			if status == 0 {
				status = http.StatusOK
			}

			m.Request(r.Method, routePattern(r), status, time.Since(start))
		})
	}
}

// routePattern: шаблон маршрута chi или "unmatched".
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}

	return "unmatched"
}
