package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/haroldove90-spec/Cowele/internal/config"
	"github.com/haroldove90-spec/Cowele/internal/metrics"
	"github.com/haroldove90-spec/Cowele/internal/transport/http/handlers"
	"github.com/haroldove90-spec/Cowele/internal/transport/http/middleware"
)

// Options: параметры сборки HTTP-роутера.
type Options struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Timeouts    config.TimeoutConfig
	BasePath    string // например, "/api"; если пустой: роуты регистрируются на корне.
	CORSOrigins []string
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(h *handlers.Handlers, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний). Recover внутри Logging: запись о запросе
	// получает статус 500 и request_id упавшего обработчика.
	root.Use(
		middleware.RequestID(),
		middleware.Logging(opts.Logger),
		middleware.Recover(opts.Metrics),
		middleware.Metrics(opts.Metrics),
		cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)

	api := chi.NewRouter()

	// Timeout не ограничивает апгрейд /map/stream: поток живёт до закрытия соединения.
	api.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(opts.Timeouts.Service))
		registerRoutes(r, h)
	})

	api.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(opts.Timeouts.Upload))
		r.Post("/form/photo", h.UploadPhoto)
		r.Post("/profile/avatar", h.UploadAvatar)
	})

	if opts.BasePath != "" {
		root.Mount(opts.BasePath, api)
		return root
	}

	root.Mount("/", api)

	return root
}

// registerRoutes регистрирует эндпойнты с общим дедлайном действия (кроме загрузок).
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	r.Get("/state", h.GetState)

	// auth
	r.Post("/auth/login", h.Login)
	r.Post("/auth/register", h.Register)
	r.Post("/auth/logout", h.Logout)
	r.Post("/view/toggle", h.ToggleView)
	r.Put("/tabs/{tab}", h.SwitchTab)

	// places
	r.Get("/places", h.ListPlaces)
	r.Post("/places/refresh", h.RefreshPlaces)
	r.Get("/places/{id}", h.GetPlace)
	r.Put("/places/{id}/select", h.SelectPlace)
	r.Delete("/selection", h.ClearSelection)
	r.Post("/places/{id}/show", h.ShowPlace)
	r.Post("/places/{id}/edit", h.EditPlace)
	r.Delete("/places/{id}", h.DeletePlace)
	r.Get("/places/{id}/navigate", h.Navigate)
	r.Post("/places/{id}/reviews", h.SubmitReview)

	// registration form
	r.Get("/form", h.GetForm)
	r.Patch("/form", h.PatchForm)
	r.Post("/form/focus-coords", h.FocusCoords)
	r.Post("/form/submit", h.SubmitForm)
	r.Delete("/form", h.ResetForm)

	// map
	r.Post("/map/fit", h.FitMap)
	r.Post("/map/picker/click", h.PickerClick)
	r.Post("/map/picker/zoom", h.PickerZoom)
	r.Get("/map/stream", h.MapStream)
	r.Post("/device/location", h.DeviceLocation)

	// profile & admin
	r.Get("/profile", h.GetProfile)
	r.Put("/profile", h.UpdateProfile)
	r.Get("/profiles", h.ListProfiles)
	r.Post("/profiles/refresh", h.RefreshProfiles)
	r.Patch("/profiles/{id}/status", h.SetProfileStatus)
	r.Post("/profiles/{id}/toggle", h.ToggleProfileStatus)
	r.Delete("/profiles/{id}", h.DeleteProfile)
	r.Get("/reviews", h.ListReviews)
	r.Post("/reviews/refresh", h.RefreshReviews)
	r.Get("/dashboard", h.Dashboard)
}
