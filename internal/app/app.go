// app реализует контейнер состояния клиента Cowele.
//
// Объединяет сессию, кэш сущностей, контроллер мутаций, форму регистрации,
// контроллер карты и маршрутизатор вкладок. Каждое действие пользователя выполняется
// под одним мьютексом действий: шаги внутри действия строго последовательны,
// следующее действие видит либо все его эффекты, либо ни одного.
// Чтение состояния мьютекс действий не берёт: компоненты отдают копии.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/haroldove90-spec/Cowele/internal/cache"
	"github.com/haroldove90-spec/Cowele/internal/geo"
	"github.com/haroldove90-spec/Cowele/internal/geolocation"
	"github.com/haroldove90-spec/Cowele/internal/mapfocus"
	"github.com/haroldove90-spec/Cowele/internal/metrics"
	"github.com/haroldove90-spec/Cowele/internal/models"
	"github.com/haroldove90-spec/Cowele/internal/regform"
	"github.com/haroldove90-spec/Cowele/internal/router"
	"github.com/haroldove90-spec/Cowele/internal/service"
	"github.com/haroldove90-spec/Cowele/internal/session"
	"github.com/haroldove90-spec/Cowele/internal/storage"
	"github.com/haroldove90-spec/Cowele/pkg/log"
	"github.com/jonboulle/clockwork"
)

// Branding: название и изображения бренда для презентационного слоя.
type Branding struct {
	Name   string `json:"name"`
	Logo   string `json:"logo"`
	Icon   string `json:"icon"`
	Splash string `json:"splash"`
}

// Deps: зависимости приложения. Clock и Metrics необязательны.
type Deps struct {
	Store         storage.Store
	Objects       storage.Objects
	KV            storage.KV
	Roster        *session.Roster
	Clock         clockwork.Clock
	Metrics       *metrics.Metrics
	Timings       mapfocus.Timings
	Branding      Branding
	DefaultPhoto  string
	DefaultAvatar string
}

// App: контейнер состояния.
type App struct {
	mu sync.Mutex

	sessions *session.Store
	cache    *cache.Cache
	svc      *service.Service
	mapc     *mapfocus.Controller
	form     *regform.Form
	router   *router.Router
	clock    clockwork.Clock

	branding      Branding
	defaultAvatar string

	// состояние, не принадлежащее компонентам; пишется под mu, читается под stateMu
	stateMu     sync.RWMutex
	ack         string
	location    *geo.Point
	profileForm ProfileForm
	reported    *geolocation.Reported
}

// New собирает приложение.
func New(d Deps) *App {
	clock := d.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	sessions := session.New(d.Store, d.KV, d.Roster)
	c := cache.New(d.Store, d.DefaultPhoto, d.Metrics)

	svc := service.New(service.Deps{
		Places:   d.Store,
		Reviews:  d.Store,
		Profiles: d.Store,
		Objects:  d.Objects,
		Sessions: sessions,
		Cache:    c,
		Clock:    clock,
		Metrics:  d.Metrics,
	})

	return &App{
		sessions:      sessions,
		cache:         c,
		svc:           svc,
		mapc:          mapfocus.New(clock, d.Timings, d.Metrics),
		form:          regform.New(d.DefaultPhoto),
		router:        router.New(),
		clock:         clock,
		branding:      d.Branding,
		defaultAvatar: d.DefaultAvatar,
	}
}

// Start восстанавливает сессию, загружает места, запускает контроллер карты
// и однократный запрос геолокации. Не блокируется.
func (a *App) Start(ctx context.Context, locator geolocation.Provider, geoTimeout time.Duration) {
	const op = "app/Start"

	lg := log.Op(ctx, op)

	a.mu.Lock()

	if sess, ok := a.sessions.Restore(ctx); ok {
		a.router.Reset(router.Landing(sess.IsRealAdmin))
		a.seedProfileForm(sess)
	}

	a.refreshPlacesLocked(ctx)

	if _, ok := a.sessions.Current(); ok {
		a.onTabEnteredLocked(ctx, a.router.Active())
	}

	a.mu.Unlock()

	a.mapc.Start(ctx)

	if locator == nil {
		return
	}

	if r, ok := locator.(*geolocation.Reported); ok {
		a.stateMu.Lock()
		a.reported = r
		a.stateMu.Unlock()
	}

	fut := geolocation.Request(ctx, locator, geoTimeout)

	go func() {
		p, err := fut.Result()
		if err != nil {
			lg.Warn("geolocation unavailable", "err", err)
			return
		}

		a.applyLocation(ctx, p)
	}()
}

// applyLocation: ветка успеха геолокации: маркер пользователя и координаты формы по умолчанию.
func (a *App) applyLocation(ctx context.Context, p geo.Point) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stateMu.Lock()
	a.location = &p
	a.stateMu.Unlock()

	a.mapc.ShowUserMarker(p)

	if a.form.ApplyLocationFix(p) {
		a.mapc.PickerMoved(a.form.Position())
	}

	log.From(ctx).Info("device location acquired", "op", "app/applyLocation")
}

// ReportLocation принимает позицию от презентационного слоя.
func (a *App) ReportLocation(p geo.Point) error {
	a.stateMu.RLock()
	r := a.reported
	a.stateMu.RUnlock()

	if r == nil {
		return fmt.Errorf("app/ReportLocation: %w", geolocation.ErrUnavailable)
	}

	return r.Report(p)
}

// Location: позиция устройства, если известна.
func (a *App) Location() (geo.Point, bool) {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()

	if a.location == nil {
		return geo.Point{}, false
	}

	return *a.location, true
}

// lockMutation берёт мьютекс действий для мутации. Если мутация уже выполняется: ErrBusy.
func (a *App) lockMutation(op string) error {
	if a.svc.Submitting() {
		return fmt.Errorf("%s: %w", op, service.ErrBusy)
	}

	a.mu.Lock()

	return nil
}

// refreshPlacesLocked перезагружает места и синхронизирует карту. Ошибка только логируется.
func (a *App) refreshPlacesLocked(ctx context.Context) {
	if _, err := a.cache.RefreshPlaces(ctx); err != nil {
		log.From(ctx).Warn("places refresh failed", "op", "app/refreshPlaces", "err", err)
		return
	}

	a.syncMap()
}

// syncMap передаёт карте актуальный список мест и снятый кэшем выбор.
func (a *App) syncMap() {
	places := a.cache.ValidPlaces()

	points := make([]geo.Point, len(places))
	for i, p := range places {
		points[i] = geo.Point{Lat: p.Lat, Lng: p.Lng}
	}

	a.mapc.SetPlaces(points)

	if a.cache.SelectedID() == "" {
		a.mapc.Select("", geo.Point{})
	}
}

// onTabEnteredLocked: политика обновления при входе на вкладку.
func (a *App) onTabEnteredLocked(ctx context.Context, tab router.Tab) {
	lg := log.Op(ctx, "app/onTabEntered", "tab", string(tab))

	if tab == router.TabUsers || tab == router.TabDashboard {
		if err := a.cache.RefreshProfiles(ctx); err != nil {
			lg.Warn("profiles refresh failed", "err", err)
		}
	}

	if tab == router.TabReviewsFeed || tab == router.TabDashboard {
		if err := a.cache.RefreshReviews(ctx); err != nil {
			lg.Warn("reviews refresh failed", "err", err)
		}
	}
}

// SubscribeMap: поток команд карты.
func (a *App) SubscribeMap() (<-chan mapfocus.Command, func()) {
	return a.mapc.Subscribe()
}

// Submitting: флаг выполняющейся мутации.
func (a *App) Submitting() bool {
	return a.svc.Submitting()
}

func (a *App) requireSession(op string) (models.Session, error) {
	sess, ok := a.sessions.Current()
	if !ok {
		return models.Session{}, fmt.Errorf("%s: %w", op, session.ErrNotLoggedIn)
	}

	return sess, nil
}

func (a *App) requireAdmin(op string) error {
	if _, err := a.requireSession(op); err != nil {
		return err
	}

	if !a.sessions.IsAdminAuthorized() {
		return fmt.Errorf("%s: %w", op, service.ErrForbidden)
	}

	return nil
}
