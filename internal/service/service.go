// service содержит контроллер мутаций Cowele:
// - создание/редактирование/удаление мест;
// - отзывы с начислением очков;
// - загрузка фото мест и аватаров в объектное хранилище;
// - обновление своего профиля и модерация пользователей.
//
// После успешной мутации соответствующий список кэша перезагружается целиком.
// При ошибке удалённого хранилища кэш не меняется.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/haroldove90-spec/Cowele/internal/metrics"
	"github.com/haroldove90-spec/Cowele/internal/models"
	"github.com/haroldove90-spec/Cowele/internal/storage"
	"github.com/haroldove90-spec/Cowele/pkg/log"
	"github.com/jonboulle/clockwork"
)

var (
	// ErrNetworkFailure: ошибка удалённого хранилища.
	ErrNetworkFailure = errors.New("network failure")
	// ErrUploadFailure: ошибка объектного хранилища.
	ErrUploadFailure = errors.New("upload failure")
	// ErrAdminForbidden: синтезированный администратор не может менять профиль.
	ErrAdminForbidden = errors.New("synthesized admin profile is read-only")
	// ErrIncompleteForm: пустое обязательное поле.
	ErrIncompleteForm = errors.New("incomplete form")
	// ErrForbidden: операция только для администратора.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated: нет активной сессии.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrConfirmationRequired: удаление без явного подтверждения.
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrBusy: предыдущая мутация ещё выполняется.
	ErrBusy = errors.New("another mutation in progress")
	// ErrInvalidArgument: некорректные входные данные.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound: сущность не найдена.
	ErrNotFound = errors.New("not found")
)

// Sessions: доступ к текущей сессии и зеркалирование изменений профиля.
type Sessions interface {
	Current() (models.Session, bool)
	MirrorProfile(ctx context.Context, p models.Profile)
	MirrorPoints(ctx context.Context, profileID string, points int)
}

// Cache: перезагрузка списков после мутаций.
type Cache interface {
	RefreshPlaces(ctx context.Context) (bool, error)
	RefreshProfiles(ctx context.Context) error
	Profile(id string) (models.Profile, bool)
}

// Deps: зависимости сервиса. Clock и Metrics необязательны.
type Deps struct {
	Places   storage.Places
	Reviews  storage.Reviews
	Profiles storage.Profiles
	Objects  storage.Objects
	Sessions Sessions
	Cache    Cache
	Clock    clockwork.Clock
	Metrics  *metrics.Metrics
}

// Service: контроллер мутаций.
type Service struct {
	places   storage.Places
	reviews  storage.Reviews
	profiles storage.Profiles
	objects  storage.Objects
	sessions Sessions
	cache    Cache
	clock    clockwork.Clock
	metrics  *metrics.Metrics

	submitting atomic.Bool
}

// New создаёт новый экземпляр Service.
func New(d Deps) *Service {
	clock := d.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Service{
		places:   d.Places,
		reviews:  d.Reviews,
		profiles: d.Profiles,
		objects:  d.Objects,
		sessions: d.Sessions,
		cache:    d.Cache,
		clock:    clock,
		metrics:  d.Metrics,
	}
}

// Submitting: выполняется ли сейчас мутация (флаг isSubmitting).
func (s *Service) Submitting() bool {
	return s.submitting.Load()
}

// begin захватывает флаг мутации. Повторный вызов до release: ErrBusy.
func (s *Service) begin(op string) (func(), error) {
	if !s.submitting.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%s: %w", op, ErrBusy)
	}

	return func() { s.submitting.Store(false) }, nil
}

// session возвращает текущую сессию или ErrUnauthenticated.
func (s *Service) session(op string) (models.Session, error) {
	sess, ok := s.sessions.Current()
	if !ok {
		return models.Session{}, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	return sess, nil
}

// admin возвращает сессию, если у неё есть права администратора.
func (s *Service) admin(op string) (models.Session, error) {
	sess, err := s.session(op)
	if err != nil {
		return models.Session{}, err
	}

	if !sess.AdminAuthorized() {
		return models.Session{}, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	return sess, nil
}

// storageErr переводит ошибку хранилища в ошибку сервиса.
func storageErr(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	return fmt.Errorf("%s: %w: %w", op, ErrNetworkFailure, err)
}

// refreshPlaces перезагружает места. Мутация уже применена, поэтому ошибка только логируется.
func (s *Service) refreshPlaces(ctx context.Context, op string) {
	if _, err := s.cache.RefreshPlaces(ctx); err != nil {
		log.From(ctx).Error("places refresh after mutation failed", "op", op, "err", err)
	}
}

func (s *Service) refreshProfiles(ctx context.Context, op string) {
	if err := s.cache.RefreshProfiles(ctx); err != nil {
		log.From(ctx).Error("profiles refresh after mutation failed", "op", op, "err", err)
	}
}
