// session реализует хранилище сессии клиента: вход, регистрация, выход,
// режим "смотреть как пользователь" и восстановление снимка при старте.
//
// Сессия: общий для процесса объект с единственным путём записи (этот пакет).
// Долговременное хранилище пишется только при изменении сессии.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/haroldove90-spec/Cowele/internal/models"
	"github.com/haroldove90-spec/Cowele/internal/storage"
	"github.com/haroldove90-spec/Cowele/pkg/log"
	"github.com/haroldove90-spec/Cowele/pkg/redact"
)

var (
	// ErrAuthDenied: неверная пара (username, password).
	ErrAuthDenied = errors.New("access denied")
	// ErrAccountBlocked: профиль помечен inactive.
	ErrAccountBlocked = errors.New("account blocked")
	// ErrUserExists: username занят.
	ErrUserExists = errors.New("user already exists")
	// ErrIncompleteForm: пустое обязательное поле регистрации.
	ErrIncompleteForm = errors.New("incomplete form")
	// ErrNetworkFailure: ошибка удалённого хранилища.
	ErrNetworkFailure = errors.New("network failure")
	// ErrNotLoggedIn: операция требует активной сессии.
	ErrNotLoggedIn = errors.New("not logged in")
)

// Store: хранилище сессии.
type Store struct {
	mu       sync.RWMutex
	profiles storage.Profiles
	kv       storage.KV
	roster   *Roster
	current  *models.Session
}

// New создаёт хранилище сессии без активного пользователя.
func New(profiles storage.Profiles, kv storage.KV, roster *Roster) *Store {
	return &Store{profiles: profiles, kv: kv, roster: roster}
}

// Roster возвращает реестр администраторов.
func (s *Store) Roster() *Roster {
	return s.roster
}

// Login аутентифицирует пользователя.
//
// Администратор из реестра получает свою строку profiles, если она есть;
// иначе синтезируется эфемерная сессия с id admin-<username> и 9999 очками.
// Остальные ищутся по точному совпадению (username, password).
// Профиль со статусом inactive не получает сессию.
func (s *Store) Login(ctx context.Context, username, password string) (models.Session, error) {
	const op = "session/Login"

	username = normalizeUsername(username)
	lg := log.Op(ctx, op, "username", redact.Username(username))

	if admin, ok := s.roster.Verify(username, password); ok {
		p, err := s.profiles.ProfileByUsername(ctx, username)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				lg.Warn("admin profile lookup failed, using roster identity", "err", err)
			}

			return s.establish(ctx, models.Session{
				Kind: models.SessionEphemeral,
				Profile: models.Profile{
					ID:       models.AdminIDPrefix + username,
					Username: username,
					FullName: admin.DisplayName,
					Points:   models.AdminPoints,
					Status:   models.ProfileActive,
				},
			})
		}

		return s.loginProfile(ctx, *p)
	}

	p, err := s.profiles.ProfileByCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("login rejected")
			return models.Session{}, fmt.Errorf("%s: %w", op, ErrAuthDenied)
		}

		lg.Error("profile lookup failed", "err", err)
		return models.Session{}, fmt.Errorf("%s: %w: %w", op, ErrNetworkFailure, err)
	}

	return s.loginProfile(ctx, *p)
}

// Register создаёт профиль (points = 0, status = active) и сразу входит под ним.
func (s *Store) Register(ctx context.Context, username, password, fullName string) (models.Session, error) {
	const op = "session/Register"

	username = normalizeUsername(username)
	lg := log.Op(ctx, op, "username", redact.Username(username))

	if username == "" || password == "" || strings.TrimSpace(fullName) == "" {
		lg.Warn("incomplete registration form")
		return models.Session{}, fmt.Errorf("%s: %w", op, ErrIncompleteForm)
	}

	p, err := s.profiles.CreateProfile(ctx, storage.NewProfile{
		Username: username,
		Password: password,
		FullName: fullName,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			lg.Warn("username taken")
			return models.Session{}, fmt.Errorf("%s: %w", op, ErrUserExists)
		}

		lg.Error("create profile failed", "err", err)
		return models.Session{}, fmt.Errorf("%s: %w: %w", op, ErrNetworkFailure, err)
	}

	lg.Info("profile registered", "profile_id", p.ID)

	return s.loginProfile(ctx, *p)
}

func (s *Store) loginProfile(ctx context.Context, p models.Profile) (models.Session, error) {
	if p.Status == models.ProfileInactive {
		log.From(ctx).Warn("blocked account login", "op", "session/Login", "profile_id", p.ID)
		return models.Session{}, fmt.Errorf("session/Login: %w", ErrAccountBlocked)
	}

	return s.establish(ctx, models.Session{Kind: models.SessionPersisted, Profile: p})
}

// establish устанавливает сессию и сохраняет снимок.
// Ошибка записи снимка не отменяет вход: она только логируется.
func (s *Store) establish(ctx context.Context, sess models.Session) (models.Session, error) {
	sess.IsRealAdmin = s.roster.IsAdmin(sess.Profile.Username)
	sess.ViewForcedAsUser = false

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()

	s.persist(ctx, sess)

	log.From(ctx).Info("session established",
		"op", "session/establish",
		"kind", string(sess.Kind),
		"admin", sess.IsRealAdmin,
	)

	return sess, nil
}

// Logout очищает сессию, флаг режима просмотра и долговременный снимок.
func (s *Store) Logout(ctx context.Context) {
	const op = "session/Logout"

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, storage.SessionKey); err != nil {
		log.From(ctx).Error("session snapshot delete failed", "op", op, "err", err)
	}
}

// ToggleViewAsUser переключает подавление админских вкладок.
// Для не-администратора: no-op. Права (IsRealAdmin) не меняются.
func (s *Store) ToggleViewAsUser(ctx context.Context) (models.Session, error) {
	const op = "session/ToggleViewAsUser"

	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return models.Session{}, fmt.Errorf("%s: %w", op, ErrNotLoggedIn)
	}

	if !s.current.IsRealAdmin {
		sess := *s.current
		s.mu.Unlock()
		return sess, nil
	}

	s.current.ViewForcedAsUser = !s.current.ViewForcedAsUser
	sess := *s.current
	s.mu.Unlock()

	log.From(ctx).Info("view mode toggled", "op", op, "forced_as_user", sess.ViewForcedAsUser)

	return sess, nil
}

// Restore читает сохранённый снимок и восстанавливает сессию.
// Нечитаемый снимок удаляется. Возвращает false, если сессии нет.
func (s *Store) Restore(ctx context.Context) (models.Session, bool) {
	const op = "session/Restore"

	lg := log.Op(ctx, op)

	data, err := s.kv.Get(ctx, storage.SessionKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			lg.Error("session snapshot read failed", "err", err)
		}

		return models.Session{}, false
	}

	sess, err := models.UnmarshalSession(data)
	if err != nil {
		lg.Warn("session snapshot is corrupt, dropping", "err", err)

		if err := s.kv.Delete(ctx, storage.SessionKey); err != nil {
			lg.Error("session snapshot delete failed", "err", err)
		}

		return models.Session{}, false
	}

	sess.IsRealAdmin = s.roster.IsAdmin(sess.Profile.Username)
	sess.ViewForcedAsUser = false

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()

	lg.Info("session restored", "kind", string(sess.Kind), "admin", sess.IsRealAdmin)

	return sess, true
}

// Current возвращает копию текущей сессии.
func (s *Store) Current() (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return models.Session{}, false
	}

	return *s.current, true
}

// IsAdminAuthorized: isRealAdmin и не включён режим "как пользователь".
func (s *Store) IsAdminAuthorized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current != nil && s.current.AdminAuthorized()
}

// MirrorProfile переносит свежую строку профиля в снимок сессии и сохраняет его.
// Вызывается после начисления очков и обновления профиля.
func (s *Store) MirrorProfile(ctx context.Context, p models.Profile) {
	s.mu.Lock()
	if s.current == nil || s.current.Profile.ID != p.ID {
		s.mu.Unlock()
		return
	}

	s.current.Profile = p
	sess := *s.current
	s.mu.Unlock()

	s.persist(ctx, sess)
}

// MirrorPoints переносит новое значение очков в снимок сессии.
func (s *Store) MirrorPoints(ctx context.Context, profileID string, points int) {
	s.mu.Lock()
	if s.current == nil || s.current.Profile.ID != profileID {
		s.mu.Unlock()
		return
	}

	s.current.Profile.Points = points
	sess := *s.current
	s.mu.Unlock()

	s.persist(ctx, sess)
}

func (s *Store) persist(ctx context.Context, sess models.Session) {
	const op = "session/persist"

	data, err := models.MarshalSession(sess)
	if err != nil {
		log.From(ctx).Error("session snapshot encode failed", "op", op, "err", err)
		return
	}

	if err := s.kv.Set(ctx, storage.SessionKey, data); err != nil {
		log.From(ctx).Error("session snapshot write failed", "op", op, "err", err)
	}
}
