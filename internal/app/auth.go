package app

import (
	"context"

	"github.com/haroldove90-spec/Cowele/internal/models"
	"github.com/haroldove90-spec/Cowele/internal/router"
)

// Login входит в систему, ставит стартовую вкладку и перезагружает места.
func (a *App) Login(ctx context.Context, username, password string) (models.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	sess, err := a.sessions.Login(ctx, username, password)
	if err != nil {
		return models.Session{}, err
	}

	a.enterLocked(ctx, sess)

	return sess, nil
}

// Register создаёт профиль и сразу входит под ним.
func (a *App) Register(ctx context.Context, username, password, fullName string) (models.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	sess, err := a.sessions.Register(ctx, username, password, fullName)
	if err != nil {
		return models.Session{}, err
	}

	a.enterLocked(ctx, sess)

	return sess, nil
}

func (a *App) enterLocked(ctx context.Context, sess models.Session) {
	tab := router.Landing(sess.IsRealAdmin)
	a.router.Reset(tab)
	a.seedProfileForm(sess)

	a.refreshPlacesLocked(ctx)
	a.onTabEnteredLocked(ctx, tab)
}

// Logout очищает сессию и возвращает на explore.
func (a *App) Logout(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.sessions.Logout(ctx)
	a.router.Reset(router.TabExplore)

	a.stateMu.Lock()
	a.ack = ""
	a.profileForm = ProfileForm{}
	a.stateMu.Unlock()
}

// ToggleViewAsUser переключает режим "смотреть как пользователь" и возвращает уведомление.
// При скрытии админских вкладок активная админская вкладка меняется на explore.
func (a *App) ToggleViewAsUser(ctx context.Context) (models.Session, string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	sess, err := a.sessions.ToggleViewAsUser(ctx)
	if err != nil {
		return models.Session{}, "", err
	}

	if !sess.IsRealAdmin {
		return sess, "", nil
	}

	a.router.Demote(sess.AdminAuthorized())

	if sess.ViewForcedAsUser {
		return sess, NoticeViewAsUser, nil
	}

	return sess, NoticeAdminRestored, nil
}

// SwitchTab переключает вкладку. Вход на вкладку запускает её политику обновления.
func (a *App) SwitchTab(ctx context.Context, tab router.Tab) error {
	const op = "app/SwitchTab"

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.requireSession(op); err != nil {
		return err
	}

	changed, err := a.router.Switch(tab, a.sessions.IsAdminAuthorized())
	if err != nil {
		return err
	}

	if changed {
		a.onTabEnteredLocked(ctx, tab)
	}

	return nil
}
