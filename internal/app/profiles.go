package app

import (
	"context"
	"fmt"

	"github.com/haroldove90-spec/Cowele/internal/analytics"
	"github.com/haroldove90-spec/Cowele/internal/models"
	"github.com/haroldove90-spec/Cowele/internal/service"
)

// ProfileForm: форма своего профиля.
type ProfileForm struct {
	FullName  string `json:"full_name"`
	Password  string `json:"password"`
	AvatarURL string `json:"avatar_url"`
}

// UserRow: строка списка пользователей; IsAdmin: username из реестра.
type UserRow struct {
	models.Profile
	IsAdmin bool `json:"is_admin"`
}

func (a *App) seedProfileForm(sess models.Session) {
	avatar := sess.Profile.AvatarURL
	if avatar == "" {
		avatar = a.defaultAvatar
	}

	a.stateMu.Lock()
	a.profileForm = ProfileForm{
		FullName:  sess.Profile.FullName,
		Password:  sess.Profile.Password,
		AvatarURL: avatar,
	}
	a.stateMu.Unlock()
}

// ProfileForm возвращает форму профиля текущего пользователя.
func (a *App) ProfileForm() (ProfileForm, error) {
	if _, err := a.requireSession("app/ProfileForm"); err != nil {
		return ProfileForm{}, err
	}

	a.stateMu.RLock()
	defer a.stateMu.RUnlock()

	return a.profileForm, nil
}

// UploadAvatar загружает аватар и привязывает URL к форме профиля (без сохранения).
func (a *App) UploadAvatar(ctx context.Context, contentType string, data []byte) (ProfileForm, error) {
	if err := a.lockMutation("app/UploadAvatar"); err != nil {
		return ProfileForm{}, err
	}
	defer a.mu.Unlock()

	url, err := a.svc.UploadAvatar(ctx, contentType, data)
	if err != nil {
		return ProfileForm{}, err
	}

	a.stateMu.Lock()
	a.profileForm.AvatarURL = url
	form := a.profileForm
	a.stateMu.Unlock()

	return form, nil
}

// UpdateProfile сохраняет форму профиля.
func (a *App) UpdateProfile(ctx context.Context, in ProfileForm) (models.Profile, error) {
	if err := a.lockMutation("app/UpdateProfile"); err != nil {
		return models.Profile{}, err
	}
	defer a.mu.Unlock()

	p, err := a.svc.UpdateProfile(ctx, service.ProfileInput{
		FullName:  in.FullName,
		Password:  in.Password,
		AvatarURL: in.AvatarURL,
	})
	if err != nil {
		return models.Profile{}, err
	}

	a.seedProfileForm(models.Session{Profile: p})

	return p, nil
}

// Users: список профилей с отметкой администраторов. Только администратор.
func (a *App) Users() ([]UserRow, error) {
	if err := a.requireAdmin("app/Users"); err != nil {
		return nil, err
	}

	roster := a.sessions.Roster()
	profiles := a.cache.Profiles()

	out := make([]UserRow, len(profiles))
	for i, p := range profiles {
		p.Password = ""
		out[i] = UserRow{Profile: p, IsAdmin: roster.IsAdmin(p.Username)}
	}

	return out, nil
}

// RefreshProfiles: ручная перезагрузка профилей. Только администратор.
func (a *App) RefreshProfiles(ctx context.Context) error {
	const op = "app/RefreshProfiles"

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.requireAdmin(op); err != nil {
		return err
	}

	if err := a.cache.RefreshProfiles(ctx); err != nil {
		return fmt.Errorf("%s: %w: %w", op, service.ErrNetworkFailure, err)
	}

	return nil
}

// SetUserStatus меняет статус пользователя.
func (a *App) SetUserStatus(ctx context.Context, id string, status models.ProfileStatus) error {
	if err := a.lockMutation("app/SetUserStatus"); err != nil {
		return err
	}
	defer a.mu.Unlock()

	return a.svc.SetUserStatus(ctx, id, status)
}

// ToggleUserStatus переключает статус пользователя.
func (a *App) ToggleUserStatus(ctx context.Context, id string) (models.ProfileStatus, error) {
	if err := a.lockMutation("app/ToggleUserStatus"); err != nil {
		return "", err
	}
	defer a.mu.Unlock()

	return a.svc.ToggleUserStatus(ctx, id)
}

// DeleteUser удаляет пользователя (с подтверждением).
func (a *App) DeleteUser(ctx context.Context, id string, confirmed bool) error {
	if err := a.lockMutation("app/DeleteUser"); err != nil {
		return err
	}
	defer a.mu.Unlock()

	return a.svc.DeleteUser(ctx, id, confirmed)
}

// Reviews: глобальная лента отзывов.
func (a *App) Reviews() ([]models.Review, error) {
	if _, err := a.requireSession("app/Reviews"); err != nil {
		return nil, err
	}

	return a.cache.Reviews(), nil
}

// RefreshReviews: ручная перезагрузка ленты отзывов.
func (a *App) RefreshReviews(ctx context.Context) error {
	const op = "app/RefreshReviews"

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.requireSession(op); err != nil {
		return err
	}

	if err := a.cache.RefreshReviews(ctx); err != nil {
		return fmt.Errorf("%s: %w: %w", op, service.ErrNetworkFailure, err)
	}

	return nil
}

// Dashboard: KPI и ряды за 7 дней. Только администратор.
func (a *App) Dashboard() (analytics.Dashboard, error) {
	if err := a.requireAdmin("app/Dashboard"); err != nil {
		return analytics.Dashboard{}, err
	}

	return analytics.Project(a.cache.Places(), a.cache.Profiles(), a.cache.Reviews(), a.clock.Now()), nil
}
