package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/haroldove90-spec/Cowele/internal/models"
	"github.com/haroldove90-spec/Cowele/internal/storage"
	"github.com/haroldove90-spec/Cowele/pkg/log"
)

// ProfileInput: форма профиля.
type ProfileInput struct {
	FullName  string
	Password  string
	AvatarURL string
}

// UpdateProfile перезаписывает full_name, password и avatar_url своего профиля
// и переносит результат в снимок сессии.
//
// Синтезированный администратор (без строки profiles) получает ErrAdminForbidden.
func (s *Service) UpdateProfile(ctx context.Context, in ProfileInput) (models.Profile, error) {
	const op = "service/profiles/UpdateProfile"

	lg := log.Op(ctx, op)

	sess, err := s.session(op)
	if err != nil {
		lg.Warn("profile update without session")
		return models.Profile{}, err
	}

	if !sess.Persisted() {
		lg.Warn("profile update for synthesized admin")
		return models.Profile{}, fmt.Errorf("%s: %w", op, ErrAdminForbidden)
	}

	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" || in.Password == "" {
		lg.Warn("incomplete profile form")
		return models.Profile{}, fmt.Errorf("%s: %w", op, ErrIncompleteForm)
	}

	release, err := s.begin(op)
	if err != nil {
		return models.Profile{}, err
	}
	defer release()

	avatar := strings.TrimSpace(in.AvatarURL)

	p, err := s.profiles.UpdateProfile(ctx, sess.Profile.ID, storage.ProfileUpdate{
		FullName:  &fullName,
		Password:  &in.Password,
		AvatarURL: &avatar,
	})
	s.metrics.Mutation("update_profile", err)
	if err != nil {
		lg.Error("profile update failed", "err", err)
		return models.Profile{}, storageErr(op, err)
	}

	s.sessions.MirrorProfile(ctx, *p)

	lg.Info("profile updated", "profile_id", p.ID)

	return *p, nil
}

// SetUserStatus меняет статус пользователя. Только администратор.
func (s *Service) SetUserStatus(ctx context.Context, id string, status models.ProfileStatus) error {
	const op = "service/profiles/SetUserStatus"

	if _, err := s.admin(op); err != nil {
		log.From(ctx).Warn("status change rejected", "op", op, "err", err)
		return err
	}

	release, err := s.begin(op)
	if err != nil {
		return err
	}
	defer release()

	return s.setUserStatus(ctx, op, id, status)
}

// ToggleUserStatus переключает active/inactive по строке из кэша профилей.
func (s *Service) ToggleUserStatus(ctx context.Context, id string) (models.ProfileStatus, error) {
	const op = "service/profiles/ToggleUserStatus"

	if _, err := s.admin(op); err != nil {
		log.From(ctx).Warn("status toggle rejected", "op", op, "err", err)
		return "", err
	}

	p, ok := s.cache.Profile(id)
	if !ok {
		return "", fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	release, err := s.begin(op)
	if err != nil {
		return "", err
	}
	defer release()

	next := p.Status.Toggle()
	if err := s.setUserStatus(ctx, op, id, next); err != nil {
		return "", err
	}

	return next, nil
}

func (s *Service) setUserStatus(ctx context.Context, op, id string, status models.ProfileStatus) error {
	lg := log.Op(ctx, op, "profile_id", id)

	if id == "" || !status.Valid() {
		lg.Warn("invalid status change", "status", string(status))
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	_, err := s.profiles.UpdateProfile(ctx, id, storage.ProfileUpdate{Status: &status})
	s.metrics.Mutation("set_user_status", err)
	if err != nil {
		lg.Error("status update failed", "err", err)
		return storageErr(op, err)
	}

	lg.Info("user status changed", "status", string(status))

	s.refreshProfiles(ctx, op)

	return nil
}

// DeleteUser удаляет профиль навсегда. Только администратор, нужно подтверждение.
// Отзывы пользователя остаются, profile_id в них обнуляется.
func (s *Service) DeleteUser(ctx context.Context, id string, confirmed bool) error {
	const op = "service/profiles/DeleteUser"

	lg := log.Op(ctx, op, "profile_id", id)

	if _, err := s.admin(op); err != nil {
		lg.Warn("user delete rejected", "err", err)
		return err
	}

	if id == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if !confirmed {
		return fmt.Errorf("%s: %w", op, ErrConfirmationRequired)
	}

	release, err := s.begin(op)
	if err != nil {
		return err
	}
	defer release()

	err = s.profiles.DeleteProfile(ctx, id)
	s.metrics.Mutation("delete_user", err)
	if err != nil {
		lg.Error("profile delete failed", "err", err)
		return storageErr(op, err)
	}

	lg.Info("user deleted")

	s.refreshProfiles(ctx, op)

	return nil
}
