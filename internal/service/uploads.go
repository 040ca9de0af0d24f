package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/haroldove90-spec/Cowele/pkg/log"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// PhotoKey: ключ фото места: <epoch-ms>_<имя файла, пробельные серии заменены на _>.
func PhotoKey(ms int64, filename string) string {
	return strconv.FormatInt(ms, 10) + "_" + whitespaceRun.ReplaceAllString(filename, "_")
}

// AvatarKey: ключ аватара: avatar_<profileId>_<epoch-ms>.
func AvatarKey(profileID string, ms int64) string {
	return "avatar_" + profileID + "_" + strconv.FormatInt(ms, 10)
}

// UploadImage загружает фото места и возвращает публичный URL.
// Форма регистрации при ошибке не меняется.
func (s *Service) UploadImage(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	const op = "service/uploads/UploadImage"

	lg := log.Op(ctx, op)

	if _, err := s.session(op); err != nil {
		lg.Warn("upload without session")
		return "", err
	}

	filename = strings.TrimSpace(filename)
	if filename == "" || len(data) == 0 {
		lg.Warn("empty upload")
		return "", fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	release, err := s.begin(op)
	if err != nil {
		return "", err
	}
	defer release()

	key := PhotoKey(s.clock.Now().UnixMilli(), filename)

	return s.upload(ctx, op, "upload_image", key, contentType, data)
}

// UploadAvatar загружает аватар текущего пользователя и возвращает публичный URL.
// Профиль не меняется: URL привязывается к форме профиля и сохраняется через UpdateProfile.
func (s *Service) UploadAvatar(ctx context.Context, contentType string, data []byte) (string, error) {
	const op = "service/uploads/UploadAvatar"

	lg := log.Op(ctx, op)

	sess, err := s.session(op)
	if err != nil {
		lg.Warn("upload without session")
		return "", err
	}

	if len(data) == 0 {
		lg.Warn("empty upload")
		return "", fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	release, err := s.begin(op)
	if err != nil {
		return "", err
	}
	defer release()

	key := AvatarKey(sess.Profile.ID, s.clock.Now().UnixMilli())

	return s.upload(ctx, op, "upload_avatar", key, contentType, data)
}

func (s *Service) upload(ctx context.Context, op, metric, key, contentType string, data []byte) (string, error) {
	url, err := s.objects.Upload(ctx, key, contentType, data)
	s.metrics.Mutation(metric, err)
	if err != nil {
		log.From(ctx).Error("object upload failed", "op", op, "key", key, "err", err)
		return "", fmt.Errorf("%s: %w: %w", op, ErrUploadFailure, err)
	}

	log.From(ctx).Info("object uploaded", "op", op, "key", key, "size", len(data))

	return url, nil
}
