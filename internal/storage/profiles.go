package storage

import (
	"context"

	"github.com/haroldove90-spec/Cowele/internal/models"
)

// NewProfile: регистрационные данные.
// Реализация выставляет points = 0 и status = active.
type NewProfile struct {
	Username string
	Password string
	FullName string
}

// ProfileUpdate: частичный апдейт профиля.
// Параметры задаются pointer-полями: только непустые указатели обновляются в БД.
type ProfileUpdate struct {
	FullName  *string
	Password  *string
	AvatarURL *string
	Points    *int
	Status    *models.ProfileStatus
}

// Profiles: контракт таблицы profiles.
type Profiles interface {
	// Profiles возвращает все профили, новые первыми.
	Profiles(ctx context.Context) ([]models.Profile, error)
	// ProfileByID возвращает профиль по id. Ошибки: ErrNotFound.
	ProfileByID(ctx context.Context, id string) (*models.Profile, error)
	// ProfileByUsername возвращает профиль по username. Ошибки: ErrNotFound.
	ProfileByUsername(ctx context.Context, username string) (*models.Profile, error)
	// ProfileByCredentials ищет профиль по точному совпадению (username, password).
	// Ошибки: ErrNotFound.
	ProfileByCredentials(ctx context.Context, username, password string) (*models.Profile, error)
	// CreateProfile создаёт профиль. Ошибки: ErrAlreadyExists при занятом username.
	CreateProfile(ctx context.Context, profile NewProfile) (*models.Profile, error)
	// UpdateProfile выполняет частичный апдейт. Ошибки: ErrNotFound.
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.Profile, error)
	// DeleteProfile удаляет профиль. Ошибки: ErrNotFound.
	DeleteProfile(ctx context.Context, id string) error
}
