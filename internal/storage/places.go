package storage

import (
	"context"
	"time"

	"github.com/haroldove90-spec/Cowele/internal/models"
)

// PlaceRow: строка bathrooms в том виде, в котором её отдаёт хранилище.
// Необязательные колонки: указатели; нормализацией занимается кэш.
// Reviews: однократное включение дочерней таблицы reviews (порядок не гарантирован).
type PlaceRow struct {
	ID          int64
	Name        string
	FullAddress *string
	Address     *string
	Lat         *float64
	Lng         *float64
	PhotoURL    *string
	Status      *string
	Rating      *float64
	CreatedBy   *string
	IsPaid      *bool
	CreatedAt   time.Time
	Reviews     []models.Review
}

// NewPlace: вставляемая строка bathrooms.
type NewPlace struct {
	Name        string
	FullAddress string
	Lat         float64
	Lng         float64
	PhotoURL    *string
	Status      models.PlaceStatus
	Rating      float64
	CreatedBy   string
}

// PlaceUpdate: частичный апдейт места.
// Обновляются только непустые указатели. ClearPhoto записывает photo_url = NULL
// и имеет приоритет над PhotoURL.
type PlaceUpdate struct {
	Name        *string
	FullAddress *string
	Lat         *float64
	Lng         *float64
	PhotoURL    *string
	ClearPhoto  bool
}

// Places: контракт таблицы bathrooms.
type Places interface {
	// PlacesWithReviews возвращает все места с отзывами, новые первыми (created_at desc).
	PlacesWithReviews(ctx context.Context) ([]PlaceRow, error)
	// CreatePlace вставляет место и возвращает строку с присвоенным id.
	CreatePlace(ctx context.Context, place NewPlace) (*PlaceRow, error)
	// UpdatePlace применяет частичный апдейт. Ошибки: ErrNotFound.
	UpdatePlace(ctx context.Context, id int64, update PlaceUpdate) (*PlaceRow, error)
	// DeletePlace удаляет место. Ошибки: ErrNotFound.
	DeletePlace(ctx context.Context, id int64) error
}
