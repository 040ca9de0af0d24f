package storage

import (
	"context"

	"github.com/haroldove90-spec/Cowele/internal/models"
)

// NewReview: вставляемая строка reviews.
// ProfileID = nil для синтезированного администратора.
type NewReview struct {
	BathroomID int64
	UserName   string
	ProfileID  *string
	Rating     int
	Comment    string
}

// Reviews: контракт таблицы reviews.
type Reviews interface {
	// Reviews возвращает ленту отзывов, новые первыми.
	Reviews(ctx context.Context) ([]models.Review, error)
	// CreateReview вставляет отзыв. Ошибки: ErrNotFound, если места нет.
	CreateReview(ctx context.Context, review NewReview) (*models.Review, error)
}
