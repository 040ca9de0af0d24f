package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/haroldove90-spec/Cowele/internal/models"
	"github.com/haroldove90-spec/Cowele/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Reviews возвращает ленту отзывов, новые первыми.
func (m *Mongo) Reviews(ctx context.Context) ([]models.Review, error) {
	const op = "storage/mongo/reviews/Reviews"

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cur, err := m.reviews.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	reviews := make([]models.Review, 0)
	for cur.Next(ctx) {
		var d reviewDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		reviews = append(reviews, d.model())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return reviews, nil
}

// CreateReview вставляет отзыв.
// Ошибки: storage.ErrNotFound, если места нет.
func (m *Mongo) CreateReview(ctx context.Context, review storage.NewReview) (*models.Review, error) {
	const op = "storage/mongo/reviews/CreateReview"

	n, err := m.places.CountDocuments(ctx, bson.M{"_id": review.BathroomID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	id, err := m.nextID(ctx, reviewsCollection)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	d := reviewDoc{
		ID:         id,
		BathroomID: review.BathroomID,
		ProfileID:  review.ProfileID,
		UserName:   review.UserName,
		Rating:     review.Rating,
		Comment:    review.Comment,
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := m.reviews.InsertOne(ctx, d); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r := d.model()
	return &r, nil
}
