package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/haroldove90-spec/Cowele/internal/models"
	"github.com/haroldove90-spec/Cowele/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const reviewColumns = `
id, bathroom_id, profile_id, user_name, rating, comment, created_at
`

// scanReview сканирует строку reviews; вторым значением возвращает bathroom_id
// для группировки при включении в bathrooms.
func scanReview(row pgx.Row) (*models.Review, int64, error) {
	var (
		r          models.Review
		id         int64
		bathroomID int64
		profileID  pgtype.UUID
		rating     int32
	)

	if err := row.Scan(
		&id,
		&bathroomID,
		&profileID,
		&r.UserName,
		&rating,
		&r.Comment,
		&r.CreatedAt,
	); err != nil {
		return nil, 0, err
	}

	r.ID = strconv.FormatInt(id, 10)
	r.BathroomID = strconv.FormatInt(bathroomID, 10)
	r.Rating = int(rating)

	if profileID.Valid {
		pid := uuid.UUID(profileID.Bytes).String()
		r.ProfileID = &pid
	}

	return &r, bathroomID, nil
}

// Reviews возвращает ленту отзывов, новые первыми.
func (s *Storage) Reviews(ctx context.Context) ([]models.Review, error) {
	const op = "storage/postgres/reviews/Reviews"

	q := `SELECT ` + reviewColumns + ` FROM reviews ORDER BY created_at DESC, id DESC`

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	reviews := make([]models.Review, 0)
	for rows.Next() {
		r, _, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		reviews = append(reviews, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return reviews, nil
}

// CreateReview вставляет отзыв.
// Ошибки: storage.ErrNotFound, если место или профиль не существуют.
func (s *Storage) CreateReview(ctx context.Context, review storage.NewReview) (*models.Review, error) {
	const op = "storage/postgres/reviews/CreateReview"

	var profileID pgtype.UUID
	if review.ProfileID != nil {
		uid, err := parseProfileID(*review.ProfileID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		profileID = pgtype.UUID{Bytes: uid, Valid: true}
	}

	q := `
	INSERT INTO reviews (bathroom_id, profile_id, user_name, rating, comment)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING
	` + reviewColumns

	row := s.db.QueryRow(ctx, q,
		review.BathroomID,
		profileID,
		review.UserName,
		int32(review.Rating),
		review.Comment,
	)

	result, _, err := scanReview(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapPgError(err))
	}

	return result, nil
}
