package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/haroldove90-spec/Cowele/internal/storage"
	"github.com/jackc/pgx/v5"
)

// placeColumns: единый список колонок таблицы bathrooms для SELECT/RETURNING.
const placeColumns = `
id, name, full_address, address, lat, lng, photo_url, status, rating, created_by, is_paid, created_at
`

func scanPlace(row pgx.Row) (*storage.PlaceRow, error) {
	var p storage.PlaceRow

	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.FullAddress,
		&p.Address,
		&p.Lat,
		&p.Lng,
		&p.PhotoURL,
		&p.Status,
		&p.Rating,
		&p.CreatedBy,
		&p.IsPaid,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &p, nil
}

// PlacesWithReviews возвращает все места (created_at desc) вместе с их отзывами.
func (s *Storage) PlacesWithReviews(ctx context.Context) ([]storage.PlaceRow, error) {
	const op = "storage/postgres/places/PlacesWithReviews"

	q := `SELECT ` + placeColumns + ` FROM bathrooms ORDER BY created_at DESC, id DESC`

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	places := make([]storage.PlaceRow, 0)
	index := make(map[int64]int)
	ids := make([]int64, 0)

	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		index[p.ID] = len(places)
		ids = append(ids, p.ID)
		places = append(places, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(ids) == 0 {
		return places, nil
	}

	rq := `SELECT ` + reviewColumns + ` FROM reviews WHERE bathroom_id = ANY($1)`

	rrows, err := s.db.Query(ctx, rq, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rrows.Close()

	for rrows.Next() {
		r, bathroomID, err := scanReview(rrows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if i, ok := index[bathroomID]; ok {
			places[i].Reviews = append(places[i].Reviews, *r)
		}
	}

	if err := rrows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return places, nil
}

// CreatePlace вставляет новое место.
func (s *Storage) CreatePlace(ctx context.Context, place storage.NewPlace) (*storage.PlaceRow, error) {
	const op = "storage/postgres/places/CreatePlace"

	q := `
	INSERT INTO bathrooms (name, full_address, lat, lng, photo_url, status, rating, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING
	` + placeColumns

	row := s.db.QueryRow(ctx, q,
		place.Name,
		place.FullAddress,
		place.Lat,
		place.Lng,
		place.PhotoURL,
		string(place.Status),
		place.Rating,
		place.CreatedBy,
	)

	result, err := scanPlace(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// UpdatePlace выполняет частичный апдейт по непустым указателям.
// Пустой апдейт возвращает текущую строку.
// Ошибки: storage.ErrNotFound при отсутствии записи.
func (s *Storage) UpdatePlace(ctx context.Context, id int64, update storage.PlaceUpdate) (*storage.PlaceRow, error) {
	const op = "storage/postgres/places/UpdatePlace"

	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		add("name", *update.Name)
	}

	if update.FullAddress != nil {
		add("full_address", *update.FullAddress)
	}

	if update.Lat != nil {
		add("lat", *update.Lat)
	}

	if update.Lng != nil {
		add("lng", *update.Lng)
	}

	switch {
	case update.ClearPhoto:
		add("photo_url", nil)
	case update.PhotoURL != nil:
		add("photo_url", *update.PhotoURL)
	}

	var row pgx.Row
	if len(sets) == 0 {
		row = s.db.QueryRow(ctx, `SELECT `+placeColumns+` FROM bathrooms WHERE id = $1`, id)
	} else {
		args = append(args, id)
		q := fmt.Sprintf(`UPDATE bathrooms SET %s WHERE id = $%d RETURNING %s`,
			strings.Join(sets, ", "), len(args), placeColumns)
		row = s.db.QueryRow(ctx, q, args...)
	}

	result, err := scanPlace(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// DeletePlace удаляет место; отзывы удаляются каскадом.
func (s *Storage) DeletePlace(ctx context.Context, id int64) error {
	const op = "storage/postgres/places/DeletePlace"

	tag, err := s.db.Exec(ctx, `DELETE FROM bathrooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
