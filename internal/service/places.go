package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/haroldove90-spec/Cowele/internal/geo"
	"github.com/haroldove90-spec/Cowele/internal/models"
	"github.com/haroldove90-spec/Cowele/internal/storage"
	"github.com/haroldove90-spec/Cowele/pkg/log"
)

// PlaceInput: данные формы регистрации места.
// Coords: строка "lat, lng"; нераспознанная строка даёт центр города.
// Photo == nil: место без фото.
type PlaceInput struct {
	Name    string
	Address string
	Coords  string
	Photo   *string
}

// CreatePlace регистрирует новое место от имени текущего пользователя.
//
// Валидация:
//   - нужна сессия (ErrUnauthenticated);
//   - name и address не пустые после TrimSpace (ErrIncompleteForm).
//
// Поведение:
//   - status = clean, rating = 5.0, created_by = username сессии;
//   - после вставки перезагружается список мест;
//   - возвращает id новой записи.
func (s *Service) CreatePlace(ctx context.Context, in PlaceInput) (string, error) {
	const op = "service/places/CreatePlace"

	lg := log.Op(ctx, op)

	sess, err := s.session(op)
	if err != nil {
		lg.Warn("create place without session")
		return "", err
	}

	name, address := strings.TrimSpace(in.Name), strings.TrimSpace(in.Address)
	if name == "" || address == "" {
		lg.Warn("incomplete place form")
		return "", fmt.Errorf("%s: %w", op, ErrIncompleteForm)
	}

	release, err := s.begin(op)
	if err != nil {
		return "", err
	}
	defer release()

	pos := geo.ParseCoords(in.Coords)

	row, err := s.places.CreatePlace(ctx, storage.NewPlace{
		Name:        name,
		FullAddress: address,
		Lat:         pos.Lat,
		Lng:         pos.Lng,
		PhotoURL:    in.Photo,
		Status:      models.StatusClean,
		Rating:      models.DefaultRating,
		CreatedBy:   sess.Profile.Username,
	})
	s.metrics.Mutation("create_place", err)
	if err != nil {
		lg.Error("insert place failed", "err", err)
		return "", storageErr(op, err)
	}

	id := strconv.FormatInt(row.ID, 10)
	lg.Info("place created", "place_id", id)

	s.refreshPlaces(ctx, op)

	return id, nil
}

// UpdatePlace перезаписывает name, full_address, lat, lng, photo_url места. Только администратор.
// Фото пишется как есть: nil очищает photo_url (форма редактирования заранее получает текущее фото).
func (s *Service) UpdatePlace(ctx context.Context, id string, in PlaceInput) error {
	const op = "service/places/UpdatePlace"

	lg := log.Op(ctx, op, "place_id", id)

	if _, err := s.admin(op); err != nil {
		lg.Warn("update place rejected", "err", err)
		return err
	}

	placeID, err := parsePlaceID(op, id)
	if err != nil {
		lg.Warn("invalid place id")
		return err
	}

	name, address := strings.TrimSpace(in.Name), strings.TrimSpace(in.Address)
	if name == "" || address == "" {
		lg.Warn("incomplete place form")
		return fmt.Errorf("%s: %w", op, ErrIncompleteForm)
	}

	release, err := s.begin(op)
	if err != nil {
		return err
	}
	defer release()

	pos := geo.ParseCoords(in.Coords)

	_, err = s.places.UpdatePlace(ctx, placeID, storage.PlaceUpdate{
		Name:        &name,
		FullAddress: &address,
		Lat:         &pos.Lat,
		Lng:         &pos.Lng,
		PhotoURL:    in.Photo,
		ClearPhoto:  in.Photo == nil,
	})
	s.metrics.Mutation("update_place", err)
	if err != nil {
		lg.Error("update place failed", "err", err)
		return storageErr(op, err)
	}

	lg.Info("place updated")

	s.refreshPlaces(ctx, op)

	return nil
}

// DeletePlace удаляет место вместе с отзывами. Только администратор, нужно подтверждение.
func (s *Service) DeletePlace(ctx context.Context, id string, confirmed bool) error {
	const op = "service/places/DeletePlace"

	lg := log.Op(ctx, op, "place_id", id)

	if _, err := s.admin(op); err != nil {
		lg.Warn("delete place rejected", "err", err)
		return err
	}

	placeID, err := parsePlaceID(op, id)
	if err != nil {
		return err
	}

	if !confirmed {
		return fmt.Errorf("%s: %w", op, ErrConfirmationRequired)
	}

	release, err := s.begin(op)
	if err != nil {
		return err
	}
	defer release()

	err = s.places.DeletePlace(ctx, placeID)
	s.metrics.Mutation("delete_place", err)
	if err != nil {
		lg.Error("delete place failed", "err", err)
		return storageErr(op, err)
	}

	lg.Info("place deleted")

	s.refreshPlaces(ctx, op)

	return nil
}

func parsePlaceID(op, id string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	return v, nil
}
