package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/haroldove90-spec/Cowele/internal/models"
	"github.com/haroldove90-spec/Cowele/internal/storage"
	"github.com/haroldove90-spec/Cowele/pkg/log"
)

// ReviewResult: итог отзыва.
// Awarded == false для синтезированного администратора: строка профиля не пишется.
type ReviewResult struct {
	Review  models.Review
	Awarded bool
	Points  int
}

// SubmitReview сохраняет отзыв и начисляет автору 10 очков.
//
// Порядок строго последовательный: вставка отзыва, обновление очков, перезагрузка мест.
// Ленту отзывов перезагружает вызывающий, если она сейчас открыта.
//
// Начисление: read-modify-write без атомарного инкремента: одновременные отзывы
// одного пользователя с разных устройств могут потерять очки.
// Ошибка записи очков не отменяет отзыв; в сессию зеркалируется новое значение.
func (s *Service) SubmitReview(ctx context.Context, placeID string, rating int, comment string) (ReviewResult, error) {
	const op = "service/reviews/SubmitReview"

	lg := log.Op(ctx, op, "place_id", placeID)

	sess, err := s.session(op)
	if err != nil {
		lg.Warn("review without session")
		return ReviewResult{}, err
	}

	if strings.TrimSpace(comment) == "" {
		lg.Warn("empty review comment")
		return ReviewResult{}, fmt.Errorf("%s: %w", op, ErrIncompleteForm)
	}

	if !models.ValidRating(rating) {
		lg.Warn("rating out of range", "rating", rating)
		return ReviewResult{}, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	id, err := parsePlaceID(op, placeID)
	if err != nil {
		lg.Warn("invalid place id")
		return ReviewResult{}, err
	}

	release, err := s.begin(op)
	if err != nil {
		return ReviewResult{}, err
	}
	defer release()

	in := storage.NewReview{
		BathroomID: id,
		UserName:   sess.Profile.DisplayName(),
		Rating:     rating,
		Comment:    comment,
	}

	if sess.Persisted() {
		pid := sess.Profile.ID
		in.ProfileID = &pid
	}

	review, err := s.reviews.CreateReview(ctx, in)
	s.metrics.Mutation("create_review", err)
	if err != nil {
		lg.Error("insert review failed", "err", err)
		return ReviewResult{}, storageErr(op, err)
	}

	res := ReviewResult{Review: *review, Points: sess.Profile.Points}

	if sess.Persisted() {
		res.Awarded = true
		res.Points = s.awardPoints(ctx, sess)
	}

	lg.Info("review saved", "review_id", review.ID, "awarded", res.Awarded)

	s.refreshPlaces(ctx, op)

	return res, nil
}

// awardPoints начисляет очки за отзыв и возвращает новое значение.
// Текущее значение берётся из строки профиля; если её прочитать не удалось, из сессии.
func (s *Service) awardPoints(ctx context.Context, sess models.Session) int {
	const op = "service/reviews/awardPoints"

	lg := log.Op(ctx, op, "profile_id", sess.Profile.ID)

	base := sess.Profile.Points

	p, err := s.profiles.ProfileByID(ctx, sess.Profile.ID)
	switch {
	case err == nil:
		base = p.Points
	case errors.Is(err, storage.ErrNotFound):
		lg.Warn("profile row is gone, using session points")
	default:
		lg.Error("read points failed, using session points", "err", err)
	}

	points := base + models.PointsPerReview

	_, err = s.profiles.UpdateProfile(ctx, sess.Profile.ID, storage.ProfileUpdate{Points: &points})
	s.metrics.Mutation("award_points", err)
	if err != nil {
		lg.Error("points update failed", "err", err)
	}

	s.sessions.MirrorPoints(ctx, sess.Profile.ID, points)

	return points
}
