package app

import (
	"context"
	"fmt"

	"github.com/haroldove90-spec/Cowele/internal/cache"
	"github.com/haroldove90-spec/Cowele/internal/geo"
	"github.com/haroldove90-spec/Cowele/internal/router"
	"github.com/haroldove90-spec/Cowele/internal/service"
	"github.com/haroldove90-spec/Cowele/pkg/log"
)

// Places: места для карты: валидные координаты, фильтр по названию.
func (a *App) Places(query string) []PlaceView {
	places := a.cache.Search(query)

	out := make([]PlaceView, len(places))
	for i, p := range places {
		out[i] = a.view(p)
	}

	return out
}

// Place: место по id с расстоянием до пользователя.
func (a *App) Place(id string) (PlaceView, error) {
	p, ok := a.cache.Place(id)
	if !ok {
		return PlaceView{}, fmt.Errorf("app/Place: %w", cache.ErrUnknownPlace)
	}

	return a.view(p), nil
}

// RefreshPlaces: ручная перезагрузка мест.
func (a *App) RefreshPlaces(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.cache.RefreshPlaces(ctx); err != nil {
		return fmt.Errorf("app/RefreshPlaces: %w: %w", service.ErrNetworkFailure, err)
	}

	a.syncMap()

	return nil
}

// SelectPlace выбирает место; карта перелетает к нему.
func (a *App) SelectPlace(ctx context.Context, id string) (PlaceView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.selectLocked(ctx, id)
}

func (a *App) selectLocked(ctx context.Context, id string) (PlaceView, error) {
	p, err := a.cache.Select(id)
	if err != nil {
		log.From(ctx).Warn("select unknown place", "op", "app/SelectPlace", "place_id", id)
		return PlaceView{}, err
	}

	a.mapc.Select(p.ID, geo.Point{Lat: p.Lat, Lng: p.Lng})

	return a.view(p), nil
}

// ClearSelection снимает выбор. Для карты это no-op.
func (a *App) ClearSelection() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cache.ClearSelection()
	a.mapc.Select("", geo.Point{})
}

// ShowInMap выбирает место, переключает на explore и закрывает подтверждение регистрации.
func (a *App) ShowInMap(ctx context.Context, id string) (PlaceView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stateMu.Lock()
	a.ack = ""
	a.stateMu.Unlock()

	v, err := a.selectLocked(ctx, id)
	if err != nil {
		return PlaceView{}, err
	}

	a.router.Reset(router.TabExplore)

	return v, nil
}

// DismissAck закрывает подтверждение регистрации.
func (a *App) DismissAck() {
	a.stateMu.Lock()
	a.ack = ""
	a.stateMu.Unlock()
}

// FitMap: ручное "показать все места".
func (a *App) FitMap() uint64 {
	return a.mapc.ManualFit()
}

// NavigationURL: ссылка на внешнюю навигацию к месту.
func (a *App) NavigationURL(id string, navApp geo.NavApp) (string, error) {
	p, ok := a.cache.Place(id)
	if !ok {
		return "", fmt.Errorf("app/NavigationURL: %w", cache.ErrUnknownPlace)
	}

	url, err := geo.NavigationURL(navApp, geo.Point{Lat: p.Lat, Lng: p.Lng})
	if err != nil {
		return "", fmt.Errorf("app/NavigationURL: %w: %w", service.ErrInvalidArgument, err)
	}

	return url, nil
}

// DeletePlace удаляет место (администратор, с подтверждением).
func (a *App) DeletePlace(ctx context.Context, id string, confirmed bool) error {
	if err := a.lockMutation("app/DeletePlace"); err != nil {
		return err
	}
	defer a.mu.Unlock()

	if err := a.svc.DeletePlace(ctx, id, confirmed); err != nil {
		return err
	}

	a.syncMap()

	return nil
}

// SubmitReview сохраняет отзыв. Лента отзывов перезагружается, если она сейчас открыта.
func (a *App) SubmitReview(ctx context.Context, placeID string, rating int, comment string) (service.ReviewResult, error) {
	if err := a.lockMutation("app/SubmitReview"); err != nil {
		return service.ReviewResult{}, err
	}
	defer a.mu.Unlock()

	res, err := a.svc.SubmitReview(ctx, placeID, rating, comment)
	if err != nil {
		return service.ReviewResult{}, err
	}

	a.syncMap()

	if tab := a.router.Active(); tab == router.TabReviewsFeed || tab == router.TabDashboard {
		if err := a.cache.RefreshReviews(ctx); err != nil {
			log.From(ctx).Warn("reviews refresh failed", "op", "app/SubmitReview", "err", err)
		}
	}

	return res, nil
}

// StartEditing копирует место в форму и открывает вкладку регистрации. Только администратор.
func (a *App) StartEditing(ctx context.Context, id string) error {
	const op = "app/StartEditing"

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.requireAdmin(op); err != nil {
		return err
	}

	p, ok := a.cache.Place(id)
	if !ok {
		return fmt.Errorf("%s: %w", op, cache.ErrUnknownPlace)
	}

	a.form.StartEdit(p)
	a.router.Reset(router.TabRegister)
	a.mapc.PickerMoved(a.form.Position())

	log.From(ctx).Info("editing place", "op", op, "place_id", id)

	return nil
}
