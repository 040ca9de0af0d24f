package app

import (
	"context"
	"fmt"

	"github.com/haroldove90-spec/Cowele/internal/geo"
	"github.com/haroldove90-spec/Cowele/internal/regform"
	"github.com/haroldove90-spec/Cowele/internal/service"
	"github.com/haroldove90-spec/Cowele/pkg/log"
)

// Form: текущее состояние формы регистрации.
func (a *App) Form() regform.Fields {
	return a.form.Fields()
}

// PatchForm меняет текстовые поля. Смена координат двигает карту выбора.
func (a *App) PatchForm(p regform.Patch) regform.Fields {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.form.Apply(p) {
		a.mapc.PickerMoved(a.form.Position())
	}

	return a.form.Fields()
}

// FocusCoords: фокус на поле координат очищает его.
func (a *App) FocusCoords() regform.Fields {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.form.FocusCoords()
	a.mapc.PickerMoved(a.form.Position())

	return a.form.Fields()
}

// PickerClick: клик по карте выбора записывает точку в форму.
func (a *App) PickerClick(p geo.Point) regform.Fields {
	a.mu.Lock()
	defer a.mu.Unlock()

	p = a.mapc.PickerClicked(p)
	a.form.PickFromMap(p)
	a.mapc.PickerMoved(p)

	return a.form.Fields()
}

// PickerZoom запоминает зум карты выбора.
func (a *App) PickerZoom(zoom int) {
	a.mapc.PickerZoomed(zoom)
}

// UploadPhoto загружает фото и привязывает его к форме. При ошибке форма не меняется.
func (a *App) UploadPhoto(ctx context.Context, filename, contentType string, data []byte) (regform.Fields, error) {
	if err := a.lockMutation("app/UploadPhoto"); err != nil {
		return regform.Fields{}, err
	}
	defer a.mu.Unlock()

	url, err := a.svc.UploadImage(ctx, filename, contentType, data)
	if err != nil {
		return a.form.Fields(), err
	}

	a.form.SetPhoto(url)

	return a.form.Fields(), nil
}

// SubmitForm создаёт или обновляет место в зависимости от режима формы.
// После успеха: перезагрузка мест, подтверждение с id записи, сброс формы.
func (a *App) SubmitForm(ctx context.Context) (string, error) {
	const op = "app/SubmitForm"

	if err := a.lockMutation(op); err != nil {
		return "", err
	}
	defer a.mu.Unlock()

	f := a.form.Fields()
	in := service.PlaceInput{Name: f.Name, Address: f.Address, Coords: f.Coords, Photo: f.Photo}

	id := f.EditingID

	var err error
	if f.Editing() {
		err = a.svc.UpdatePlace(ctx, id, in)
	} else {
		id, err = a.svc.CreatePlace(ctx, in)
	}

	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	a.syncMap()

	a.stateMu.Lock()
	a.ack = id
	a.stateMu.Unlock()

	a.form.Reset()
	a.mapc.PickerMoved(a.form.Position())

	log.From(ctx).Info("place form submitted", "op", op, "place_id", id, "edit", f.Editing())

	return id, nil
}

// ResetForm отменяет редактирование и очищает форму.
func (a *App) ResetForm() regform.Fields {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.form.Reset()
	a.mapc.PickerMoved(a.form.Position())

	return a.form.Fields()
}
