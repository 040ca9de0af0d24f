// regform хранит состояние формы регистрации/редактирования места.
// Координаты хранятся строкой "lat, lng"; карта выбора читает их через geo.ParseCoords.
package regform

import (
	"strings"
	"sync"

	"github.com/haroldove90-spec/Cowele/internal/geo"
	"github.com/haroldove90-spec/Cowele/internal/models"
)

// Fields: снимок формы.
// Photo == nil: фото не выбрано; EditingID пуст: создание нового места.
type Fields struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Coords    string  `json:"coords"`
	Photo     *string `json:"photo"`
	EditingID string  `json:"editing_id,omitempty"`
}

// Editing: форма редактирует существующее место.
func (f Fields) Editing() bool {
	return f.EditingID != ""
}

// Patch: частичное изменение текстовых полей формы.
type Patch struct {
	Name    *string
	Address *string
	Coords  *string
}

// Form: форма регистрации места.
type Form struct {
	mu           sync.Mutex
	defaultPhoto string
	f            Fields
}

// New создаёт пустую форму с координатами центра города.
func New(defaultPhoto string) *Form {
	form := &Form{defaultPhoto: defaultPhoto}
	form.f = blank()

	return form
}

func blank() Fields {
	return Fields{Coords: DefaultCoords()}
}

// DefaultCoords: строка координат центра города.
func DefaultCoords() string {
	return geo.FormatCoords(geo.CityCenter())
}

// Fields возвращает копию формы.
func (form *Form) Fields() Fields {
	form.mu.Lock()
	defer form.mu.Unlock()

	return copyFields(form.f)
}

// Position: координаты формы для карты выбора.
func (form *Form) Position() geo.Point {
	form.mu.Lock()
	defer form.mu.Unlock()

	return geo.ParseCoords(form.f.Coords)
}

// Apply применяет изменения полей. Возвращает true, если изменились координаты.
func (form *Form) Apply(p Patch) bool {
	form.mu.Lock()
	defer form.mu.Unlock()

	if p.Name != nil {
		form.f.Name = *p.Name
	}

	if p.Address != nil {
		form.f.Address = *p.Address
	}

	if p.Coords != nil && *p.Coords != form.f.Coords {
		form.f.Coords = *p.Coords
		return true
	}

	return false
}

// FocusCoords: фокус на поле координат очищает его.
func (form *Form) FocusCoords() {
	form.mu.Lock()
	defer form.mu.Unlock()

	form.f.Coords = ""
}

// PickFromMap записывает точку с карты выбора в поле координат.
func (form *Form) PickFromMap(p geo.Point) {
	form.mu.Lock()
	defer form.mu.Unlock()

	form.f.Coords = geo.FormatCoords(p)
}

// SetPhoto привязывает URL загруженного фото.
func (form *Form) SetPhoto(url string) {
	form.mu.Lock()
	defer form.mu.Unlock()

	form.f.Photo = &url
}

// StartEdit копирует место в форму. Фото по умолчанию считается отсутствующим.
func (form *Form) StartEdit(p models.Place) {
	form.mu.Lock()
	defer form.mu.Unlock()

	form.f = Fields{
		Name:      p.Name,
		Address:   p.Address,
		Coords:    geo.FormatCoords(geo.Point{Lat: p.Lat, Lng: p.Lng}),
		EditingID: p.ID,
	}

	if p.Photo != "" && p.Photo != form.defaultPhoto {
		photo := p.Photo
		form.f.Photo = &photo
	}
}

// ApplyLocationFix подставляет позицию устройства (6 знаков),
// если в форме всё ещё координаты центра города. Возвращает true при замене.
func (form *Form) ApplyLocationFix(p geo.Point) bool {
	form.mu.Lock()
	defer form.mu.Unlock()

	if strings.TrimSpace(form.f.Coords) != DefaultCoords() {
		return false
	}

	form.f.Coords = geo.FormatCoordsFixed(p, 6)

	return true
}

// Reset возвращает форму в исходное состояние (после успешной отправки или отмены).
func (form *Form) Reset() {
	form.mu.Lock()
	defer form.mu.Unlock()

	form.f = blank()
}

func copyFields(f Fields) Fields {
	if f.Photo != nil {
		photo := *f.Photo
		f.Photo = &photo
	}

	return f
}
