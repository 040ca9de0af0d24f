// cache держит кэш сущностей клиента: места (с отзывами), профили и лента отзывов,
// плюс id выбранного места.
//
// Все обновления: полные перезагрузки без TTL и без слияния.
// Выбор хранится как id: после обновления списка он либо указывает на новую запись
// с тем же id, либо сбрасывается.
package cache

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/haroldove90-spec/Cowele/internal/geo"
	"github.com/haroldove90-spec/Cowele/internal/metrics"
	"github.com/haroldove90-spec/Cowele/internal/models"
	"github.com/haroldove90-spec/Cowele/internal/storage"
	"github.com/haroldove90-spec/Cowele/pkg/log"
)

// ErrUnknownPlace: id отсутствует в текущем списке мест.
var ErrUnknownPlace = errors.New("unknown place")

// Source: всё, что кэш читает из удалённого хранилища.
type Source interface {
	PlacesWithReviews(ctx context.Context) ([]storage.PlaceRow, error)
	Reviews(ctx context.Context) ([]models.Review, error)
	Profiles(ctx context.Context) ([]models.Profile, error)
}

// Cache: единственный писатель списков сущностей.
type Cache struct {
	mu           sync.RWMutex
	src          Source
	defaultPhoto string
	metrics      *metrics.Metrics

	places   []models.Place
	index    map[string]int
	profiles []models.Profile
	reviews  []models.Review
	selected string
}

// New создаёт пустой кэш. defaultPhoto подставляется местам без фото.
// m может быть nil.
func New(src Source, defaultPhoto string, m *metrics.Metrics) *Cache {
	return &Cache{
		src:          src,
		defaultPhoto: defaultPhoto,
		metrics:      m,
		index:        make(map[string]int),
	}
}

// RefreshPlaces перезагружает места с отзывами и атомарно заменяет список.
// При ошибке кэш не меняется.
// Возвращает true, если удерживаемый выбор был сброшен (записи с тем же id больше нет).
func (c *Cache) RefreshPlaces(ctx context.Context) (selectionCleared bool, err error) {
	const op = "cache/RefreshPlaces"

	rows, err := c.src.PlacesWithReviews(ctx)
	c.metrics.Refresh("places", err)
	if err != nil {
		log.From(ctx).Error("places refresh failed", "op", op, "err", err)
		return false, fmt.Errorf("%s: %w", op, err)
	}

	places := make([]models.Place, 0, len(rows))
	index := make(map[string]int, len(rows))

	for _, row := range rows {
		p := c.normalize(row)
		index[p.ID] = len(places)
		places = append(places, p)
	}

	c.mu.Lock()
	c.places = places
	c.index = index

	if c.selected != "" {
		if _, ok := index[c.selected]; !ok {
			c.selected = ""
			selectionCleared = true
		}
	}
	c.mu.Unlock()

	log.From(ctx).Debug("places refreshed", "op", op, "count", len(places))

	return selectionCleared, nil
}

// RefreshProfiles перезагружает список профилей.
func (c *Cache) RefreshProfiles(ctx context.Context) error {
	const op = "cache/RefreshProfiles"

	profiles, err := c.src.Profiles(ctx)
	c.metrics.Refresh("profiles", err)
	if err != nil {
		log.From(ctx).Error("profiles refresh failed", "op", op, "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	c.profiles = profiles
	c.mu.Unlock()

	return nil
}

// RefreshReviews перезагружает глобальную ленту отзывов.
func (c *Cache) RefreshReviews(ctx context.Context) error {
	const op = "cache/RefreshReviews"

	reviews, err := c.src.Reviews(ctx)
	c.metrics.Refresh("reviews", err)
	if err != nil {
		log.From(ctx).Error("reviews refresh failed", "op", op, "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	c.reviews = reviews
	c.mu.Unlock()

	return nil
}

// normalize приводит строку хранилища к записи кэша.
func (c *Cache) normalize(row storage.PlaceRow) models.Place {
	center := geo.CityCenter()

	p := models.Place{
		ID:           strconv.FormatInt(row.ID, 10),
		Name:         row.Name,
		Address:      firstNonEmpty(row.FullAddress, row.Address),
		Lat:          center.Lat,
		Lng:          center.Lng,
		Photo:        firstNonEmpty(row.PhotoURL),
		Status:       models.StatusClean,
		Rating:       models.DefaultRating,
		LastReported: row.CreatedAt,
	}

	if row.Lat != nil {
		p.Lat = *row.Lat
	}

	if row.Lng != nil {
		p.Lng = *row.Lng
	}

	if p.Photo == "" {
		p.Photo = c.defaultPhoto
	}

	if row.Status != nil && models.PlaceStatus(*row.Status).Valid() {
		p.Status = models.PlaceStatus(*row.Status)
	}

	if row.Rating != nil {
		p.Rating = clampRating(*row.Rating)
	}

	if row.CreatedBy != nil {
		p.CreatedBy = *row.CreatedBy
	}

	if row.IsPaid != nil {
		p.IsPaid = *row.IsPaid
	}

	p.Reviews = make([]models.Review, len(row.Reviews))
	for i, r := range row.Reviews {
		p.Reviews[i] = r.Clone()
	}
	sortReviews(p.Reviews)

	return p
}

// sortReviews: новые первыми; при равном времени больший id первым.
func sortReviews(reviews []models.Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		a, b := reviews[i], reviews[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}

		ai, errA := strconv.ParseInt(a.ID, 10, 64)
		bi, errB := strconv.ParseInt(b.ID, 10, 64)
		if errA == nil && errB == nil {
			return ai > bi
		}

		return a.ID > b.ID
	})
}

func clampRating(r float64) float64 {
	switch {
	case math.IsNaN(r):
		return models.DefaultRating
	case r < 0:
		return 0
	case r > 5:
		return 5
	default:
		return r
	}
}

func firstNonEmpty(vals ...*string) string {
	for _, v := range vals {
		if v != nil && *v != "" {
			return *v
		}
	}

	return ""
}

// Places возвращает копию списка мест в порядке хранилища (новые первыми).
func (c *Cache) Places() []models.Place {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return clonePlaces(c.places, nil)
}

// ValidPlaces: места с конечными координатами (только они попадают на карту).
func (c *Cache) ValidPlaces() []models.Place {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return clonePlaces(c.places, func(p models.Place) bool {
		return geo.Valid(geo.Point{Lat: p.Lat, Lng: p.Lng})
	})
}

// Search: валидные места, в названии которых есть query (без учёта регистра).
// Пустой query возвращает все валидные места.
func (c *Cache) Search(query string) []models.Place {
	q := strings.ToLower(query)

	c.mu.RLock()
	defer c.mu.RUnlock()

	return clonePlaces(c.places, func(p models.Place) bool {
		return geo.Valid(geo.Point{Lat: p.Lat, Lng: p.Lng}) &&
			strings.Contains(strings.ToLower(p.Name), q)
	})
}

// Place возвращает место по id.
func (c *Cache) Place(id string) (models.Place, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return models.Place{}, false
	}

	return c.places[i].Clone(), true
}

// Select выбирает место по id.
func (c *Cache) Select(id string) (models.Place, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return models.Place{}, fmt.Errorf("cache/Select: %w", ErrUnknownPlace)
	}

	c.selected = id

	return c.places[i].Clone(), nil
}

// ClearSelection снимает выбор.
func (c *Cache) ClearSelection() {
	c.mu.Lock()
	c.selected = ""
	c.mu.Unlock()
}

// Selected возвращает выбранное место, разрешённое по текущему списку.
func (c *Cache) Selected() (models.Place, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.selected == "" {
		return models.Place{}, false
	}

	i, ok := c.index[c.selected]
	if !ok {
		return models.Place{}, false
	}

	return c.places[i].Clone(), true
}

// SelectedID возвращает id выбора или пустую строку.
func (c *Cache) SelectedID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.selected
}

// Profiles возвращает копию списка профилей.
func (c *Cache) Profiles() []models.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Profile, len(c.profiles))
	copy(out, c.profiles)

	return out
}

// Profile возвращает профиль из кэша по id.
func (c *Cache) Profile(id string) (models.Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.profiles {
		if p.ID == id {
			return p, true
		}
	}

	return models.Profile{}, false
}

// Reviews возвращает копию ленты отзывов.
func (c *Cache) Reviews() []models.Review {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Review, len(c.reviews))
	for i, r := range c.reviews {
		out[i] = r.Clone()
	}

	return out
}

func clonePlaces(in []models.Place, keep func(models.Place) bool) []models.Place {
	out := make([]models.Place, 0, len(in))
	for _, p := range in {
		if keep == nil || keep(p) {
			out = append(out, p.Clone())
		}
	}

	return out
}
