// memory предоставляет реализацию storage.Store, storage.Objects и storage.KV в памяти процесса.
// Используется для store.driver=memory (локальный запуск без БД) и в сценарных тестах.
//
// Семантика повторяет удалённое хранилище: целочисленные id мест и отзывов,
// уникальный username, каскадное удаление отзывов и обнуление profile_id.
package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/haroldove90-spec/Cowele/internal/models"
	"github.com/haroldove90-spec/Cowele/internal/storage"
	"github.com/jonboulle/clockwork"
)

type Store struct {
	mu    sync.Mutex
	clock clockwork.Clock

	fail error

	placeSeq  int64
	reviewSeq int64

	places   map[int64]*storage.PlaceRow
	reviews  []models.Review
	profiles map[string]*models.Profile
}

// New создаёт пустое хранилище. clock задаёт created_at новых записей.
func New(clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Store{
		clock:    clock,
		places:   make(map[int64]*storage.PlaceRow),
		profiles: make(map[string]*models.Profile),
	}
}

// SetFailure заставляет все последующие операции возвращать err (nil: снять).
func (s *Store) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fail = err
}

func (s *Store) Close() {}

// PlacesWithReviews возвращает копии мест (created_at desc, id desc) с отзывами.
func (s *Store) PlacesWithReviews(_ context.Context) ([]storage.PlaceRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return nil, s.fail
	}

	rows := make([]storage.PlaceRow, 0, len(s.places))
	for _, p := range s.places {
		row := *p
		row.Reviews = nil

		for _, r := range s.reviews {
			if r.BathroomID == strconv.FormatInt(row.ID, 10) {
				row.Reviews = append(row.Reviews, r.Clone())
			}
		}

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}

		return rows[i].ID > rows[j].ID
	})

	return rows, nil
}

func (s *Store) CreatePlace(_ context.Context, place storage.NewPlace) (*storage.PlaceRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return nil, s.fail
	}

	s.placeSeq++

	status := string(place.Status)
	fullAddress := place.FullAddress
	lat, lng, rating := place.Lat, place.Lng, place.Rating
	createdBy := place.CreatedBy

	row := storage.PlaceRow{
		ID:          s.placeSeq,
		Name:        place.Name,
		FullAddress: &fullAddress,
		Lat:         &lat,
		Lng:         &lng,
		PhotoURL:    copyPtr(place.PhotoURL),
		Status:      &status,
		Rating:      &rating,
		CreatedBy:   &createdBy,
		CreatedAt:   s.clock.Now().UTC(),
	}

	stored := row
	s.places[row.ID] = &stored

	return &row, nil
}

func (s *Store) UpdatePlace(_ context.Context, id int64, update storage.PlaceUpdate) (*storage.PlaceRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return nil, s.fail
	}

	rec, ok := s.places[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	if update.Name != nil {
		rec.Name = *update.Name
	}

	if update.FullAddress != nil {
		rec.FullAddress = copyPtr(update.FullAddress)
	}

	if update.Lat != nil {
		rec.Lat = copyPtr(update.Lat)
	}

	if update.Lng != nil {
		rec.Lng = copyPtr(update.Lng)
	}

	switch {
	case update.ClearPhoto:
		rec.PhotoURL = nil
	case update.PhotoURL != nil:
		rec.PhotoURL = copyPtr(update.PhotoURL)
	}

	row := *rec
	return &row, nil
}

func (s *Store) DeletePlace(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return s.fail
	}

	if _, ok := s.places[id]; !ok {
		return storage.ErrNotFound
	}

	delete(s.places, id)

	key := strconv.FormatInt(id, 10)
	kept := s.reviews[:0]
	for _, r := range s.reviews {
		if r.BathroomID != key {
			kept = append(kept, r)
		}
	}
	s.reviews = kept

	return nil
}

// Reviews возвращает ленту отзывов, новые первыми.
func (s *Store) Reviews(_ context.Context) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return nil, s.fail
	}

	out := make([]models.Review, 0, len(s.reviews))
	for i := len(s.reviews) - 1; i >= 0; i-- {
		out = append(out, s.reviews[i].Clone())
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (s *Store) CreateReview(_ context.Context, review storage.NewReview) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return nil, s.fail
	}

	if _, ok := s.places[review.BathroomID]; !ok {
		return nil, storage.ErrNotFound
	}

	if review.ProfileID != nil {
		if _, ok := s.profiles[*review.ProfileID]; !ok {
			return nil, storage.ErrNotFound
		}
	}

	s.reviewSeq++

	r := models.Review{
		ID:         strconv.FormatInt(s.reviewSeq, 10),
		BathroomID: strconv.FormatInt(review.BathroomID, 10),
		UserName:   review.UserName,
		ProfileID:  copyPtr(review.ProfileID),
		Rating:     review.Rating,
		Comment:    review.Comment,
		CreatedAt:  s.clock.Now().UTC(),
	}
	s.reviews = append(s.reviews, r)

	out := r.Clone()
	return &out, nil
}

// Profiles возвращает все профили, новые первыми.
func (s *Store) Profiles(_ context.Context) ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return nil, s.fail
	}

	out := make([]models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, *p)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}

		return out[i].Username < out[j].Username
	})

	return out, nil
}

func (s *Store) ProfileByID(_ context.Context, id string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return nil, s.fail
	}

	p, ok := s.profiles[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	out := *p
	return &out, nil
}

func (s *Store) ProfileByUsername(_ context.Context, username string) (*models.Profile, error) {
	return s.findProfile(func(p *models.Profile) bool { return p.Username == username })
}

func (s *Store) ProfileByCredentials(_ context.Context, username, password string) (*models.Profile, error) {
	return s.findProfile(func(p *models.Profile) bool {
		return p.Username == username && p.Password == password
	})
}

func (s *Store) findProfile(match func(p *models.Profile) bool) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return nil, s.fail
	}

	for _, p := range s.profiles {
		if match(p) {
			out := *p
			return &out, nil
		}
	}

	return nil, storage.ErrNotFound
}

func (s *Store) CreateProfile(_ context.Context, profile storage.NewProfile) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return nil, s.fail
	}

	for _, p := range s.profiles {
		if p.Username == profile.Username {
			return nil, storage.ErrAlreadyExists
		}
	}

	p := &models.Profile{
		ID:        uuid.NewString(),
		Username:  profile.Username,
		Password:  profile.Password,
		FullName:  profile.FullName,
		Points:    0,
		Status:    models.ProfileActive,
		CreatedAt: s.clock.Now().UTC(),
	}
	s.profiles[p.ID] = p

	out := *p
	return &out, nil
}

func (s *Store) UpdateProfile(_ context.Context, id string, update storage.ProfileUpdate) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return nil, s.fail
	}

	p, ok := s.profiles[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	if update.FullName != nil {
		p.FullName = *update.FullName
	}

	if update.Password != nil {
		p.Password = *update.Password
	}

	if update.AvatarURL != nil {
		p.AvatarURL = *update.AvatarURL
	}

	if update.Points != nil {
		p.Points = *update.Points
	}

	if update.Status != nil {
		p.Status = *update.Status
	}

	out := *p
	return &out, nil
}

func (s *Store) DeleteProfile(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return s.fail
	}

	if _, ok := s.profiles[id]; !ok {
		return storage.ErrNotFound
	}

	delete(s.profiles, id)

	for i := range s.reviews {
		if pid := s.reviews[i].ProfileID; pid != nil && *pid == id {
			s.reviews[i].ProfileID = nil
		}
	}

	return nil
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}

	v := *p
	return &v
}

// Objects: объектное хранилище в памяти. Публичный URL: <baseURL>/<key>.
type Objects struct {
	mu      sync.Mutex
	baseURL string
	fail    error
	objects map[string][]byte
}

func NewObjects(baseURL string) *Objects {
	return &Objects{baseURL: strings.TrimRight(baseURL, "/"), objects: make(map[string][]byte)}
}

// SetFailure заставляет Upload возвращать err (nil: снять).
func (o *Objects) SetFailure(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.fail = err
}

func (o *Objects) Upload(_ context.Context, key, _ string, data []byte) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fail != nil {
		return "", o.fail
	}

	o.objects[key] = append([]byte(nil), data...)

	return o.baseURL + "/" + key, nil
}

// Keys возвращает сохранённые ключи в лексикографическом порядке.
func (o *Objects) Keys() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	keys := make([]string, 0, len(o.objects))
	for k := range o.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// KV: долговременное хранилище клиента в памяти.
type KV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewKV() *KV {
	return &KV{data: make(map[string][]byte)}
}

func (k *KV) Get(_ context.Context, key string) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	v, ok := k.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}

	return append([]byte(nil), v...), nil
}

func (k *KV) Set(_ context.Context, key string, value []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.data[key] = append([]byte(nil), value...)
	return nil
}

func (k *KV) Delete(_ context.Context, key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	delete(k.data, key)
	return nil
}

var (
	_ storage.Store   = (*Store)(nil)
	_ storage.Objects = (*Objects)(nil)
	_ storage.KV      = (*KV)(nil)
)
