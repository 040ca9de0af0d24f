package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/haroldove90-spec/Cowele/internal/models"
	"github.com/haroldove90-spec/Cowele/internal/storage"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func TestStore_PlacesAndReviews(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	s := New(clock)
	ctx := context.Background()

	a, err := s.CreatePlace(ctx, storage.NewPlace{Name: "A", FullAddress: "a", Status: models.StatusClean, Rating: 5})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	b, err := s.CreatePlace(ctx, storage.NewPlace{Name: "B", FullAddress: "b", Status: models.StatusClean, Rating: 5})
	require.NoError(t, err)

	_, err = s.CreateReview(ctx, storage.NewReview{BathroomID: a.ID, UserName: "x", Rating: 5, Comment: "c1"})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = s.CreateReview(ctx, storage.NewReview{BathroomID: a.ID, UserName: "x", Rating: 4, Comment: "c2"})
	require.NoError(t, err)

	rows, err := s.PlacesWithReviews(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{b.ID, a.ID}, []int64{rows[0].ID, rows[1].ID})
	require.Len(t, rows[1].Reviews, 2)

	feed, err := s.Reviews(ctx)
	require.NoError(t, err)
	require.Equal(t, "c2", feed[0].Comment)

	_, err = s.CreateReview(ctx, storage.NewReview{BathroomID: 99, Rating: 5, Comment: "x"})
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.DeletePlace(ctx, a.ID))
	feed, err = s.Reviews(ctx)
	require.NoError(t, err)
	require.Empty(t, feed)
}

func TestStore_UpdatePlacePhoto(t *testing.T) {
	s := New(clockwork.NewFakeClock())
	ctx := context.Background()

	photo := "https://cdn.test/a.jpg"
	a, err := s.CreatePlace(ctx, storage.NewPlace{Name: "A", FullAddress: "a", PhotoURL: &photo})
	require.NoError(t, err)

	name := "A2"
	row, err := s.UpdatePlace(ctx, a.ID, storage.PlaceUpdate{Name: &name})
	require.NoError(t, err)
	require.Equal(t, photo, *row.PhotoURL)

	row, err = s.UpdatePlace(ctx, a.ID, storage.PlaceUpdate{PhotoURL: &photo, ClearPhoto: true})
	require.NoError(t, err)
	require.Nil(t, row.PhotoURL)
	require.Equal(t, "A2", row.Name)
}

func TestStore_Profiles(t *testing.T) {
	s := New(clockwork.NewFakeClock())
	ctx := context.Background()

	p, err := s.CreateProfile(ctx, storage.NewProfile{Username: "alice", Password: "p"})
	require.NoError(t, err)

	_, err = s.CreateProfile(ctx, storage.NewProfile{Username: "alice", Password: "q"})
	require.ErrorIs(t, err, storage.ErrAlreadyExists)

	_, err = s.ProfileByCredentials(ctx, "alice", "q")
	require.ErrorIs(t, err, storage.ErrNotFound)

	points := 42
	up, err := s.UpdateProfile(ctx, p.ID, storage.ProfileUpdate{Points: &points})
	require.NoError(t, err)
	require.Equal(t, 42, up.Points)

	place, err := s.CreatePlace(ctx, storage.NewPlace{Name: "A", Status: models.StatusClean})
	require.NoError(t, err)
	_, err = s.CreateReview(ctx, storage.NewReview{BathroomID: place.ID, ProfileID: &p.ID, Rating: 5, Comment: "c"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteProfile(ctx, p.ID))
	feed, err := s.Reviews(ctx)
	require.NoError(t, err)
	require.Nil(t, feed[0].ProfileID)
}

func TestStore_Failure(t *testing.T) {
	s := New(nil)
	boom := errors.New("network down")
	s.SetFailure(boom)

	_, err := s.PlacesWithReviews(context.Background())
	require.ErrorIs(t, err, boom)

	s.SetFailure(nil)
	_, err = s.PlacesWithReviews(context.Background())
	require.NoError(t, err)
}

func TestObjectsAndKV(t *testing.T) {
	o := NewObjects("memory://bathrooms/")
	url, err := o.Upload(context.Background(), "k1", "image/png", []byte("x"))
	require.NoError(t, err)
	require.Equal(t, "memory://bathrooms/k1", url)
	require.Equal(t, []string{"k1"}, o.Keys())

	kv := NewKV()
	_, err = kv.Get(context.Background(), "k")
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, kv.Set(context.Background(), "k", []byte("v")))
	v, err := kv.Get(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, "v", string(v))
}
