package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/haroldove90-spec/Cowele/internal/models"
	"github.com/haroldove90-spec/Cowele/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// profileDoc: документ коллекции profiles. _id: строковый UUID.
type profileDoc struct {
	ID        string    `bson:"_id"`
	Username  string    `bson:"username"`
	Password  string    `bson:"password"`
	FullName  string    `bson:"full_name"`
	AvatarURL string    `bson:"avatar_url"`
	Points    int       `bson:"points"`
	Status    string    `bson:"status"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d profileDoc) model() *models.Profile {
	return &models.Profile{
		ID:        d.ID,
		Username:  d.Username,
		Password:  d.Password,
		FullName:  d.FullName,
		AvatarURL: d.AvatarURL,
		Points:    d.Points,
		Status:    models.ProfileStatus(d.Status),
		CreatedAt: d.CreatedAt.UTC(),
	}
}

func (m *Mongo) profileBy(ctx context.Context, op string, filter bson.M) (*models.Profile, error) {
	var d profileDoc
	if err := m.profiles.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return d.model(), nil
}

// Profiles возвращает все профили, новые первыми.
func (m *Mongo) Profiles(ctx context.Context) ([]models.Profile, error) {
	const op = "storage/mongo/profiles/Profiles"

	cur, err := m.profiles.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	profiles := make([]models.Profile, 0)
	for cur.Next(ctx) {
		var d profileDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		profiles = append(profiles, *d.model())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return profiles, nil
}

func (m *Mongo) ProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	return m.profileBy(ctx, "storage/mongo/profiles/ProfileByID", bson.M{"_id": id})
}

func (m *Mongo) ProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	return m.profileBy(ctx, "storage/mongo/profiles/ProfileByUsername", bson.M{"username": username})
}

func (m *Mongo) ProfileByCredentials(ctx context.Context, username, password string) (*models.Profile, error) {
	return m.profileBy(ctx, "storage/mongo/profiles/ProfileByCredentials",
		bson.M{"username": username, "password": password})
}

// CreateProfile вставляет профиль с points = 0 и status = active.
// Ошибки: storage.ErrAlreadyExists при дубликате username.
func (m *Mongo) CreateProfile(ctx context.Context, profile storage.NewProfile) (*models.Profile, error) {
	const op = "storage/mongo/profiles/CreateProfile"

	d := profileDoc{
		ID:        uuid.NewString(),
		Username:  profile.Username,
		Password:  profile.Password,
		FullName:  profile.FullName,
		Points:    0,
		Status:    string(models.ProfileActive),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := m.profiles.InsertOne(ctx, d); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return d.model(), nil
}

// UpdateProfile выполняет частичный апдейт через $set.
func (m *Mongo) UpdateProfile(ctx context.Context, id string, update storage.ProfileUpdate) (*models.Profile, error) {
	const op = "storage/mongo/profiles/UpdateProfile"

	set := bson.M{}
	if update.FullName != nil {
		set["full_name"] = *update.FullName
	}

	if update.Password != nil {
		set["password"] = *update.Password
	}

	if update.AvatarURL != nil {
		set["avatar_url"] = *update.AvatarURL
	}

	if update.Points != nil {
		set["points"] = *update.Points
	}

	if update.Status != nil {
		set["status"] = string(*update.Status)
	}

	if len(set) == 0 {
		return m.profileBy(ctx, op, bson.M{"_id": id})
	}

	var d profileDoc
	err := m.profiles.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&d)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return d.model(), nil
}

// DeleteProfile удаляет профиль и снимает ссылку profile_id с его отзывов.
func (m *Mongo) DeleteProfile(ctx context.Context, id string) error {
	const op = "storage/mongo/profiles/DeleteProfile"

	res, err := m.profiles.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	if _, err := m.reviews.UpdateMany(ctx, bson.M{"profile_id": id}, bson.M{"$unset": bson.M{"profile_id": ""}}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
