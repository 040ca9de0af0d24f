package mongo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/haroldove90-spec/Cowele/internal/models"
	"github.com/haroldove90-spec/Cowele/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// placeDoc: документ коллекции bathrooms.
type placeDoc struct {
	ID          int64       `bson:"_id"`
	Name        string      `bson:"name"`
	FullAddress *string     `bson:"full_address,omitempty"`
	Address     *string     `bson:"address,omitempty"`
	Lat         *float64    `bson:"lat,omitempty"`
	Lng         *float64    `bson:"lng,omitempty"`
	PhotoURL    *string     `bson:"photo_url,omitempty"`
	Status      *string     `bson:"status,omitempty"`
	Rating      *float64    `bson:"rating,omitempty"`
	CreatedBy   *string     `bson:"created_by,omitempty"`
	IsPaid      *bool       `bson:"is_paid,omitempty"`
	CreatedAt   time.Time   `bson:"created_at"`
	Reviews     []reviewDoc `bson:"reviews,omitempty"`
}

func (d placeDoc) row() storage.PlaceRow {
	row := storage.PlaceRow{
		ID:          d.ID,
		Name:        d.Name,
		FullAddress: d.FullAddress,
		Address:     d.Address,
		Lat:         d.Lat,
		Lng:         d.Lng,
		PhotoURL:    d.PhotoURL,
		Status:      d.Status,
		Rating:      d.Rating,
		CreatedBy:   d.CreatedBy,
		IsPaid:      d.IsPaid,
		CreatedAt:   d.CreatedAt.UTC(),
	}

	for _, r := range d.Reviews {
		row.Reviews = append(row.Reviews, r.model())
	}

	return row
}

// PlacesWithReviews возвращает все места (created_at desc) вместе с отзывами через $lookup.
func (m *Mongo) PlacesWithReviews(ctx context.Context) ([]storage.PlaceRow, error) {
	const op = "storage/mongo/places/PlacesWithReviews"

	pipeline := mongodriver.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: reviewsCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "bathroom_id"},
			{Key: "as", Value: "reviews"},
		}}},
	}

	cur, err := m.places.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	rows := make([]storage.PlaceRow, 0)
	for cur.Next(ctx) {
		var d placeDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		rows = append(rows, d.row())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rows, nil
}

// CreatePlace вставляет новое место с очередным id из counters.
func (m *Mongo) CreatePlace(ctx context.Context, place storage.NewPlace) (*storage.PlaceRow, error) {
	const op = "storage/mongo/places/CreatePlace"

	id, err := m.nextID(ctx, placesCollection)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	status := string(place.Status)
	d := placeDoc{
		ID:          id,
		Name:        place.Name,
		FullAddress: &place.FullAddress,
		Lat:         &place.Lat,
		Lng:         &place.Lng,
		PhotoURL:    place.PhotoURL,
		Status:      &status,
		Rating:      &place.Rating,
		CreatedBy:   &place.CreatedBy,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := m.places.InsertOne(ctx, d); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	row := d.row()
	return &row, nil
}

// UpdatePlace выполняет частичный апдейт через $set.
// Ошибки: storage.ErrNotFound при отсутствии документа.
func (m *Mongo) UpdatePlace(ctx context.Context, id int64, update storage.PlaceUpdate) (*storage.PlaceRow, error) {
	const op = "storage/mongo/places/UpdatePlace"

	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}

	if update.FullAddress != nil {
		set["full_address"] = *update.FullAddress
	}

	if update.Lat != nil {
		set["lat"] = *update.Lat
	}

	if update.Lng != nil {
		set["lng"] = *update.Lng
	}

	switch {
	case update.ClearPhoto:
		set["photo_url"] = nil
	case update.PhotoURL != nil:
		set["photo_url"] = *update.PhotoURL
	}

	var res *mongodriver.SingleResult
	if len(set) == 0 {
		res = m.places.FindOne(ctx, bson.M{"_id": id})
	} else {
		res = m.places.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After))
	}

	var d placeDoc
	if err := res.Decode(&d); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	row := d.row()
	return &row, nil
}

// DeletePlace удаляет место и каскадно его отзывы.
func (m *Mongo) DeletePlace(ctx context.Context, id int64) error {
	const op = "storage/mongo/places/DeletePlace"

	res, err := m.places.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	if _, err := m.reviews.DeleteMany(ctx, bson.M{"bathroom_id": id}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// reviewDoc: документ коллекции reviews.
type reviewDoc struct {
	ID         int64     `bson:"_id"`
	BathroomID int64     `bson:"bathroom_id"`
	ProfileID  *string   `bson:"profile_id,omitempty"`
	UserName   string    `bson:"user_name"`
	Rating     int       `bson:"rating"`
	Comment    string    `bson:"comment"`
	CreatedAt  time.Time `bson:"created_at"`
}

func (d reviewDoc) model() models.Review {
	return models.Review{
		ID:         strconv.FormatInt(d.ID, 10),
		BathroomID: strconv.FormatInt(d.BathroomID, 10),
		UserName:   d.UserName,
		ProfileID:  d.ProfileID,
		Rating:     d.Rating,
		Comment:    d.Comment,
		CreatedAt:  d.CreatedAt.UTC(),
	}
}
