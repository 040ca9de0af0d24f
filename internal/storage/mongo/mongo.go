// mongo предоставляет реализацию storage.Store на базе MongoDB.
//
// Места и отзывы получают целочисленные id из коллекции counters,
// чтобы сохранить контракт "id места: целое число".
// Включение reviews в bathrooms выполняется через $lookup.
package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/haroldove90-spec/Cowele/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	placesCollection   = "bathrooms"
	reviewsCollection  = "reviews"
	profilesCollection = "profiles"
	countersCollection = "counters"
	defaultDBName      = "cowele"
)

// Mongo - тонкий адаптер для подключения и коллекций MongoDB.
type Mongo struct {
	client   *mongodriver.Client
	db       *mongodriver.Database
	places   *mongodriver.Collection
	reviews  *mongodriver.Collection
	profiles *mongodriver.Collection
	counters *mongodriver.Collection
}

// New подключается к MongoDB, проверяет его, подготавливает коллекции и обеспечивает индексацию.
func New(ctx context.Context, uri string) (*Mongo, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo: empty uri")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := cli.Database(databaseFromURI(uri))

	m := &Mongo{
		client:   cli,
		db:       db,
		places:   db.Collection(placesCollection),
		reviews:  db.Collection(reviewsCollection),
		profiles: db.Collection(profilesCollection),
		counters: db.Collection(countersCollection),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, err
	}

	return m, nil
}

// Close отключается от MongoDB.
func (m *Mongo) Close() {
	_ = m.client.Disconnect(context.Background())
}

// ensureIndexes создает индексы:
// - profiles: уникальный username;
// - bathrooms: created_at(desc) для ленты мест;
// - reviews: bathroom_id для $lookup и created_at(desc) для ленты отзывов.
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	if _, err := m.profiles.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetName("username_unique").SetUnique(true),
	}); err != nil {
		return fmt.Errorf("mongo ensure indexes: %w", err)
	}

	if _, err := m.places.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: -1}},
		Options: options.Index().SetName("created_desc"),
	}); err != nil {
		return fmt.Errorf("mongo ensure indexes: %w", err)
	}

	if _, err := m.reviews.Indexes().CreateMany(ctx, []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "bathroom_id", Value: 1}},
			Options: options.Index().SetName("bathroom_id"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_desc"),
		},
	}); err != nil {
		return fmt.Errorf("mongo ensure indexes: %w", err)
	}

	return nil
}

// nextID атомарно выдаёт следующий целочисленный id последовательности name.
func (m *Mongo) nextID(ctx context.Context, name string) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}

	err := m.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, err
	}

	return doc.Seq, nil
}

// databaseFromURI извлекает имя базы данных из URI-пути mongodb.
// Если оно отсутствует или не поддается расшифровке, возвращает значение по умолчанию.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return defaultDBName
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.Store = (*Mongo)(nil)
