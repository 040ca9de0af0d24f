// postgres предоставляет реализацию storage.Store на базе PostgreSQL.
//
// Включение reviews в bathrooms выполняется вторым запросом по списку id,
// как однократный include удалённого хранилища.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/haroldove90-spec/Cowele/internal/storage"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Storage struct {
	db *pgxpool.Pool
}

// New создает и инициализирует пул соединений к PostgreSQL.
func New(ctx context.Context, dbURL string) (*Storage, error) {
	const op = "storage/postgres/New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

// Close закрывает пул соединений.
// Должен вызываться при остановке приложения.
func (s *Storage) Close() {
	s.db.Close()
}

// mapPgError переводит нарушения ограничений PostgreSQL в ошибки storage.
// Остальные ошибки возвращаются как есть.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return storage.ErrAlreadyExists
	case pgerrcode.ForeignKeyViolation:
		return storage.ErrNotFound
	default:
		return err
	}
}

// parseProfileID: id профиля в этой схеме всегда UUID;
// невалидная строка не может ссылаться на существующую запись.
func parseProfileID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, storage.ErrNotFound
	}

	return uid, nil
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.Store = (*Storage)(nil)
