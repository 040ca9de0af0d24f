// redis предоставляет реализацию storage.KV на базе Redis
// (долговременный снимок сессии клиента без TTL).
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/haroldove90-spec/Cowele/internal/config"
	"github.com/haroldove90-spec/Cowele/internal/storage"
	goredis "github.com/redis/go-redis/v9"
)

type KV struct {
	db *goredis.Client
}

// New подключается к Redis и проверяет соединение.
func New(ctx context.Context, cfg config.LocalConfig) (*KV, error) {
	const op = "storage/redis/New"

	db := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &KV{db: db}, nil
}

func (k *KV) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "storage/redis/Get"

	val, err := k.db.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return val, nil
}

func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	const op = "storage/redis/Set"

	if err := k.db.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (k *KV) Delete(ctx context.Context, key string) error {
	const op = "storage/redis/Delete"

	if err := k.db.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close закрывает клиента.
func (k *KV) Close() error {
	return k.db.Close()
}

var _ storage.KV = (*KV)(nil)
