package storage

import "context"

// SessionKey: единственный ключ долговременного хранилища клиента.
const SessionKey = "cowele_session"

// KV: долговременное локальное хранилище "ключ -> байты".
type KV interface {
	// Get возвращает значение. Ошибки: ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete удаляет ключ; отсутствие ключа не ошибка.
	Delete(ctx context.Context, key string) error
}
