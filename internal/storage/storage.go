// storage содержит контракты удалённого хранилища Cowele.
//
// places.go   - таблица bathrooms с однократным включением reviews;
// reviews.go  - таблица reviews (лента отзывов);
// profiles.go - таблица profiles;
// objects.go  - объектное хранилище (бакет bathrooms) с публичными URL;
// kv.go       - долговременное локальное хранилище клиента (ключ cowele_session).
//
// Хранилище непрозрачно: last-write-wins, без транзакций и без повторов.
package storage

//go:generate mockgen -destination=../../mocks/storage.go -package=mocks github.com/haroldove90-spec/Cowele/internal/storage Places,Reviews,Profiles,Objects,KV

import "errors"

var (
	// ErrNotFound: запись (ключ) не найдена.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists: нарушено ограничение уникальности.
	ErrAlreadyExists = errors.New("already exists")
)

// Store: верхнеуровневый интерфейс табличного хранилища.
type Store interface {
	Places
	Reviews
	Profiles
	Close()
}
