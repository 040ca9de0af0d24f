package storage

import "context"

// Objects: контракт объектного хранилища с публичными URL.
// Фото мест и аватары лежат в одном бакете и различаются только префиксом ключа.
type Objects interface {
	// Upload сохраняет объект под ключом key и возвращает его публичный URL.
	Upload(ctx context.Context, key, contentType string, data []byte) (publicURL string, err error)
}
