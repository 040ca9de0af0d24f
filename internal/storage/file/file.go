// file предоставляет реализацию storage.KV поверх каталога на диске:
// один ключ: один файл. Запись атомарна (временный файл + rename).
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/haroldove90-spec/Cowele/internal/storage"
)

type KV struct {
	dir string
}

// New создаёт каталог хранилища при необходимости.
func New(dir string) (*KV, error) {
	const op = "storage/file/New"

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &KV{dir: dir}, nil
}

func (k *KV) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid key %q", key)
	}

	return filepath.Join(k.dir, key), nil
}

func (k *KV) Get(_ context.Context, key string) ([]byte, error) {
	const op = "storage/file/Get"

	p, err := k.path(key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return data, nil
}

func (k *KV) Set(_ context.Context, key string, value []byte) error {
	const op = "storage/file/Set"

	p, err := k.path(key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tmp, err := os.CreateTemp(k.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Rename(tmp.Name(), p); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (k *KV) Delete(_ context.Context, key string) error {
	const op = "storage/file/Delete"

	p, err := k.path(key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

var _ storage.KV = (*KV)(nil)
