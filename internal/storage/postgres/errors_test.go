package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/haroldove90-spec/Cowele/internal/storage"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMapPgError(t *testing.T) {
	t.Run("unique violation", func(t *testing.T) {
		err := fmt.Errorf("scan: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation})
		require.ErrorIs(t, mapPgError(err), storage.ErrAlreadyExists)
	})

	t.Run("foreign key violation", func(t *testing.T) {
		err := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}
		require.ErrorIs(t, mapPgError(err), storage.ErrNotFound)
	})

	t.Run("other pg error passes through", func(t *testing.T) {
		err := &pgconn.PgError{Code: pgerrcode.CheckViolation}
		require.Same(t, err, mapPgError(err))
	})

	t.Run("non pg error passes through", func(t *testing.T) {
		err := errors.New("boom")
		require.Same(t, err, mapPgError(err))
	})
}
