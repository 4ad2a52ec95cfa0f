package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", pgx.ErrNoRows, ErrNotFound},
		{"unique violation", pgError(pgerrcode.UniqueViolation), ErrDuplicate},
		{"fk violation", pgError(pgerrcode.ForeignKeyViolation), ErrInvalidReference},
		{"value too long", pgError(pgerrcode.StringDataRightTruncationDataException), ErrValueTooLong},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.in), tt.want)
		})
	}

	other := errors.New("connection reset")
	assert.Equal(t, other, mapError(other))
	assert.NoError(t, mapError(nil))
}

func TestPostgresError(t *testing.T) {
	assert.Equal(t, pgerrcode.CheckViolation, postgresError(fmt.Errorf("insert: %w", pgError(pgerrcode.CheckViolation))))
	assert.Empty(t, postgresError(errors.New("plain")))
}

func TestWithTx(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		require.NoError(t, withTx(context.Background(), mock, func(pgx.Tx) error { return nil }))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		assert.ErrorIs(t, withTx(context.Background(), mock, func(pgx.Tx) error { return boom }), boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

		err := withTx(context.Background(), mock, func(pgx.Tx) error { return nil })
		assert.ErrorContains(t, err, "begin transaction")
	})
}
