package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("record already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidReference  = errors.New("referenced record does not exist")
	ErrStatusChanged     = errors.New("order status changed concurrently")
	ErrValueTooLong      = errors.New("value too long for column")
)

// DB is the subset of pgxpool.Pool used by repositories. pgx.Tx satisfies it
// too, so helpers can run inside or outside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func postgresError(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapError translates driver errors into repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	switch postgresError(err) {
	case pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	case pgerrcode.StringDataRightTruncationDataException:
		return fmt.Errorf("%w: %v", ErrValueTooLong, err)
	}
	return err
}

// withTx runs fn in a transaction, committing on success.
func withTx(ctx context.Context, db DB, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func queryRow(ctx context.Context, db DB, b sq.Sqlizer, dest ...any) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return mapError(db.QueryRow(ctx, query, args...).Scan(dest...))
}

func exec(ctx context.Context, db DB, b sq.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

// execOne is exec that reports ErrNotFound when nothing was touched.
func execOne(ctx context.Context, db DB, b sq.Sqlizer) error {
	n, err := exec(ctx, db, b)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// count runs COUNT(*) over a filter builder that has no columns or ordering yet.
func count(ctx context.Context, db DB, base sq.SelectBuilder) (int, error) {
	var total int
	err := queryRow(ctx, db, base.Column("COUNT(*)"), &total)
	return total, err
}
