// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/leafcare/internal/core"
)

type Repository interface {
	Create(ctx context.Context, account *Account) error
	// CreateIfEmpty inserts account only while the table has no rows and
	// reports whether it did.
	CreateIfEmpty(ctx context.Context, account *Account) (bool, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	Delete(ctx context.Context, username string) error
	List(ctx context.Context) ([]Account, error)
	Count(ctx context.Context) (int, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

type repository struct {
	db    *sqlx.DB
	table string
}

// NewRepository binds a repository to one namespace table. The table name
// comes from the Namespace constants only, never from input.
func NewRepository(db *sqlx.DB, ns Namespace) Repository {
	if !ns.Valid() {
		panic(fmt.Sprintf("user: unknown namespace %q", ns))
	}
	return &repository{db: db, table: string(ns)}
}

func (r *repository) Create(ctx context.Context, account *Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at`, r.table)

	err := r.db.GetContext(ctx, &account.CreatedAt, query,
		account.ID,
		account.Username,
		account.PasswordHash,
	)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create account: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

// CreateIfEmpty serialises concurrent callers on a self-conflicting table
// lock, so the emptiness check in the second statement sees any row the
// winner committed.
func (r *repository) CreateIfEmpty(
	ctx context.Context,
	account *Account,
) (bool, error) {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}

	created := false
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		lock := fmt.Sprintf(`LOCK TABLE %s IN SHARE ROW EXCLUSIVE MODE`, r.table)
		if _, err := tx.ExecContext(ctx, lock); err != nil {
			return fmt.Errorf("lock %s: %w", r.table, err)
		}

		query := fmt.Sprintf(`
			INSERT INTO %[1]s (id, username, password_hash)
			SELECT $1, $2, $3
			WHERE NOT EXISTS (SELECT 1 FROM %[1]s)
			RETURNING created_at`, r.table)

		err := tx.GetContext(ctx, &account.CreatedAt, query,
			account.ID,
			account.Username,
			account.PasswordHash,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			if core.IsDuplicateKeyError(err) {
				return core.ErrDuplicateKey
			}
			return err
		}

		created = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("create first account: %w", err)
	}

	return created, nil
}

func (r *repository) GetByUsername(
	ctx context.Context,
	username string,
) (*Account, error) {
	query := fmt.Sprintf(`
		SELECT id, username, password_hash, created_at
		FROM %s
		WHERE username = $1`, r.table)

	var account Account
	err := r.db.GetContext(ctx, &account, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &account, nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	username, passwordHash string,
) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET password_hash = $2
		WHERE username = $1`, r.table)

	result, err := r.db.ExecContext(ctx, query, username, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return requireRow(result, "update password")
}

// Delete removes the account. A shopper's pending cart goes with it so a
// later registration under the same name starts empty; orders are kept.
func (r *repository) Delete(ctx context.Context, username string) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := fmt.Sprintf(`DELETE FROM %s WHERE username = $1`, r.table)

		result, err := tx.ExecContext(ctx, query, username)
		if err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		if err := requireRow(result, "delete account"); err != nil {
			return err
		}

		if Namespace(r.table) != Users {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM carts WHERE username = $1`, username,
		); err != nil {
			return fmt.Errorf("delete account cart: %w", err)
		}

		return nil
	})
}

func (r *repository) List(ctx context.Context) ([]Account, error) {
	query := fmt.Sprintf(`
		SELECT id, username, created_at
		FROM %s
		ORDER BY created_at, username`, r.table)

	var accounts []Account
	if err := r.db.SelectContext(ctx, &accounts, query); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	return accounts, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table)

	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}

	return total, nil
}

func (r *repository) ExistsByUsername(
	ctx context.Context,
	username string,
) (bool, error) {
	query := fmt.Sprintf(
		`SELECT EXISTS(SELECT 1 FROM %s WHERE username = $1)`,
		r.table,
	)

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, username); err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}

	return exists, nil
}

func requireRow(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}
