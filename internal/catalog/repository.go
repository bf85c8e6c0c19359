// AngelaMos | 2026
// repository.go

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/carterperez-dev/leafcare/internal/core"
)

type Repository interface {
	Create(ctx context.Context, supplement *Supplement) error
	GetByName(ctx context.Context, name string) (*Supplement, error)
	// Delete removes the supplement and returns the row as it was.
	Delete(ctx context.Context, name string) (*Supplement, error)
	List(ctx context.Context) ([]Supplement, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *Supplement) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}

	query := `
		INSERT INTO supplements (id, name, description, price, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING seq, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		s.ID,
		s.Name,
		s.Description,
		s.Price,
		s.ImageURL,
	).Scan(&s.Seq, &s.CreatedAt)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create supplement: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create supplement: %w", err)
	}

	return nil
}

func (r *repository) GetByName(
	ctx context.Context,
	name string,
) (*Supplement, error) {
	query := `
		SELECT id, seq, name, description, price, image_url, created_at
		FROM supplements
		WHERE name = $1`

	var s Supplement
	err := r.db.GetContext(ctx, &s, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get supplement: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get supplement: %w", err)
	}

	return &s, nil
}

func (r *repository) Delete(
	ctx context.Context,
	name string,
) (*Supplement, error) {
	query := `
		DELETE FROM supplements
		WHERE name = $1
		RETURNING id, seq, name, description, price, image_url, created_at`

	var s Supplement
	err := r.db.GetContext(ctx, &s, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("delete supplement: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("delete supplement: %w", err)
	}

	return &s, nil
}

func (r *repository) List(ctx context.Context) ([]Supplement, error) {
	query := `
		SELECT id, seq, name, description, price, image_url, created_at
		FROM supplements
		ORDER BY seq`

	supplements := []Supplement{}
	if err := r.db.SelectContext(ctx, &supplements, query); err != nil {
		return nil, fmt.Errorf("list supplements: %w", err)
	}

	return supplements, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM supplements`); err != nil {
		return 0, fmt.Errorf("count supplements: %w", err)
	}

	return total, nil
}
