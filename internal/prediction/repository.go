// AngelaMos | 2026
// repository.go

package prediction

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/carterperez-dev/leafcare/internal/core"
)

type Repository interface {
	Create(ctx context.Context, log *Log) error
	List(ctx context.Context) ([]Log, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, l *Log) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}

	query := `
		INSERT INTO prediction_logs (id, username, image_name, disease_name)
		VALUES ($1, $2, $3, $4)
		RETURNING seq, created_at`

	if err := r.db.QueryRowxContext(ctx, query,
		l.ID,
		l.Username,
		l.ImageName,
		l.DiseaseName,
	).Scan(&l.Seq, &l.CreatedAt); err != nil {
		return fmt.Errorf("create prediction log: %w", err)
	}

	return nil
}

func (r *repository) List(ctx context.Context) ([]Log, error) {
	query := `
		SELECT id, seq, username, image_name, disease_name, created_at
		FROM prediction_logs
		ORDER BY seq`

	logs := []Log{}
	if err := r.db.SelectContext(ctx, &logs, query); err != nil {
		return nil, fmt.Errorf("list prediction logs: %w", err)
	}

	return logs, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM prediction_logs`); err != nil {
		return 0, fmt.Errorf("count prediction logs: %w", err)
	}

	return total, nil
}
