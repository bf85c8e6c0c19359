// AngelaMos | 2026
// entity.go

package catalog

import (
	"time"
)

type Supplement struct {
	ID          string    `db:"id"`
	Seq         int64     `db:"seq"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Price       float64   `db:"price"`
	ImageURL    *string   `db:"image_url"`
	CreatedAt   time.Time `db:"created_at"`
}

func (s *Supplement) HasImage() bool {
	return s.ImageURL != nil && *s.ImageURL != ""
}
