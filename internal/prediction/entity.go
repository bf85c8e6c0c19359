// AngelaMos | 2026
// entity.go

package prediction

import (
	"time"
)

// GuestUsername is logged for predictions made without a session.
const GuestUsername = "Guest"

type Log struct {
	ID          string    `db:"id"`
	Seq         int64     `db:"seq"`
	Username    string    `db:"username"`
	ImageName   string    `db:"image_name"`
	DiseaseName string    `db:"disease_name"`
	CreatedAt   time.Time `db:"created_at"`
}
