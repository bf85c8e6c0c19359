// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

// Namespace selects the account table. Users and admins never share a
// table, so the same username may exist once in each.
type Namespace string

const (
	Users  Namespace = "users"
	Admins Namespace = "admins"
)

func (n Namespace) Valid() bool {
	return n == Users || n == Admins
}

type Account struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}
