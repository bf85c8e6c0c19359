// AngelaMos | 2026
// entity.go

package order

import (
	"time"
)

type CartItem struct {
	ID             string    `db:"id"`
	Seq            int64     `db:"seq"`
	Username       string    `db:"username"`
	SupplementName string    `db:"supplement_name"`
	Quantity       int       `db:"quantity"`
	Price          float64   `db:"price"`
	CreatedAt      time.Time `db:"created_at"`
}

func (c CartItem) Subtotal() float64 {
	return c.Price * float64(c.Quantity)
}

type Order struct {
	ID         string      `db:"id"`
	Seq        int64       `db:"seq"`
	Username   string      `db:"username"`
	TotalPrice float64     `db:"total_price"`
	OrderDate  time.Time   `db:"order_date"`
	Items      []OrderItem `db:"-"`
}

// OrderItem is an immutable copy of one cart line taken at checkout.
type OrderItem struct {
	OrderID        string  `db:"order_id"`
	Position       int     `db:"position"`
	SupplementName string  `db:"supplement_name"`
	Quantity       int     `db:"quantity"`
	Price          float64 `db:"price"`
}

// OrderLine is one order item joined with its order, the row shape of the
// admin order table.
type OrderLine struct {
	OrderID        string    `db:"order_id"`
	Username       string    `db:"username"`
	SupplementName string    `db:"supplement_name"`
	Quantity       int       `db:"quantity"`
	Price          float64   `db:"price"`
	TotalPrice     float64   `db:"total_price"`
	OrderDate      time.Time `db:"order_date"`
}
