// AngelaMos | 2026
// repository.go

package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/carterperez-dev/leafcare/internal/core"
)

type Repository interface {
	// UpsertCartItem adds qty of a catalog supplement to the user's cart in
	// one statement. It fails with core.ErrNotFound when the supplement does
	// not exist. With refreshPrice the stored price follows the catalog.
	UpsertCartItem(
		ctx context.Context,
		username, supplementName string,
		qty int,
		refreshPrice bool,
	) (*CartItem, error)
	ListCart(ctx context.Context, username string) ([]CartItem, error)
	// LockCart returns the cart rows and holds a row lock on each until the
	// surrounding transaction ends.
	LockCart(ctx context.Context, username string) ([]CartItem, error)
	DeleteCartItems(ctx context.Context, ids []string) error
	CreateOrder(ctx context.Context, o *Order) error
	ListOrders(ctx context.Context, username string) ([]Order, error)
	ListAllOrders(ctx context.Context) ([]Order, error)
	ListOrderLines(ctx context.Context) ([]OrderLine, error)
	CountOrders(ctx context.Context) (int, error)
}

// Store is a Repository that can also run a unit of work atomically.
type Store interface {
	Repository
	WithTx(ctx context.Context, fn func(repo Repository) error) error
}

type repository struct {
	db core.DBTX
}

type store struct {
	*repository
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) Store {
	return &store{
		repository: &repository{db: db},
		db:         db,
	}
}

func (s *store) WithTx(
	ctx context.Context,
	fn func(repo Repository) error,
) error {
	return core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return fn(&repository{db: tx})
	})
}

const cartColumns = `id, seq, username, supplement_name, quantity, price, created_at`

func (r *repository) UpsertCartItem(
	ctx context.Context,
	username, supplementName string,
	qty int,
	refreshPrice bool,
) (*CartItem, error) {
	query := `
		INSERT INTO carts (id, username, supplement_name, quantity, price)
		SELECT $1, $2, s.name, $3, s.price
		FROM supplements s
		WHERE s.name = $4
		ON CONFLICT (username, supplement_name) DO UPDATE
		SET quantity = carts.quantity + EXCLUDED.quantity,
		    price = CASE WHEN $5::boolean THEN EXCLUDED.price ELSE carts.price END
		RETURNING ` + cartColumns

	var item CartItem
	err := r.db.GetContext(ctx, &item, query,
		uuid.New().String(),
		username,
		qty,
		supplementName,
		refreshPrice,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("add to cart: supplement: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}

	return &item, nil
}

func (r *repository) ListCart(
	ctx context.Context,
	username string,
) ([]CartItem, error) {
	query := `SELECT ` + cartColumns + `
		FROM carts
		WHERE username = $1
		ORDER BY seq`

	items := []CartItem{}
	if err := r.db.SelectContext(ctx, &items, query, username); err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}

	return items, nil
}

func (r *repository) LockCart(
	ctx context.Context,
	username string,
) ([]CartItem, error) {
	query := `SELECT ` + cartColumns + `
		FROM carts
		WHERE username = $1
		ORDER BY seq
		FOR UPDATE`

	items := []CartItem{}
	if err := r.db.SelectContext(ctx, &items, query, username); err != nil {
		return nil, fmt.Errorf("lock cart: %w", err)
	}

	return items, nil
}

func (r *repository) DeleteCartItems(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := `DELETE FROM carts WHERE id = ANY($1::uuid[])`

	if _, err := r.db.ExecContext(ctx, query, ids); err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}

	return nil
}

func (r *repository) CreateOrder(ctx context.Context, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}

	query := `
		INSERT INTO orders (id, username, total_price, order_date)
		VALUES ($1, $2, $3, $4)
		RETURNING seq`

	if err := r.db.GetContext(ctx, &o.Seq, query,
		o.ID,
		o.Username,
		o.TotalPrice,
		o.OrderDate,
	); err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, position, supplement_name, quantity, price)
		VALUES ($1, $2, $3, $4, $5)`

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		item.Position = i

		if _, err := r.db.ExecContext(ctx, itemQuery,
			item.OrderID,
			item.Position,
			item.SupplementName,
			item.Quantity,
			item.Price,
		); err != nil {
			return fmt.Errorf("create order item: %w", err)
		}
	}

	return nil
}

func (r *repository) ListOrders(
	ctx context.Context,
	username string,
) ([]Order, error) {
	query := `
		SELECT id, seq, username, total_price, order_date
		FROM orders
		WHERE username = $1
		ORDER BY seq`

	orders := []Order{}
	if err := r.db.SelectContext(ctx, &orders, query, username); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return r.attachItems(ctx, orders)
}

func (r *repository) ListAllOrders(ctx context.Context) ([]Order, error) {
	query := `
		SELECT id, seq, username, total_price, order_date
		FROM orders
		ORDER BY seq`

	orders := []Order{}
	if err := r.db.SelectContext(ctx, &orders, query); err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}

	return r.attachItems(ctx, orders)
}

func (r *repository) ListOrderLines(ctx context.Context) ([]OrderLine, error) {
	query := `
		SELECT o.id AS order_id, o.username, i.supplement_name, i.quantity,
		       i.price, o.total_price, o.order_date
		FROM orders o
		JOIN order_items i ON i.order_id = o.id
		ORDER BY o.seq, i.position`

	lines := []OrderLine{}
	if err := r.db.SelectContext(ctx, &lines, query); err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}

	return lines, nil
}

func (r *repository) CountOrders(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM orders`); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}

	return total, nil
}

func (r *repository) attachItems(
	ctx context.Context,
	orders []Order,
) ([]Order, error) {
	if len(orders) == 0 {
		return orders, nil
	}

	ids := lo.Map(orders, func(o Order, _ int) string { return o.ID })

	query := `
		SELECT order_id, position, supplement_name, quantity, price
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, position`

	var items []OrderItem
	if err := r.db.SelectContext(ctx, &items, query, ids); err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	byOrder := lo.GroupBy(items, func(i OrderItem) string { return i.OrderID })
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
	}

	return orders, nil
}
