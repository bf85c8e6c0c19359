// AngelaMos | 2026
// repository_integration_test.go

//go:build integration

package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/leafcare/internal/config"
	"github.com/carterperez-dev/leafcare/internal/core"
	"github.com/carterperez-dev/leafcare/internal/testdb"
)

func seedSupplement(t *testing.T, db *sqlx.DB, name string, price float64) {
	t.Helper()

	_, err := db.ExecContext(context.Background(),
		`INSERT INTO supplements (id, name, description, price) VALUES ($1, $2, 'd', $3)`,
		uuid.New().String(), name, price,
	)
	require.NoError(t, err)
}

func setPrice(t *testing.T, db *sqlx.DB, name string, price float64) {
	t.Helper()

	_, err := db.ExecContext(context.Background(),
		`UPDATE supplements SET price = $2 WHERE name = $1`, name, price,
	)
	require.NoError(t, err)
}

func TestStore_UpsertPricePolicy(t *testing.T) {
	db := testdb.Open(t).DB
	store := NewStore(db)
	ctx := context.Background()

	seedSupplement(t, db, "Neem Oil", 199)

	_, err := store.UpsertCartItem(ctx, "pinned", "Neem Oil", 2, false)
	require.NoError(t, err)
	_, err = store.UpsertCartItem(ctx, "fresh", "Neem Oil", 2, true)
	require.NoError(t, err)

	setPrice(t, db, "Neem Oil", 250)

	pinned, err := store.UpsertCartItem(ctx, "pinned", "Neem Oil", 3, false)
	require.NoError(t, err)
	assert.Equal(t, 5, pinned.Quantity)
	assert.InDelta(t, 199, pinned.Price, 1e-9)

	fresh, err := store.UpsertCartItem(ctx, "fresh", "Neem Oil", 3, true)
	require.NoError(t, err)
	assert.Equal(t, 5, fresh.Quantity)
	assert.InDelta(t, 250, fresh.Price, 1e-9)

	cart, err := store.ListCart(ctx, "pinned")
	require.NoError(t, err)
	require.Len(t, cart, 1)

	_, err = store.UpsertCartItem(ctx, "pinned", "Missing", 1, false)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestService_PlaceOrderAgainstPostgres(t *testing.T) {
	db := testdb.Open(t).DB
	svc := NewService(NewStore(db), config.PricePolicyPinned)
	ctx := context.Background()

	seedSupplement(t, db, "A", 10)
	seedSupplement(t, db, "B", 5)

	_, err := svc.AddToCart(ctx, "asha", AddToCartRequest{SupplementName: "A", Quantity: 2})
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, "asha", AddToCartRequest{SupplementName: "B", Quantity: 1})
	require.NoError(t, err)

	placed, err := svc.PlaceOrder(ctx, "asha")
	require.NoError(t, err)
	assert.InDelta(t, 25, placed.TotalPrice, 1e-9)

	cart, err := svc.ViewCart(ctx, "asha")
	require.NoError(t, err)
	assert.Empty(t, cart)

	orders, err := svc.GetOrders(ctx, "asha")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 2)
	assert.Equal(t, "A", orders[0].Items[0].SupplementName)

	_, err = svc.PlaceOrder(ctx, "asha")
	assert.ErrorIs(t, err, core.ErrEmptyCart)
}

// An add that races a checkout waits on the locked cart row and lands as a
// new row once the checkout commits.
func TestStore_AddDuringCheckoutStaysInCart(t *testing.T) {
	db := testdb.Open(t).DB
	store := NewStore(db)
	ctx := context.Background()

	seedSupplement(t, db, "A", 10)
	_, err := store.UpsertCartItem(ctx, "asha", "A", 2, false)
	require.NoError(t, err)

	added := make(chan error, 1)
	err = store.WithTx(ctx, func(repo Repository) error {
		items, err := repo.LockCart(ctx, "asha")
		if err != nil {
			return err
		}

		go func() {
			_, err := store.UpsertCartItem(ctx, "asha", "A", 3, false)
			added <- err
		}()

		o := &Order{Username: "asha", TotalPrice: CartTotal(items), OrderDate: time.Now()}
		for _, it := range items {
			o.Items = append(o.Items, OrderItem{
				SupplementName: it.SupplementName,
				Quantity:       it.Quantity,
				Price:          it.Price,
			})
		}
		if err := repo.CreateOrder(ctx, o); err != nil {
			return err
		}

		ids := make([]string, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ID)
		}
		return repo.DeleteCartItems(ctx, ids)
	})
	require.NoError(t, err)
	require.NoError(t, <-added)

	orders, err := store.ListOrders(ctx, "asha")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, 2, orders[0].Items[0].Quantity)

	cart, err := store.ListCart(ctx, "asha")
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 3, cart[0].Quantity)
}
