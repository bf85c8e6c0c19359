// AngelaMos | 2026
// service.go

package order

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/leafcare/internal/config"
	"github.com/carterperez-dev/leafcare/internal/core"
)

const tracerName = "leafcare/order"

type Service struct {
	store        Store
	refreshPrice bool
	now          func() time.Time
}

func NewService(store Store, pricePolicy string) *Service {
	return &Service{
		store:        store,
		refreshPrice: pricePolicy == config.PricePolicyRefresh,
		now:          time.Now,
	}
}

func (s *Service) AddToCart(
	ctx context.Context,
	username string,
	req AddToCartRequest,
) (*CartItem, error) {
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, fmt.Errorf(
			"add to cart: quantity must be at least 1: %w",
			core.ErrInvalidInput,
		)
	}

	return s.store.UpsertCartItem(
		ctx,
		username,
		req.SupplementName,
		qty,
		s.refreshPrice,
	)
}

func (s *Service) ViewCart(ctx context.Context, username string) ([]CartItem, error) {
	return s.store.ListCart(ctx, username)
}

// PlaceOrder turns the cart rows present when checkout starts into one
// order and removes exactly those rows. Rows added while the checkout runs
// stay in the cart.
func (s *Service) PlaceOrder(ctx context.Context, username string) (*Order, error) {
	ctx, span := core.StartSpan(ctx, tracerName, "order.place",
		attribute.String("order.username", username),
	)
	defer span.End()

	var placed *Order
	err := s.store.WithTx(ctx, func(repo Repository) error {
		items, err := repo.LockCart(ctx, username)
		if err != nil {
			return err
		}

		if len(items) == 0 {
			return fmt.Errorf("place order: %w", core.ErrEmptyCart)
		}

		o := &Order{
			Username:   username,
			TotalPrice: CartTotal(items),
			OrderDate:  s.now().UTC(),
			Items: lo.Map(items, func(c CartItem, _ int) OrderItem {
				return OrderItem{
					SupplementName: c.SupplementName,
					Quantity:       c.Quantity,
					Price:          c.Price,
				}
			}),
		}

		if err := repo.CreateOrder(ctx, o); err != nil {
			return err
		}

		ids := lo.Map(items, func(c CartItem, _ int) string { return c.ID })
		if err := repo.DeleteCartItems(ctx, ids); err != nil {
			return err
		}

		placed = o
		return nil
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("order.id", placed.ID),
		attribute.Int("order.items", len(placed.Items)),
	)

	return placed, nil
}

func (s *Service) GetOrders(ctx context.Context, username string) ([]Order, error) {
	return s.store.ListOrders(ctx, username)
}

func (s *Service) ListAllOrders(ctx context.Context) ([]Order, error) {
	return s.store.ListAllOrders(ctx)
}

func (s *Service) ListOrderLines(ctx context.Context) ([]OrderLine, error) {
	return s.store.ListOrderLines(ctx)
}

func (s *Service) CountOrders(ctx context.Context) (int, error) {
	return s.store.CountOrders(ctx)
}
