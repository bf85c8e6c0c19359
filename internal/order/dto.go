// AngelaMos | 2026
// dto.go

package order

import (
	"time"

	"github.com/samber/lo"
)

type AddToCartRequest struct {
	SupplementName string `json:"supplement_name" validate:"required,max=200"`
	Quantity       int    `json:"quantity"        validate:"omitempty,min=1,max=1000"`
}

type CartItemResponse struct {
	SupplementName string  `json:"supplement_name"`
	Quantity       int     `json:"quantity"`
	Price          float64 `json:"price"`
	Subtotal       float64 `json:"subtotal"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total float64            `json:"total"`
}

type OrderItemResponse struct {
	SupplementName string  `json:"supplement_name"`
	Quantity       int     `json:"quantity"`
	Price          float64 `json:"price"`
}

type OrderResponse struct {
	ID         string              `json:"id"`
	Username   string              `json:"username"`
	Items      []OrderItemResponse `json:"items"`
	TotalPrice float64             `json:"total_price"`
	OrderDate  time.Time           `json:"order_date"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
}

type OrderLineResponse struct {
	OrderID        string    `json:"order_id"`
	Username       string    `json:"username"`
	SupplementName string    `json:"supplement_name"`
	Quantity       int       `json:"quantity"`
	Price          float64   `json:"price"`
	TotalPrice     float64   `json:"total_price"`
	OrderDate      time.Time `json:"order_date"`
}

type OrderLineListResponse struct {
	Lines []OrderLineResponse `json:"lines"`
}

func ToCartItemResponse(c CartItem) CartItemResponse {
	return CartItemResponse{
		SupplementName: c.SupplementName,
		Quantity:       c.Quantity,
		Price:          c.Price,
		Subtotal:       c.Subtotal(),
	}
}

func ToCartResponse(items []CartItem) CartResponse {
	return CartResponse{
		Items: lo.Map(items, func(c CartItem, _ int) CartItemResponse {
			return ToCartItemResponse(c)
		}),
		Total: CartTotal(items),
	}
}

func ToOrderResponse(o *Order) OrderResponse {
	return OrderResponse{
		ID:       o.ID,
		Username: o.Username,
		Items: lo.Map(o.Items, func(i OrderItem, _ int) OrderItemResponse {
			return OrderItemResponse{
				SupplementName: i.SupplementName,
				Quantity:       i.Quantity,
				Price:          i.Price,
			}
		}),
		TotalPrice: o.TotalPrice,
		OrderDate:  o.OrderDate,
	}
}

func ToOrderResponseList(orders []Order) []OrderResponse {
	responses := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		responses = append(responses, ToOrderResponse(&o))
	}
	return responses
}

func ToOrderLineResponseList(lines []OrderLine) []OrderLineResponse {
	return lo.Map(lines, func(l OrderLine, _ int) OrderLineResponse {
		return OrderLineResponse(l)
	})
}

// CartTotal is the sum of price times quantity over items.
func CartTotal(items []CartItem) float64 {
	return lo.SumBy(items, func(c CartItem) float64 {
		return c.Subtotal()
	})
}
