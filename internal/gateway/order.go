package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gourmand-app/gourmand/internal/domain"
)

type OrdersResponse struct {
	Success bool           `json:"success"`
	Orders  []domain.Order `json:"orders"`
	Total   int            `json:"total"`
}

type OrderResponse struct {
	Success bool          `json:"success"`
	Order   *domain.Order `json:"order"`
	Message string        `json:"message"`
}

func (c *Client) ListOrders(ctx context.Context, token string, page domain.PageRequest) (*OrdersResponse, error) {
	path := fmt.Sprintf("/orders?offset=%d&limit=%d", page.Offset, page.Limit)

	var res OrdersResponse
	if err := c.do(ctx, http.MethodGet, path, token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetOrder(ctx context.Context, token string, orderID int64) (*OrderResponse, error) {
	var res OrderResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", orderID), token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// PlaceOrder submits the current server-side cart against the chosen
// address. The idempotency key guards against duplicate submission when the
// first response is lost.
func (c *Client) PlaceOrder(ctx context.Context, token string, addressID int64, idempotencyKey string) (*OrderResponse, error) {
	body := struct {
		AddressID      int64  `json:"address_id"`
		IdempotencyKey string `json:"idempotency_key"`
	}{addressID, idempotencyKey}

	var res OrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", token, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Reorder asks the backend to rebuild the cart from a prior order and
// returns the resulting cart snapshot.
func (c *Client) Reorder(ctx context.Context, token string, orderID int64) (*CartResponse, error) {
	var res CartResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/orders/%d/reorder", orderID), token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
