package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gourmand-app/gourmand/internal/domain"
)

type CartResponse struct {
	Success bool                 `json:"success"`
	Cart    *domain.CartSnapshot `json:"cart"`
	Message string               `json:"message"`
}

func (c *Client) GetCart(ctx context.Context, token string) (*CartResponse, error) {
	var res CartResponse
	if err := c.do(ctx, http.MethodGet, "/cart", token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// AddToCart returns the backend's fresh snapshot; the caller replaces its
// local copy wholesale and never predicts the post-mutation totals.
func (c *Client) AddToCart(ctx context.Context, token string, productID int64, quantity int) (*CartResponse, error) {
	body := struct {
		ProductID int64 `json:"product_id"`
		Quantity  int   `json:"quantity"`
	}{productID, quantity}

	var res CartResponse
	if err := c.do(ctx, http.MethodPost, "/cart/items", token, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, token string, itemID int64, quantity int) (*CartResponse, error) {
	body := struct {
		Quantity int `json:"quantity"`
	}{quantity}

	var res CartResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/cart/items/%d", itemID), token, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, token string, itemID int64) (*CartResponse, error) {
	var res CartResponse
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/items/%d", itemID), token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
