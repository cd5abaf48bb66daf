package gateway

import (
	"context"
	"net/http"

	"github.com/gourmand-app/gourmand/internal/domain"
)

type WishlistResponse struct {
	Success  bool                     `json:"success"`
	Wishlist *domain.WishlistSnapshot `json:"wishlist"`
}

func (c *Client) GetWishlist(ctx context.Context, token string) (*WishlistResponse, error) {
	var res WishlistResponse
	if err := c.do(ctx, http.MethodGet, "/wishlist", token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ToggleWishlist adds the product when absent and removes it when present;
// the backend decides which and returns the fresh snapshot.
func (c *Client) ToggleWishlist(ctx context.Context, token string, productID int64) (*WishlistResponse, error) {
	body := struct {
		ProductID int64 `json:"product_id"`
	}{productID}

	var res WishlistResponse
	if err := c.do(ctx, http.MethodPost, "/wishlist/toggle", token, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
