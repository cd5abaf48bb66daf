package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gourmand-app/gourmand/internal/domain"
)

type AddressesResponse struct {
	Success   bool             `json:"success"`
	Addresses []domain.Address `json:"addresses"`
}

type AddressResponse struct {
	Success bool                `json:"success"`
	Address *domain.Address     `json:"address"`
	Errors  map[string][]string `json:"errors"`
}

// AddressInput carries the writable address fields. JSON tags are the
// pre-transform names; the shallow re-casing applies on the wire.
type AddressInput struct {
	Label     string `json:"label"`
	Recipient string `json:"recipient"`
	Phone     string `json:"phone"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2"`
	City      string `json:"city"`
	Postcode  string `json:"postcode"`
	IsDefault bool   `json:"is_default"`
}

func (c *Client) ListAddresses(ctx context.Context, token string) (*AddressesResponse, error) {
	var res AddressesResponse
	if err := c.do(ctx, http.MethodGet, "/addresses", token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CreateAddress(ctx context.Context, token string, input AddressInput) (*AddressResponse, error) {
	var res AddressResponse
	if err := c.do(ctx, http.MethodPost, "/addresses", token, input, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) UpdateAddress(ctx context.Context, token string, addressID int64, input AddressInput) (*AddressResponse, error) {
	var res AddressResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/addresses/%d", addressID), token, input, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) DeleteAddress(ctx context.Context, token string, addressID int64) (*AddressesResponse, error) {
	var res AddressesResponse
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/addresses/%d", addressID), token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
