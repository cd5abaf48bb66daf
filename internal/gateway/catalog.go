package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gourmand-app/gourmand/internal/domain"
)

type CategoriesResponse struct {
	Success    bool              `json:"success"`
	Categories []domain.Category `json:"categories"`
}

type ProductsResponse struct {
	Success  bool             `json:"success"`
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
}

type ProductResponse struct {
	Success bool            `json:"success"`
	Product *domain.Product `json:"product"`
}

func (c *Client) Categories(ctx context.Context) (*CategoriesResponse, error) {
	var res CategoriesResponse
	if err := c.do(ctx, http.MethodGet, "/catalog/categories", "", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Products(ctx context.Context, categoryID int64, page domain.PageRequest) (*ProductsResponse, error) {
	path := fmt.Sprintf("/catalog/categories/%d/products?offset=%d&limit=%d", categoryID, page.Offset, page.Limit)

	var res ProductsResponse
	if err := c.do(ctx, http.MethodGet, path, "", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ProductDetail(ctx context.Context, productID int64) (*ProductResponse, error) {
	var res ProductResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/catalog/products/%d", productID), "", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Search(ctx context.Context, query string, page domain.PageRequest) (*ProductsResponse, error) {
	path := fmt.Sprintf("/catalog/search?q=%s&offset=%d&limit=%d", url.QueryEscape(query), page.Offset, page.Limit)

	var res ProductsResponse
	if err := c.do(ctx, http.MethodGet, path, "", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
