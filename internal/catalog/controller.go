package catalog

import (
	"context"
	"sync"

	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/gateway"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/gourmand-app/gourmand/internal/screen"
	"github.com/gourmand-app/gourmand/pkg/errors"
	"github.com/rs/zerolog"
)

const defaultPageSize = 20

// Controller owns the browse screens. The catalog is public, so there is no
// auth gate; anonymous users browse and search freely. Product listings use
// offset/limit infinite scroll with the same stale-fetch protection as the
// authenticated screens.
type Controller struct {
	log      zerolog.Logger
	api      *gateway.Client
	gen      screen.Generation
	inflight *screen.Inflight
	pageSize int

	m          sync.Mutex
	categories []domain.Category
	products   []domain.Product
	categoryID int64
	query      string
	offset     int
	exhausted  bool
}

func NewController(log logger.Logger, api *gateway.Client) *Controller {
	return &Controller{
		log:      log.With().Str("module", "catalog").Logger(),
		api:      api,
		inflight: screen.NewInflight(),
		pageSize: defaultPageSize,
	}
}

// Categories fetches and caches the category list.
func (c *Controller) Categories(ctx context.Context) ([]domain.Category, error) {
	res, err := c.api.Categories(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not fetch categories")
	}

	c.m.Lock()
	c.categories = res.Categories
	c.m.Unlock()
	return res.Categories, nil
}

// Browse resets the listing to the first page of one category.
func (c *Controller) Browse(ctx context.Context, categoryID int64) error {
	token := c.gen.Next()
	res, err := c.api.Products(ctx, categoryID, domain.PageRequest{Offset: 0, Limit: c.pageSize})
	if err != nil {
		return errors.Wrap(err, "could not browse category %d", categoryID)
	}

	if !c.gen.Apply(token) {
		c.log.Debug().Msg("discarding stale catalog fetch")
		return nil
	}

	c.reset(res, categoryID, "")
	return nil
}

// Search resets the listing to the first page of a search query.
func (c *Controller) Search(ctx context.Context, query string) error {
	token := c.gen.Next()
	res, err := c.api.Search(ctx, query, domain.PageRequest{Offset: 0, Limit: c.pageSize})
	if err != nil {
		return errors.Wrap(err, "could not search for %q", query)
	}

	if !c.gen.Apply(token) {
		c.log.Debug().Msg("discarding stale search fetch")
		return nil
	}

	c.reset(res, 0, query)
	return nil
}

// LoadMore appends the next page of whichever listing is active.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.m.Lock()
	if c.exhausted {
		c.m.Unlock()
		return nil
	}
	categoryID := c.categoryID
	query := c.query
	page := domain.PageRequest{Offset: c.offset, Limit: c.pageSize}
	c.m.Unlock()

	if !c.inflight.Begin("page") {
		return nil
	}
	defer c.inflight.End("page")

	var res *gateway.ProductsResponse
	var err error
	if query != "" {
		res, err = c.api.Search(ctx, query, page)
	} else {
		res, err = c.api.Products(ctx, categoryID, page)
	}
	if err != nil {
		return errors.Wrap(err, "could not load more products")
	}

	c.m.Lock()
	c.products = append(c.products, res.Products...)
	c.offset += len(res.Products)
	c.exhausted = len(res.Products) < c.pageSize || c.offset >= res.Total
	c.m.Unlock()
	return nil
}

// Detail fetches one product.
func (c *Controller) Detail(ctx context.Context, productID int64) (*domain.Product, error) {
	res, err := c.api.ProductDetail(ctx, productID)
	if err != nil {
		return nil, errors.Wrap(err, "could not fetch product %d", productID)
	}
	return res.Product, nil
}

// Products returns the currently loaded listing window.
func (c *Controller) Products() []domain.Product {
	c.m.Lock()
	defer c.m.Unlock()

	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Exhausted reports whether the active listing has no further pages.
func (c *Controller) Exhausted() bool {
	c.m.Lock()
	defer c.m.Unlock()
	return c.exhausted
}

func (c *Controller) reset(res *gateway.ProductsResponse, categoryID int64, query string) {
	c.m.Lock()
	defer c.m.Unlock()

	c.products = res.Products
	c.categoryID = categoryID
	c.query = query
	c.offset = len(res.Products)
	c.exhausted = len(res.Products) < c.pageSize || c.offset >= res.Total
}
