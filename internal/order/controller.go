package order

import (
	"context"
	"fmt"
	"sync"

	"github.com/gourmand-app/gourmand/internal/credentials"
	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/gateway"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/gourmand-app/gourmand/internal/screen"
	"github.com/gourmand-app/gourmand/internal/session"
	"github.com/gourmand-app/gourmand/pkg/errors"
	"github.com/rs/zerolog"
)

const defaultPageSize = 20

// Controller owns the order history screen: an offset/limit window advanced
// by LoadMore until the backend runs out of rows.
type Controller struct {
	log      zerolog.Logger
	api      *gateway.Client
	sessions *session.Store
	creds    credentials.Service

	gate     *screen.Gate
	gen      screen.Generation
	inflight *screen.Inflight
	pageSize int

	m         sync.Mutex
	orders    []domain.Order
	offset    int
	exhausted bool
}

func NewController(log logger.Logger, api *gateway.Client, sessions *session.Store, creds credentials.Service) *Controller {
	return &Controller{
		log:      log.With().Str("module", "order").Logger(),
		api:      api,
		sessions: sessions,
		creds:    creds,
		gate:     screen.NewGate(sessions),
		inflight: screen.NewInflight(),
		pageSize: defaultPageSize,
	}
}

// Refresh resets the window and fetches the first page.
func (c *Controller) Refresh(ctx context.Context) error {
	if err := c.gate.Check(); err != nil {
		return err
	}

	token := c.gen.Next()
	res, err := c.api.ListOrders(ctx, c.sessions.Token(), domain.PageRequest{Offset: 0, Limit: c.pageSize})
	if err != nil {
		return errors.Wrap(err, "could not refresh orders")
	}

	if !c.gen.Apply(token) {
		c.log.Debug().Msg("discarding stale order fetch")
		return nil
	}

	c.m.Lock()
	c.orders = res.Orders
	c.offset = len(res.Orders)
	c.exhausted = len(res.Orders) < c.pageSize || c.offset >= res.Total
	c.m.Unlock()
	return nil
}

// LoadMore appends the next page. A call after exhaustion is a no-op.
func (c *Controller) LoadMore(ctx context.Context) error {
	if err := c.gate.Check(); err != nil {
		return err
	}

	c.m.Lock()
	if c.exhausted {
		c.m.Unlock()
		return nil
	}
	offset := c.offset
	c.m.Unlock()

	if !c.inflight.Begin("page") {
		return nil
	}
	defer c.inflight.End("page")

	res, err := c.api.ListOrders(ctx, c.sessions.Token(), domain.PageRequest{Offset: offset, Limit: c.pageSize})
	if err != nil {
		return errors.Wrap(err, "could not load more orders")
	}

	c.m.Lock()
	c.orders = append(c.orders, res.Orders...)
	c.offset += len(res.Orders)
	c.exhausted = len(res.Orders) < c.pageSize || c.offset >= res.Total
	c.m.Unlock()
	return nil
}

// Detail fetches one order.
func (c *Controller) Detail(ctx context.Context, orderID int64) (*domain.Order, error) {
	if err := c.gate.Check(); err != nil {
		return nil, err
	}

	res, err := c.api.GetOrder(ctx, c.sessions.Token(), orderID)
	if err != nil {
		return nil, errors.Wrap(err, "could not fetch order %d", orderID)
	}
	return res.Order, nil
}

// Reorder asks the backend to rebuild the cart from a prior order. The
// returned cart snapshot drives the basket badge the same way a basket
// mutation would.
func (c *Controller) Reorder(ctx context.Context, orderID int64) (*domain.CartSnapshot, error) {
	if err := c.gate.Check(); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("reorder:%d", orderID)
	if !c.inflight.Begin(key) {
		return nil, nil
	}
	defer c.inflight.End(key)

	res, err := c.api.Reorder(ctx, c.sessions.Token(), orderID)
	if err != nil {
		return nil, errors.Wrap(err, "could not reorder from order %d", orderID)
	}

	if res.Cart != nil {
		c.sessions.SetBasket(res.Cart.Count)
		c.creds.PersistCounts(ctx, res.Cart.Count, c.sessions.Snapshot().WishlistCount)
	}
	return res.Cart, nil
}

// Orders returns the currently loaded window.
func (c *Controller) Orders() []domain.Order {
	c.m.Lock()
	defer c.m.Unlock()

	out := make([]domain.Order, len(c.orders))
	copy(out, c.orders)
	return out
}

// Exhausted reports whether the backend has no further pages.
func (c *Controller) Exhausted() bool {
	c.m.Lock()
	defer c.m.Unlock()
	return c.exhausted
}
