package basket

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

// Controller owns the basket screen state. Mutations are server-first: the
// request goes out, and only the backend's returned snapshot replaces local
// state. Nothing is predicted locally, so a rejected mutation leaves the
// screen exactly as it was.
type Controller struct {
	log      zerolog.Logger
	api      *gateway.Client
	sessions *session.Store
	creds    credentials.Service

	gate     *screen.Gate
	gen      screen.Generation
	inflight *screen.Inflight

	m    sync.Mutex
	cart domain.CartSnapshot
}

func NewController(log logger.Logger, api *gateway.Client, sessions *session.Store, creds credentials.Service) *Controller {
	return &Controller{
		log:      log.With().Str("module", "basket").Logger(),
		api:      api,
		sessions: sessions,
		creds:    creds,
		gate:     screen.NewGate(sessions),
		inflight: screen.NewInflight(),
	}
}

// Refresh fetches the current server cart. Called on every screen focus; a
// response from a superseded focus is discarded.
func (c *Controller) Refresh(ctx context.Context) error {
	if err := c.gate.Check(); err != nil {
		return err
	}

	token := c.gen.Next()
	res, err := c.api.GetCart(ctx, c.sessions.Token())
	if err != nil {
		return errors.Wrap(err, "could not refresh basket")
	}

	if !c.gen.Apply(token) {
		c.log.Debug().Msg("discarding stale basket fetch")
		return nil
	}

	c.apply(ctx, res.Cart)
	return nil
}

// Add puts a product in the server cart.
func (c *Controller) Add(ctx context.Context, productID int64, quantity int) error {
	if err := c.gate.Check(); err != nil {
		return err
	}

	key := fmt.Sprintf("add:%d", productID)
	if !c.inflight.Begin(key) {
		return nil
	}
	defer c.inflight.End(key)

	res, err := c.api.AddToCart(ctx, c.sessions.Token(), productID, quantity)
	if err != nil {
		return errors.Wrap(err, "could not add product %d to basket", productID)
	}

	c.apply(ctx, res.Cart)
	return nil
}

// UpdateQuantity changes one line's quantity.
func (c *Controller) UpdateQuantity(ctx context.Context, itemID int64, quantity int) error {
	if err := c.gate.Check(); err != nil {
		return err
	}

	key := fmt.Sprintf("update:%d", itemID)
	if !c.inflight.Begin(key) {
		return nil
	}
	defer c.inflight.End(key)

	res, err := c.api.UpdateCartItem(ctx, c.sessions.Token(), itemID, quantity)
	if err != nil {
		return errors.Wrap(err, "could not update basket item %d", itemID)
	}

	c.apply(ctx, res.Cart)
	return nil
}

// Remove deletes one line. A second tap while the first removal is still
// pending is a no-op, not a second request.
func (c *Controller) Remove(ctx context.Context, itemID int64) error {
	if err := c.gate.Check(); err != nil {
		return err
	}

	key := fmt.Sprintf("remove:%d", itemID)
	if !c.inflight.Begin(key) {
		return nil
	}
	defer c.inflight.End(key)

	res, err := c.api.RemoveCartItem(ctx, c.sessions.Token(), itemID)
	if err != nil {
		return errors.Wrap(err, "could not remove basket item %d", itemID)
	}

	c.apply(ctx, res.Cart)
	return nil
}

// Snapshot returns the latest fetched cart.
func (c *Controller) Snapshot() domain.CartSnapshot {
	c.m.Lock()
	defer c.m.Unlock()
	return c.cart
}

// apply replaces local state with the backend snapshot and propagates the
// badge. The badge is the backend's count field verbatim, whatever its
// counting rule.
func (c *Controller) apply(ctx context.Context, cart *domain.CartSnapshot) {
	if cart == nil {
		return
	}

	c.m.Lock()
	c.cart = *cart
	c.m.Unlock()

	c.sessions.SetBasket(cart.Count)
	c.creds.PersistCounts(ctx, cart.Count, c.sessions.Snapshot().WishlistCount)
}
