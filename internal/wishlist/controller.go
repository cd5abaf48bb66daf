package wishlist

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

// Controller owns the wishlist screen state. Toggle is a single endpoint; the
// backend decides whether the product is added or removed and returns the
// fresh snapshot that replaces local state wholesale.
type Controller struct {
	log      zerolog.Logger
	api      *gateway.Client
	sessions *session.Store
	creds    credentials.Service

	gate     *screen.Gate
	gen      screen.Generation
	inflight *screen.Inflight

	m        sync.Mutex
	wishlist domain.WishlistSnapshot
}

func NewController(log logger.Logger, api *gateway.Client, sessions *session.Store, creds credentials.Service) *Controller {
	return &Controller{
		log:      log.With().Str("module", "wishlist").Logger(),
		api:      api,
		sessions: sessions,
		creds:    creds,
		gate:     screen.NewGate(sessions),
		inflight: screen.NewInflight(),
	}
}

// Refresh fetches the current server wishlist.
func (c *Controller) Refresh(ctx context.Context) error {
	if err := c.gate.Check(); err != nil {
		return err
	}

	token := c.gen.Next()
	res, err := c.api.GetWishlist(ctx, c.sessions.Token())
	if err != nil {
		return errors.Wrap(err, "could not refresh wishlist")
	}

	if !c.gen.Apply(token) {
		c.log.Debug().Msg("discarding stale wishlist fetch")
		return nil
	}

	c.apply(ctx, res.Wishlist)
	return nil
}

// Toggle flips the product's wishlist membership on the server.
func (c *Controller) Toggle(ctx context.Context, productID int64) error {
	if err := c.gate.Check(); err != nil {
		return err
	}

	key := fmt.Sprintf("toggle:%d", productID)
	if !c.inflight.Begin(key) {
		return nil
	}
	defer c.inflight.End(key)

	res, err := c.api.ToggleWishlist(ctx, c.sessions.Token(), productID)
	if err != nil {
		return errors.Wrap(err, "could not toggle product %d on wishlist", productID)
	}

	c.apply(ctx, res.Wishlist)
	return nil
}

// Snapshot returns the latest fetched wishlist.
func (c *Controller) Snapshot() domain.WishlistSnapshot {
	c.m.Lock()
	defer c.m.Unlock()
	return c.wishlist
}

func (c *Controller) apply(ctx context.Context, wishlist *domain.WishlistSnapshot) {
	if wishlist == nil {
		return
	}

	c.m.Lock()
	c.wishlist = *wishlist
	c.m.Unlock()

	c.sessions.SetWishlist(wishlist.Count)
	c.creds.PersistCounts(ctx, c.sessions.Snapshot().BasketCount, wishlist.Count)
}
