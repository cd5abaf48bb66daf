package checkout

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/gourmand-app/gourmand/internal/credentials"
	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/gateway"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/gourmand-app/gourmand/internal/screen"
	"github.com/gourmand-app/gourmand/internal/session"
	"github.com/gourmand-app/gourmand/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrNoAddresses signals the shell to redirect to address creation before
// checkout can proceed.
const ErrNoAddresses = errors.Sentinel("no delivery addresses")

// ErrNoAddressSelected is returned when PlaceOrder runs before Load selected
// one.
const ErrNoAddressSelected = errors.Sentinel("no delivery address selected")

// ErrUnknownAddress is returned when selecting an address outside the loaded
// list.
const ErrUnknownAddress = errors.Sentinel("unknown delivery address")

// Controller owns the checkout screen. Load pulls the cart and the address
// book in parallel and pre-selects the default address; the user may pick any
// other before placing the order. Each loaded checkout carries one
// idempotency key so a resubmission after a lost response cannot create a
// second order.
type Controller struct {
	log      zerolog.Logger
	api      *gateway.Client
	sessions *session.Store
	creds    credentials.Service

	gate     *screen.Gate
	inflight *screen.Inflight

	m              sync.Mutex
	cart           domain.CartSnapshot
	addresses      []domain.Address
	selectedID     int64
	idempotencyKey string
}

func NewController(log logger.Logger, api *gateway.Client, sessions *session.Store, creds credentials.Service) *Controller {
	return &Controller{
		log:      log.With().Str("module", "checkout").Logger(),
		api:      api,
		sessions: sessions,
		creds:    creds,
		gate:     screen.NewGate(sessions),
		inflight: screen.NewInflight(),
	}
}

// Load fetches the cart and the address book concurrently. With zero
// addresses it returns ErrNoAddresses; otherwise the default address is
// pre-selected, falling back to the first.
func (c *Controller) Load(ctx context.Context) error {
	if err := c.gate.Check(); err != nil {
		return err
	}

	token := c.sessions.Token()

	var cartRes *gateway.CartResponse
	var addressRes *gateway.AddressesResponse

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		cartRes, err = c.api.GetCart(groupCtx, token)
		return err
	})
	group.Go(func() error {
		var err error
		addressRes, err = c.api.ListAddresses(groupCtx, token)
		return err
	})
	if err := group.Wait(); err != nil {
		return errors.Wrap(err, "could not load checkout")
	}

	c.m.Lock()
	defer c.m.Unlock()

	if cartRes.Cart != nil {
		c.cart = *cartRes.Cart
	}
	c.addresses = addressRes.Addresses
	c.idempotencyKey = uuid.New().String()

	if len(c.addresses) == 0 {
		c.selectedID = 0
		return ErrNoAddresses
	}

	c.selectedID = c.addresses[0].ID
	for _, address := range c.addresses {
		if address.IsDefault {
			c.selectedID = address.ID
			break
		}
	}
	return nil
}

// SelectAddress picks a delivery address from the loaded list.
func (c *Controller) SelectAddress(addressID int64) error {
	c.m.Lock()
	defer c.m.Unlock()

	for _, address := range c.addresses {
		if address.ID == addressID {
			c.selectedID = addressID
			return nil
		}
	}
	return ErrUnknownAddress
}

// PlaceOrder submits the server-side cart against the selected address. A
// second tap while submission is pending is a no-op.
func (c *Controller) PlaceOrder(ctx context.Context) (*domain.Order, error) {
	if err := c.gate.Check(); err != nil {
		return nil, err
	}

	c.m.Lock()
	addressID := c.selectedID
	key := c.idempotencyKey
	c.m.Unlock()

	if addressID == 0 {
		return nil, ErrNoAddressSelected
	}

	if !c.inflight.Begin("place") {
		return nil, nil
	}
	defer c.inflight.End("place")

	res, err := c.api.PlaceOrder(ctx, c.sessions.Token(), addressID, key)
	if err != nil {
		return nil, errors.Wrap(err, "could not place order")
	}

	// the server cart is empty now; a fresh key for the next checkout
	c.m.Lock()
	c.cart = domain.CartSnapshot{}
	c.idempotencyKey = uuid.New().String()
	c.m.Unlock()

	c.sessions.SetBasket(0)
	c.creds.PersistCounts(ctx, 0, c.sessions.Snapshot().WishlistCount)

	c.log.Info().Int64("order_id", orderID(res.Order)).Msg("order placed")
	return res.Order, nil
}

// Cart returns the loaded cart snapshot.
func (c *Controller) Cart() domain.CartSnapshot {
	c.m.Lock()
	defer c.m.Unlock()
	return c.cart
}

// Addresses returns the loaded address list.
func (c *Controller) Addresses() []domain.Address {
	c.m.Lock()
	defer c.m.Unlock()

	out := make([]domain.Address, len(c.addresses))
	copy(out, c.addresses)
	return out
}

// SelectedAddress returns the currently selected address id, zero when none.
func (c *Controller) SelectedAddress() int64 {
	c.m.Lock()
	defer c.m.Unlock()
	return c.selectedID
}

func orderID(order *domain.Order) int64 {
	if order == nil {
		return 0
	}
	return order.ID
}
