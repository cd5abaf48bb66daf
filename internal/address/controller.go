package address

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/gateway"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/gourmand-app/gourmand/internal/screen"
	"github.com/gourmand-app/gourmand/internal/session"
	"github.com/gourmand-app/gourmand/pkg/errors"
	"github.com/rs/zerolog"
)

// ValidationError is the client-side required-field result. It uses the same
// field-keyed shape as the backend's validation map so the shell renders both
// sources identically.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	return fmt.Sprintf("invalid address fields: %s", strings.Join(fields, ", "))
}

// Controller owns the address book screen. Writes go to the backend first;
// the returned list or record replaces local state. Client-side checks catch
// only empty required fields; everything else is the backend's call and its
// field-keyed error map is surfaced as-is.
type Controller struct {
	log      zerolog.Logger
	api      *gateway.Client
	sessions *session.Store

	gate     *screen.Gate
	gen      screen.Generation
	inflight *screen.Inflight

	m         sync.Mutex
	addresses []domain.Address
}

func NewController(log logger.Logger, api *gateway.Client, sessions *session.Store) *Controller {
	return &Controller{
		log:      log.With().Str("module", "address").Logger(),
		api:      api,
		sessions: sessions,
		gate:     screen.NewGate(sessions),
		inflight: screen.NewInflight(),
	}
}

// Refresh fetches the address list.
func (c *Controller) Refresh(ctx context.Context) error {
	if err := c.gate.Check(); err != nil {
		return err
	}

	token := c.gen.Next()
	res, err := c.api.ListAddresses(ctx, c.sessions.Token())
	if err != nil {
		return errors.Wrap(err, "could not refresh addresses")
	}

	if !c.gen.Apply(token) {
		c.log.Debug().Msg("discarding stale address fetch")
		return nil
	}

	c.setAddresses(res.Addresses)
	return nil
}

// Create submits a new address after the required-field check.
func (c *Controller) Create(ctx context.Context, input gateway.AddressInput) error {
	if err := c.gate.Check(); err != nil {
		return err
	}
	if err := validate(input); err != nil {
		return err
	}

	if !c.inflight.Begin("create") {
		return nil
	}
	defer c.inflight.End("create")

	if _, err := c.api.CreateAddress(ctx, c.sessions.Token(), input); err != nil {
		return errors.Wrap(err, "could not create address")
	}

	return c.Refresh(ctx)
}

// Update rewrites an existing address after the required-field check.
func (c *Controller) Update(ctx context.Context, addressID int64, input gateway.AddressInput) error {
	if err := c.gate.Check(); err != nil {
		return err
	}
	if err := validate(input); err != nil {
		return err
	}

	key := fmt.Sprintf("update:%d", addressID)
	if !c.inflight.Begin(key) {
		return nil
	}
	defer c.inflight.End(key)

	if _, err := c.api.UpdateAddress(ctx, c.sessions.Token(), addressID, input); err != nil {
		return errors.Wrap(err, "could not update address %d", addressID)
	}

	return c.Refresh(ctx)
}

// Delete removes an address. The backend returns the remaining list, which
// replaces local state directly.
func (c *Controller) Delete(ctx context.Context, addressID int64) error {
	if err := c.gate.Check(); err != nil {
		return err
	}

	key := fmt.Sprintf("delete:%d", addressID)
	if !c.inflight.Begin(key) {
		return nil
	}
	defer c.inflight.End(key)

	res, err := c.api.DeleteAddress(ctx, c.sessions.Token(), addressID)
	if err != nil {
		return errors.Wrap(err, "could not delete address %d", addressID)
	}

	c.setAddresses(res.Addresses)
	return nil
}

// Addresses returns the latest fetched list.
func (c *Controller) Addresses() []domain.Address {
	c.m.Lock()
	defer c.m.Unlock()

	out := make([]domain.Address, len(c.addresses))
	copy(out, c.addresses)
	return out
}

func (c *Controller) setAddresses(addresses []domain.Address) {
	c.m.Lock()
	c.addresses = addresses
	c.m.Unlock()
}

func validate(input gateway.AddressInput) error {
	fields := map[string][]string{}
	required := map[string]string{
		"recipient": input.Recipient,
		"phone":     input.Phone,
		"line1":     input.Line1,
		"city":      input.City,
		"postcode":  input.Postcode,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			fields[field] = []string{"required"}
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
