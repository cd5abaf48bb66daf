package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gourmand-app/gourmand/internal/credentials"
	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/gateway"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/gourmand-app/gourmand/internal/session"
	"github.com/gourmand-app/gourmand/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	m      sync.Mutex
	values map[string]string
}

func (r *memRepo) Get(_ context.Context, key string) (string, error) {
	r.m.Lock()
	defer r.m.Unlock()
	value, ok := r.values[key]
	if !ok {
		return "", errors.Wrap(credentials.ErrNotFound, "key %s", key)
	}
	return value, nil
}

func (r *memRepo) Set(_ context.Context, key, value string) error {
	r.m.Lock()
	defer r.m.Unlock()
	r.values[key] = value
	return nil
}

func (r *memRepo) Delete(_ context.Context, key string) error {
	r.m.Lock()
	defer r.m.Unlock()
	delete(r.values, key)
	return nil
}

func (r *memRepo) Ping(context.Context) error { return nil }
func (r *memRepo) Close() error               { return nil }

// checkoutBackend serves /cart, /addresses and /orders for one test.
type checkoutBackend struct {
	addresses string
	orders    int64
	keys      []string
	m         sync.Mutex
}

func (b *checkoutBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/cart":
		_, _ = w.Write([]byte(`{"data":{"success":true,"cart":{"items":[{"id":1}],"grand_total":20,"count":2}}}`))
	case "/addresses":
		_, _ = w.Write([]byte(`{"data":{"success":true,"addresses":` + b.addresses + `}}`))
	case "/orders":
		atomic.AddInt64(&b.orders, 1)
		var body map[string]json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.m.Lock()
		// only the first character of the wire key is capitalized
		b.keys = append(b.keys, string(body["Idempotency_key"]))
		b.m.Unlock()
		_, _ = w.Write([]byte(`{"data":{"success":true,"order":{"id":55,"number":"ORD-55"}}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func testController(t *testing.T, backend *checkoutBackend) (*Controller, *session.Store) {
	t.Helper()

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	sessions := session.New(logger.Mock(), nil)
	sessions.SetUser(&domain.UserProfile{ID: 1}, "tok")

	api := gateway.New(logger.Mock(), domain.APIConfig{BaseURL: srv.URL, TimeoutSeconds: 2})
	creds := credentials.NewService(logger.Mock(), &memRepo{values: map[string]string{}})
	return NewController(logger.Mock(), api, sessions, creds), sessions
}

func TestController_LoadPreselectsDefaultAddress(t *testing.T) {
	controller, _ := testController(t, &checkoutBackend{
		addresses: `[{"id":1,"label":"work"},{"id":2,"label":"home","is_default":true}]`,
	})

	require.NoError(t, controller.Load(context.Background()))
	assert.Equal(t, int64(2), controller.SelectedAddress())
	assert.Equal(t, 2, controller.Cart().Count)
	assert.Len(t, controller.Addresses(), 2)
}

func TestController_LoadFallsBackToFirstAddress(t *testing.T) {
	controller, _ := testController(t, &checkoutBackend{
		addresses: `[{"id":3,"label":"work"},{"id":4,"label":"home"}]`,
	})

	require.NoError(t, controller.Load(context.Background()))
	assert.Equal(t, int64(3), controller.SelectedAddress())
}

func TestController_LoadWithZeroAddressesSignalsRedirect(t *testing.T) {
	controller, _ := testController(t, &checkoutBackend{addresses: `[]`})

	err := controller.Load(context.Background())
	assert.True(t, errors.Is(err, ErrNoAddresses))
	assert.Zero(t, controller.SelectedAddress())
}

func TestController_SelectAddressMustExist(t *testing.T) {
	controller, _ := testController(t, &checkoutBackend{
		addresses: `[{"id":1,"is_default":true},{"id":2}]`,
	})
	require.NoError(t, controller.Load(context.Background()))

	// the chosen address need not be the default
	require.NoError(t, controller.SelectAddress(2))
	assert.Equal(t, int64(2), controller.SelectedAddress())

	err := controller.SelectAddress(99)
	assert.True(t, errors.Is(err, ErrUnknownAddress))
}

func TestController_PlaceOrderClearsBasket(t *testing.T) {
	backend := &checkoutBackend{addresses: `[{"id":1,"is_default":true}]`}
	controller, sessions := testController(t, backend)
	require.NoError(t, controller.Load(context.Background()))

	order, err := controller.PlaceOrder(context.Background())
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, int64(55), order.ID)

	assert.Zero(t, sessions.Snapshot().BasketCount)
	assert.Zero(t, controller.Cart().Count)
}

func TestController_PlaceOrderWithoutSelection(t *testing.T) {
	controller, _ := testController(t, &checkoutBackend{addresses: `[]`})
	_ = controller.Load(context.Background())

	_, err := controller.PlaceOrder(context.Background())
	assert.True(t, errors.Is(err, ErrNoAddressSelected))
}

func TestController_IdempotencyKeyStableWithinCheckout(t *testing.T) {
	backend := &checkoutBackend{addresses: `[{"id":1,"is_default":true}]`}
	controller, _ := testController(t, backend)

	require.NoError(t, controller.Load(context.Background()))
	_, err := controller.PlaceOrder(context.Background())
	require.NoError(t, err)

	require.NoError(t, controller.Load(context.Background()))
	_, err = controller.PlaceOrder(context.Background())
	require.NoError(t, err)

	backend.m.Lock()
	defer backend.m.Unlock()
	require.Len(t, backend.keys, 2)
	assert.NotEmpty(t, backend.keys[0])
	assert.NotEqual(t, backend.keys[0], backend.keys[1], "each checkout carries its own key")
}
