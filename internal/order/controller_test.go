package order

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
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

// orderBackend serves a fixed number of orders through the offset/limit
// window.
func orderBackend(t *testing.T, total int) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		orders := make([]domain.Order, 0, limit)
		for i := offset; i < total && i < offset+limit; i++ {
			orders = append(orders, domain.Order{ID: int64(i + 1), Number: fmt.Sprintf("ORD-%d", i+1)})
		}

		payload, err := json.Marshal(map[string]interface{}{
			"data": map[string]interface{}{"success": true, "orders": orders, "total": total},
		})
		require.NoError(t, err)
		_, _ = w.Write(payload)
	})
}

func testController(t *testing.T, handler http.Handler) (*Controller, *session.Store) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sessions := session.New(logger.Mock(), nil)
	sessions.SetUser(&domain.UserProfile{ID: 1}, "tok")

	api := gateway.New(logger.Mock(), domain.APIConfig{BaseURL: srv.URL, TimeoutSeconds: 2})
	creds := credentials.NewService(logger.Mock(), &memRepo{values: map[string]string{}})
	controller := NewController(logger.Mock(), api, sessions, creds)
	controller.pageSize = 3
	return controller, sessions
}

func TestController_RefreshLoadsFirstPage(t *testing.T) {
	controller, _ := testController(t, orderBackend(t, 7))

	require.NoError(t, controller.Refresh(context.Background()))
	assert.Len(t, controller.Orders(), 3)
	assert.False(t, controller.Exhausted())
}

func TestController_LoadMoreAdvancesUntilExhausted(t *testing.T) {
	controller, _ := testController(t, orderBackend(t, 7))

	require.NoError(t, controller.Refresh(context.Background()))
	require.NoError(t, controller.LoadMore(context.Background()))
	assert.Len(t, controller.Orders(), 6)
	assert.False(t, controller.Exhausted())

	require.NoError(t, controller.LoadMore(context.Background()))
	orders := controller.Orders()
	assert.Len(t, orders, 7)
	assert.True(t, controller.Exhausted())
	assert.Equal(t, "ORD-7", orders[6].Number)

	// further calls are no-ops
	require.NoError(t, controller.LoadMore(context.Background()))
	assert.Len(t, controller.Orders(), 7)
}

func TestController_RefreshResetsWindow(t *testing.T) {
	controller, _ := testController(t, orderBackend(t, 7))

	require.NoError(t, controller.Refresh(context.Background()))
	require.NoError(t, controller.LoadMore(context.Background()))
	require.Len(t, controller.Orders(), 6)

	require.NoError(t, controller.Refresh(context.Background()))
	assert.Len(t, controller.Orders(), 3)
	assert.False(t, controller.Exhausted())
}

func TestController_ReorderPropagatesCartBadge(t *testing.T) {
	var reorders int64
	controller, sessions := testController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&reorders, 1)
		_, _ = w.Write([]byte(`{"data":{"success":true,"cart":{"items":[{"id":1}],"count":4}}}`))
	}))

	cart, err := controller.Reorder(context.Background(), 9)
	require.NoError(t, err)
	require.NotNil(t, cart)
	assert.Equal(t, 4, cart.Count)
	assert.Equal(t, 4, sessions.Snapshot().BasketCount)
	assert.Equal(t, int64(1), atomic.LoadInt64(&reorders))
}

func TestController_DetailFetchesOneOrder(t *testing.T) {
	controller, _ := testController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/9", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"success":true,"order":{"id":9,"number":"ORD-9","status":"SHIPPED"}}}`))
	}))

	order, err := controller.Detail(context.Background(), 9)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, domain.OrderStatusShipped, order.Status)
}
