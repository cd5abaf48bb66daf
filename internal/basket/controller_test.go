package basket

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gourmand-app/gourmand/internal/credentials"
	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/gateway"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/gourmand-app/gourmand/internal/screen"
	"github.com/gourmand-app/gourmand/internal/session"
	"github.com/gourmand-app/gourmand/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	m      sync.Mutex
	values map[string]string
}

func newMemRepo() *memRepo {
	return &memRepo{values: map[string]string{}}
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

func testController(t *testing.T, handler http.Handler) (*Controller, *session.Store, *memRepo) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sessions := session.New(logger.Mock(), nil)
	sessions.SetUser(&domain.UserProfile{ID: 1}, "tok")

	repo := newMemRepo()
	api := gateway.New(logger.Mock(), domain.APIConfig{BaseURL: srv.URL, TimeoutSeconds: 2})
	controller := NewController(logger.Mock(), api, sessions, credentials.NewService(logger.Mock(), repo))
	return controller, sessions, repo
}

func cartPayload(count int) string {
	return fmt.Sprintf(`{"data":{"success":true,"cart":{"items":[],"sub_total":10,"discount":0,"grand_total":10,"count":%d}}}`, count)
}

func TestController_RefreshRequiresAuth(t *testing.T) {
	var calls int64
	controller, sessions, _ := testController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))
	sessions.Logout()

	err := controller.Refresh(context.Background())
	assert.True(t, errors.Is(err, screen.ErrUnauthenticated))
	assert.Zero(t, atomic.LoadInt64(&calls), "no fetch when the gate is unmet")
}

func TestController_BadgeIsBackendCountVerbatim(t *testing.T) {
	// backend counts distinct products, not total quantity; the badge shows
	// whatever the count field says
	controller, sessions, repo := testController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(cartPayload(3)))
	}))

	require.NoError(t, controller.Refresh(context.Background()))
	assert.Equal(t, 3, sessions.Snapshot().BasketCount)
	assert.Equal(t, 3, controller.Snapshot().Count)

	persisted, err := repo.Get(context.Background(), domain.CredentialKeyBasketCount)
	require.NoError(t, err)
	assert.Equal(t, "3", persisted)
}

func TestController_RejectedMutationLeavesStateUntouched(t *testing.T) {
	var fail atomic.Bool
	controller, sessions, _ := testController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"data":{"success":false,"message":"out of stock"}}`))
			return
		}
		_, _ = w.Write([]byte(cartPayload(2)))
	}))

	require.NoError(t, controller.Refresh(context.Background()))
	require.Equal(t, 2, sessions.Snapshot().BasketCount)

	fail.Store(true)
	err := controller.Add(context.Background(), 9, 1)
	require.Error(t, err)

	var apiErr *gateway.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "out of stock", apiErr.Message)

	// no optimistic bump to roll back
	assert.Equal(t, 2, sessions.Snapshot().BasketCount)
	assert.Equal(t, 2, controller.Snapshot().Count)
}

func TestController_MutationReplacesSnapshotWholesale(t *testing.T) {
	controller, sessions, _ := testController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"data":{"success":true,"cart":{"items":[{"id":1,"product_id":9,"quantity":2}],"sub_total":5,"discount":1,"grand_total":4,"count":1}}}`))
			return
		}
		_, _ = w.Write([]byte(cartPayload(0)))
	}))

	require.NoError(t, controller.Refresh(context.Background()))
	require.NoError(t, controller.Add(context.Background(), 9, 2))

	snapshot := controller.Snapshot()
	require.Len(t, snapshot.Items, 1)
	assert.Equal(t, 4.0, snapshot.GrandTotal)
	assert.Equal(t, 1, sessions.Snapshot().BasketCount)
}

func TestController_DoubleTapRemoveIsNoOp(t *testing.T) {
	var calls int64
	started := make(chan struct{})
	release := make(chan struct{})
	controller, _, _ := testController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			close(started)
		}
		<-release
		_, _ = w.Write([]byte(cartPayload(0)))
	}))

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- controller.Remove(context.Background(), 42)
	}()
	<-started

	// second tap while the first removal is pending: returns immediately
	// without issuing a request
	require.NoError(t, controller.Remove(context.Background(), 42))
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))

	close(release)
	require.NoError(t, <-firstDone)
}
