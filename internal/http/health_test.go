package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// the credential repo must satisfy the readiness probe contract
var _ storePinger = (domain.CredentialRepo)(nil)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

func healthRouter(store storePinger) http.Handler {
	r := chi.NewRouter()
	r.Route("/healthz", newHealthHandler(encoder{}, store).Routes)
	return r
}

func TestHealthHandler_Liveness(t *testing.T) {
	rr := httptest.NewRecorder()
	healthRouter(stubPinger{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz/liveness", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
}

func TestHealthHandler_ReadinessHealthy(t *testing.T) {
	rr := httptest.NewRecorder()
	healthRouter(stubPinger{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz/readiness", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHealthHandler_ReadinessStoreUnreachable(t *testing.T) {
	rr := httptest.NewRecorder()
	healthRouter(stubPinger{err: errors.New("store closed")}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz/readiness", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Unhealthy")
}
