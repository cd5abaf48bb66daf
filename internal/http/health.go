package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// storePinger is the part of the credential store the readiness probe needs.
type storePinger interface {
	Ping(ctx context.Context) error
}

type healthHandler struct {
	encoder encoder
	store   storePinger
}

func newHealthHandler(encoder encoder, store storePinger) *healthHandler {
	return &healthHandler{
		encoder: encoder,
		store:   store,
	}
}

func (h healthHandler) Routes(r chi.Router) {
	r.Get("/liveness", h.handleLiveness)
	r.Get("/readiness", h.handleReadiness)
}

func (h healthHandler) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeHealthy(w)
}

func (h healthHandler) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeUnhealthy(w)
		return
	}

	writeHealthy(w)
}

func writeHealthy(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeUnhealthy(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte("Unhealthy. Credential store unreachable"))
}
