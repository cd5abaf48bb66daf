package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gourmand-app/gourmand/internal/address"
	"github.com/gourmand-app/gourmand/internal/gateway"
)

type addressHandler struct {
	encoder   encoder
	addresses *address.Controller
}

func newAddressHandler(encoder encoder, controller *address.Controller) *addressHandler {
	return &addressHandler{
		encoder:   encoder,
		addresses: controller,
	}
}

func (h addressHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{addressID}", h.update)
	r.Delete("/{addressID}", h.remove)
}

func (h addressHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.addresses.Refresh(ctx); err != nil {
		h.encoder.writeError(ctx, w, err)
		return
	}

	h.encoder.StatusResponse(ctx, w, h.addresses.Addresses(), http.StatusOK)
}

func (h addressHandler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input gateway.AddressInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.encoder.StatusResponse(ctx, w, backendError{Message: "invalid request body"}, http.StatusBadRequest)
		return
	}

	if err := h.addresses.Create(ctx, input); err != nil {
		h.encoder.writeError(ctx, w, err)
		return
	}

	h.encoder.StatusCreatedData(w, h.addresses.Addresses())
}

func (h addressHandler) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	addressID, err := strconv.ParseInt(chi.URLParam(r, "addressID"), 10, 64)
	if err != nil {
		h.encoder.StatusResponse(ctx, w, backendError{Message: "invalid address id"}, http.StatusBadRequest)
		return
	}

	var input gateway.AddressInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.encoder.StatusResponse(ctx, w, backendError{Message: "invalid request body"}, http.StatusBadRequest)
		return
	}

	if err := h.addresses.Update(ctx, addressID, input); err != nil {
		h.encoder.writeError(ctx, w, err)
		return
	}

	h.encoder.StatusResponse(ctx, w, h.addresses.Addresses(), http.StatusOK)
}

func (h addressHandler) remove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	addressID, err := strconv.ParseInt(chi.URLParam(r, "addressID"), 10, 64)
	if err != nil {
		h.encoder.StatusResponse(ctx, w, backendError{Message: "invalid address id"}, http.StatusBadRequest)
		return
	}

	if err := h.addresses.Delete(ctx, addressID); err != nil {
		h.encoder.writeError(ctx, w, err)
		return
	}

	h.encoder.StatusResponse(ctx, w, h.addresses.Addresses(), http.StatusOK)
}
