package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gourmand-app/gourmand/internal/checkout"
	"github.com/gourmand-app/gourmand/pkg/errors"
)

type checkoutHandler struct {
	encoder  encoder
	checkout *checkout.Controller
}

func newCheckoutHandler(encoder encoder, controller *checkout.Controller) *checkoutHandler {
	return &checkoutHandler{
		encoder:  encoder,
		checkout: controller,
	}
}

func (h checkoutHandler) Routes(r chi.Router) {
	r.Post("/load", h.load)
	r.Post("/address", h.selectAddress)
	r.Post("/place", h.place)
}

type selectAddressRequest struct {
	AddressID int64 `json:"address_id"`
}

func (h checkoutHandler) load(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.checkout.Load(ctx); err != nil {
		if errors.Is(err, checkout.ErrNoAddresses) {
			// the shell redirects to address creation and comes back
			h.encoder.StatusResponse(ctx, w, map[string]interface{}{
				"redirect": "addresses",
				"cart":     h.checkout.Cart(),
			}, http.StatusConflict)
			return
		}
		h.encoder.writeError(ctx, w, err)
		return
	}

	h.writeState(w, r, http.StatusOK)
}

func (h checkoutHandler) selectAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req selectAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.encoder.StatusResponse(ctx, w, backendError{Message: "invalid request body"}, http.StatusBadRequest)
		return
	}

	if err := h.checkout.SelectAddress(req.AddressID); err != nil {
		h.encoder.StatusResponse(ctx, w, backendError{Message: err.Error()}, http.StatusBadRequest)
		return
	}

	h.writeState(w, r, http.StatusOK)
}

func (h checkoutHandler) place(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	placed, err := h.checkout.PlaceOrder(ctx)
	if err != nil {
		if errors.Is(err, checkout.ErrNoAddressSelected) {
			h.encoder.StatusResponse(ctx, w, backendError{Message: err.Error()}, http.StatusBadRequest)
			return
		}
		h.encoder.writeError(ctx, w, err)
		return
	}
	if placed == nil {
		// a duplicate tap while the first submission is pending
		h.encoder.StatusResponse(ctx, w, backendError{Message: "order submission already in progress"}, http.StatusAccepted)
		return
	}

	h.encoder.StatusCreatedData(w, newOrderView(*placed))
}

func (h checkoutHandler) writeState(w http.ResponseWriter, r *http.Request, status int) {
	cart := h.checkout.Cart()
	h.encoder.StatusResponse(r.Context(), w, map[string]interface{}{
		"cart":                cart,
		"grand_total_display": displayPrice(cart.GrandTotal),
		"addresses":           h.checkout.Addresses(),
		"selected_address_id": h.checkout.SelectedAddress(),
	}, status)
}
