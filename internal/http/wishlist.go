package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gourmand-app/gourmand/internal/wishlist"
)

type wishlistHandler struct {
	encoder  encoder
	wishlist *wishlist.Controller
}

func newWishlistHandler(encoder encoder, controller *wishlist.Controller) *wishlistHandler {
	return &wishlistHandler{
		encoder:  encoder,
		wishlist: controller,
	}
}

func (h wishlistHandler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Post("/toggle", h.toggle)
}

type toggleRequest struct {
	ProductID int64 `json:"product_id"`
}

func (h wishlistHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.wishlist.Refresh(ctx); err != nil {
		h.encoder.writeError(ctx, w, err)
		return
	}

	h.encoder.StatusResponse(ctx, w, h.wishlist.Snapshot(), http.StatusOK)
}

func (h wishlistHandler) toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.encoder.StatusResponse(ctx, w, backendError{Message: "invalid request body"}, http.StatusBadRequest)
		return
	}

	if err := h.wishlist.Toggle(ctx, req.ProductID); err != nil {
		h.encoder.writeError(ctx, w, err)
		return
	}

	h.encoder.StatusResponse(ctx, w, h.wishlist.Snapshot(), http.StatusOK)
}
