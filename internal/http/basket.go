package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gourmand-app/gourmand/internal/basket"
	"github.com/gourmand-app/gourmand/internal/domain"
)

type basketHandler struct {
	encoder encoder
	basket  *basket.Controller
}

func newBasketHandler(encoder encoder, controller *basket.Controller) *basketHandler {
	return &basketHandler{
		encoder: encoder,
		basket:  controller,
	}
}

func (h basketHandler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Post("/items", h.add)
	r.Put("/items/{itemID}", h.update)
	r.Delete("/items/{itemID}", h.remove)
}

type basketItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// basketResponse carries the raw snapshot plus pre-formatted totals for the
// shell's text-only chrome.
type basketResponse struct {
	Cart              domain.CartSnapshot `json:"cart"`
	SubTotalDisplay   string              `json:"sub_total_display"`
	GrandTotalDisplay string              `json:"grand_total_display"`
}

func (h basketHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.basket.Refresh(ctx); err != nil {
		h.encoder.writeError(ctx, w, err)
		return
	}

	h.writeSnapshot(w, r)
}

func (h basketHandler) add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req basketItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.encoder.StatusResponse(ctx, w, backendError{Message: "invalid request body"}, http.StatusBadRequest)
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	if err := h.basket.Add(ctx, req.ProductID, req.Quantity); err != nil {
		h.encoder.writeError(ctx, w, err)
		return
	}

	h.writeSnapshot(w, r)
}

func (h basketHandler) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		h.encoder.StatusResponse(ctx, w, backendError{Message: "invalid item id"}, http.StatusBadRequest)
		return
	}

	var req basketItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.encoder.StatusResponse(ctx, w, backendError{Message: "invalid request body"}, http.StatusBadRequest)
		return
	}

	if err := h.basket.UpdateQuantity(ctx, itemID, req.Quantity); err != nil {
		h.encoder.writeError(ctx, w, err)
		return
	}

	h.writeSnapshot(w, r)
}

func (h basketHandler) remove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		h.encoder.StatusResponse(ctx, w, backendError{Message: "invalid item id"}, http.StatusBadRequest)
		return
	}

	if err := h.basket.Remove(ctx, itemID); err != nil {
		h.encoder.writeError(ctx, w, err)
		return
	}

	h.writeSnapshot(w, r)
}

func (h basketHandler) writeSnapshot(w http.ResponseWriter, r *http.Request) {
	cart := h.basket.Snapshot()
	h.encoder.StatusResponse(r.Context(), w, basketResponse{
		Cart:              cart,
		SubTotalDisplay:   displayPrice(cart.SubTotal),
		GrandTotalDisplay: displayPrice(cart.GrandTotal),
	}, http.StatusOK)
}
