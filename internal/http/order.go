package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/order"
)

type orderHandler struct {
	encoder encoder
	orders  *order.Controller
}

func newOrderHandler(encoder encoder, controller *order.Controller) *orderHandler {
	return &orderHandler{
		encoder: encoder,
		orders:  controller,
	}
}

func (h orderHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/more", h.loadMore)
	r.Get("/{orderID}", h.detail)
	r.Post("/{orderID}/reorder", h.reorder)
}

// orderView adds pre-formatted presentation fields to one order row.
type orderView struct {
	domain.Order
	GrandTotalDisplay string `json:"grand_total_display"`
	PlacedDisplay     string `json:"placed_display"`
}

func (h orderHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.orders.Refresh(ctx); err != nil {
		h.encoder.writeError(ctx, w, err)
		return
	}

	h.writeWindow(w, r)
}

func (h orderHandler) loadMore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.orders.LoadMore(ctx); err != nil {
		h.encoder.writeError(ctx, w, err)
		return
	}

	h.writeWindow(w, r)
}

func (h orderHandler) detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		h.encoder.StatusResponse(ctx, w, backendError{Message: "invalid order id"}, http.StatusBadRequest)
		return
	}

	ord, err := h.orders.Detail(ctx, orderID)
	if err != nil {
		h.encoder.writeError(ctx, w, err)
		return
	}
	if ord == nil {
		h.encoder.StatusNotFound(ctx, w)
		return
	}

	h.encoder.StatusResponse(ctx, w, newOrderView(*ord), http.StatusOK)
}

func (h orderHandler) reorder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		h.encoder.StatusResponse(ctx, w, backendError{Message: "invalid order id"}, http.StatusBadRequest)
		return
	}

	cart, err := h.orders.Reorder(ctx, orderID)
	if err != nil {
		h.encoder.writeError(ctx, w, err)
		return
	}

	h.encoder.StatusResponse(ctx, w, cart, http.StatusOK)
}

func (h orderHandler) writeWindow(w http.ResponseWriter, r *http.Request) {
	orders := h.orders.Orders()
	views := make([]orderView, 0, len(orders))
	for _, ord := range orders {
		views = append(views, newOrderView(ord))
	}

	h.encoder.StatusResponse(r.Context(), w, map[string]interface{}{
		"orders":    views,
		"exhausted": h.orders.Exhausted(),
	}, http.StatusOK)
}

func newOrderView(ord domain.Order) orderView {
	return orderView{
		Order:             ord,
		GrandTotalDisplay: displayPrice(ord.GrandTotal),
		PlacedDisplay:     displayTime(ord.CreatedAt),
	}
}
