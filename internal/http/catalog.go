package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gourmand-app/gourmand/internal/catalog"
)

type catalogHandler struct {
	encoder encoder
	catalog *catalog.Controller
}

func newCatalogHandler(encoder encoder, controller *catalog.Controller) *catalogHandler {
	return &catalogHandler{
		encoder: encoder,
		catalog: controller,
	}
}

// Browse is public: no auth gate on any catalog route.
func (h catalogHandler) Routes(r chi.Router) {
	r.Get("/categories", h.categories)
	r.Get("/categories/{categoryID}/products", h.browse)
	r.Get("/products/{productID}", h.detail)
	r.Get("/search", h.search)
	r.Post("/more", h.loadMore)
}

func (h catalogHandler) categories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		h.encoder.writeError(ctx, w, err)
		return
	}

	h.encoder.StatusResponse(ctx, w, categories, http.StatusOK)
}

func (h catalogHandler) browse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categoryID, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	if err != nil {
		h.encoder.StatusResponse(ctx, w, backendError{Message: "invalid category id"}, http.StatusBadRequest)
		return
	}

	if err := h.catalog.Browse(ctx, categoryID); err != nil {
		h.encoder.writeError(ctx, w, err)
		return
	}

	h.writeListing(w, r)
}

func (h catalogHandler) search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("q")
	if query == "" {
		h.encoder.StatusResponse(ctx, w, backendError{Message: "missing search query"}, http.StatusBadRequest)
		return
	}

	if err := h.catalog.Search(ctx, query); err != nil {
		h.encoder.writeError(ctx, w, err)
		return
	}

	h.writeListing(w, r)
}

func (h catalogHandler) loadMore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.catalog.LoadMore(ctx); err != nil {
		h.encoder.writeError(ctx, w, err)
		return
	}

	h.writeListing(w, r)
}

func (h catalogHandler) detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		h.encoder.StatusResponse(ctx, w, backendError{Message: "invalid product id"}, http.StatusBadRequest)
		return
	}

	product, err := h.catalog.Detail(ctx, productID)
	if err != nil {
		h.encoder.writeError(ctx, w, err)
		return
	}
	if product == nil {
		h.encoder.StatusNotFound(ctx, w)
		return
	}

	h.encoder.StatusResponse(ctx, w, product, http.StatusOK)
}

func (h catalogHandler) writeListing(w http.ResponseWriter, r *http.Request) {
	h.encoder.StatusResponse(r.Context(), w, map[string]interface{}{
		"products":  h.catalog.Products(),
		"exhausted": h.catalog.Exhausted(),
	}, http.StatusOK)
}
