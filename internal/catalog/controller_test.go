package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/gateway"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catalogBackend serves categories and a paginated product listing for both
// browse and search paths.
func catalogBackend(t *testing.T, total int) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/catalog/categories" {
			_, _ = w.Write([]byte(`{"data":{"success":true,"categories":[{"id":1,"name":"Cheese"},{"id":2,"name":"Wine"}]}}`))
			return
		}

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		prefix := "p"
		if strings.HasPrefix(r.URL.Path, "/catalog/search") {
			prefix = "s"
		}

		products := make([]domain.Product, 0, limit)
		for i := offset; i < total && i < offset+limit; i++ {
			products = append(products, domain.Product{ID: int64(i + 1), Name: fmt.Sprintf("%s-%d", prefix, i+1)})
		}

		payload, err := json.Marshal(map[string]interface{}{
			"data": map[string]interface{}{"success": true, "products": products, "total": total},
		})
		require.NoError(t, err)
		_, _ = w.Write(payload)
	})
}

func testController(t *testing.T, handler http.Handler) *Controller {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api := gateway.New(logger.Mock(), domain.APIConfig{BaseURL: srv.URL, TimeoutSeconds: 2})
	controller := NewController(logger.Mock(), api)
	controller.pageSize = 2
	return controller
}

func TestController_CategoriesArePublic(t *testing.T) {
	// no session store involved at all; browse works logged out
	controller := testController(t, catalogBackend(t, 0))

	categories, err := controller.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Cheese", categories[0].Name)
}

func TestController_BrowsePaginates(t *testing.T) {
	controller := testController(t, catalogBackend(t, 5))

	require.NoError(t, controller.Browse(context.Background(), 1))
	assert.Len(t, controller.Products(), 2)
	assert.False(t, controller.Exhausted())

	require.NoError(t, controller.LoadMore(context.Background()))
	require.NoError(t, controller.LoadMore(context.Background()))
	products := controller.Products()
	assert.Len(t, products, 5)
	assert.True(t, controller.Exhausted())
	assert.Equal(t, "p-5", products[4].Name)

	require.NoError(t, controller.LoadMore(context.Background()))
	assert.Len(t, controller.Products(), 5)
}

func TestController_SearchResetsListing(t *testing.T) {
	controller := testController(t, catalogBackend(t, 5))

	require.NoError(t, controller.Browse(context.Background(), 1))
	require.NoError(t, controller.LoadMore(context.Background()))
	require.Len(t, controller.Products(), 4)

	require.NoError(t, controller.Search(context.Background(), "brie"))
	products := controller.Products()
	assert.Len(t, products, 2)
	assert.Equal(t, "s-1", products[0].Name)

	// LoadMore continues the search, not the abandoned browse
	require.NoError(t, controller.LoadMore(context.Background()))
	assert.Equal(t, "s-3", controller.Products()[2].Name)
}

func TestController_DetailFetchesOneProduct(t *testing.T) {
	controller := testController(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/catalog/products/7", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"success":true,"product":{"id":7,"name":"Comté","in_stock":true}}}`))
	}))

	product, err := controller.Detail(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.True(t, product.InStock)
}
