package http

import (
	"context"
	"net/http"

	"github.com/gourmand-app/gourmand/internal/address"
	"github.com/gourmand-app/gourmand/internal/gateway"
	"github.com/gourmand-app/gourmand/internal/screen"
	"github.com/gourmand-app/gourmand/pkg/errors"
)

// backendError is the uniform error payload the bridge hands the shell.
type backendError struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// writeError maps core errors onto bridge responses. Backend rejections keep
// their original status and field map; local validation mirrors the backend's
// 422 shape so the shell renders both the same way.
func (e encoder) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		e.StatusResponse(ctx, w, backendError{Message: apiErr.Message, Errors: apiErr.Errors}, apiErr.StatusCode)
		return
	}

	var validationErr *address.ValidationError
	if errors.As(err, &validationErr) {
		e.StatusResponse(ctx, w, backendError{Message: "validation failed", Errors: validationErr.Fields}, http.StatusUnprocessableEntity)
		return
	}

	switch {
	case errors.Is(err, screen.ErrUnauthenticated):
		e.StatusResponse(ctx, w, backendError{Message: "not authenticated"}, http.StatusUnauthorized)
	case errors.Is(err, gateway.ErrTimeout):
		e.StatusResponse(ctx, w, backendError{Message: "storefront backend timed out"}, http.StatusGatewayTimeout)
	default:
		e.Error(w, err)
	}
}
