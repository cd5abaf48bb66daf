package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/gourmand-app/gourmand/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrTimeout is returned when a request exceeds the client's fixed deadline.
const ErrTimeout = errors.Sentinel("request timed out")

// APIError carries whatever the backend returned on a non-2xx response.
// Errors holds the field-keyed validation error map some endpoints return.
type APIError struct {
	StatusCode int                 `json:"-"`
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Errors     map[string][]string `json:"errors"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (%d)", e.StatusCode)
}

// envelope is the uniform outer wrapper of every backend response. Only the
// data payload reaches caller code; its shape is ad hoc per endpoint.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// Client is the single request/response boundary to the storefront backend.
// One fixed timeout applies to every request; there is no per-request
// override, no backoff, no retry and no de-duplication of identical
// concurrent requests. A failed call fails once, immediately, and the screen
// controller decides what to do with it.
//
// The bearer token is supplied per call by the caller; the client does not
// hold authentication state.
type Client struct {
	log     zerolog.Logger
	baseURL string
	http    *http.Client
}

func New(log logger.Logger, cfg domain.APIConfig) *Client {
	return &Client{
		log:     log.With().Str("module", "gateway").Logger(),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// do sends one request and decodes the unwrapped data payload into out.
// Object bodies get their top-level keys re-cased (see capitalizeKeys)
// before transmission.
func (c *Client) do(ctx context.Context, method, path, token string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "could not encode request body")
		}
		raw, err = capitalizeKeys(raw)
		if err != nil {
			return errors.Wrap(err, "could not transform request body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "could not build request")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.log.Warn().Str("method", method).Str("path", path).Msg("request timed out")
			return ErrTimeout
		}
		return errors.Wrap(err, "request failed: %s %s", method, path)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "could not read response body")
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{StatusCode: res.StatusCode}
		var env envelope
		if err := json.Unmarshal(payload, &env); err == nil && len(env.Data) > 0 {
			_ = json.Unmarshal(env.Data, apiErr)
		} else {
			_ = json.Unmarshal(payload, apiErr)
		}
		c.log.Debug().Int("status", res.StatusCode).Str("path", path).Msg("backend rejected request")
		return apiErr
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return errors.Wrap(err, "could not decode response envelope")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.Wrap(err, "could not decode response payload")
	}

	return nil
}

func isTimeout(err error) bool {
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) {
		return timeout.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
