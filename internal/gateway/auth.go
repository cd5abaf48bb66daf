package gateway

import (
	"context"
	"net/http"

	"github.com/gourmand-app/gourmand/internal/domain"
)

// Response shapes are mirrored per endpoint. The backend's field naming is
// inconsistent across conceptually similar payloads; the shapes are a fixed
// external contract, not something to unify.

type LoginResponse struct {
	Success bool                `json:"success"`
	Token   string              `json:"token"`
	User    *domain.UserProfile `json:"user"`
	Message string              `json:"message"`
}

type RegisterResponse struct {
	Success bool                `json:"success"`
	Token   string              `json:"token"`
	User    *domain.UserProfile `json:"user"`
	Errors  map[string][]string `json:"errors"`
}

type ProfileResponse struct {
	Success bool                `json:"success"`
	User    *domain.UserProfile `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	var res LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, email, phone, password string) (*RegisterResponse, error) {
	body := struct {
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}{email, phone, password}

	var res RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Profile(ctx context.Context, token string) (*ProfileResponse, error) {
	var res ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/profile", token, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
