package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/gourmand-app/gourmand/internal/auth"
	"github.com/gourmand-app/gourmand/internal/session"
	"github.com/rs/zerolog"
)

type authHandler struct {
	encoder encoder
	log     zerolog.Logger

	cookieStore *sessions.CookieStore
	service     auth.Service
	sessions    *session.Store
}

func newAuthHandler(encoder encoder, log zerolog.Logger, cookieStore *sessions.CookieStore, service auth.Service, sessionStore *session.Store) *authHandler {
	return &authHandler{
		encoder:     encoder,
		log:         log,
		cookieStore: cookieStore,
		service:     service,
		sessions:    sessionStore,
	}
}

func (h authHandler) Routes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/register", h.register)
	r.Post("/logout", h.logout)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h authHandler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.encoder.StatusResponse(ctx, w, backendError{Message: "invalid request body"}, http.StatusBadRequest)
		return
	}

	if err := h.service.Login(ctx, req.Email, req.Password); err != nil {
		h.log.Debug().Err(err).Msg("login rejected")
		h.encoder.writeError(ctx, w, err)
		return
	}

	h.setShellCookie(w, r, true)
	h.encoder.StatusResponse(ctx, w, h.sessions.Snapshot(), http.StatusOK)
}

func (h authHandler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.encoder.StatusResponse(ctx, w, backendError{Message: "invalid request body"}, http.StatusBadRequest)
		return
	}

	if err := h.service.Register(ctx, req.Email, req.Phone, req.Password); err != nil {
		h.log.Debug().Err(err).Msg("registration rejected")
		h.encoder.writeError(ctx, w, err)
		return
	}

	h.setShellCookie(w, r, true)
	h.encoder.StatusResponse(ctx, w, h.sessions.Snapshot(), http.StatusCreated)
}

func (h authHandler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.service.Logout(ctx)
	h.setShellCookie(w, r, false)
	h.encoder.NoContent(w)
}

func (h authHandler) setShellCookie(w http.ResponseWriter, r *http.Request, authenticated bool) {
	cookie, _ := h.cookieStore.Get(r, "shell_session")
	cookie.Values["authenticated"] = authenticated
	if !authenticated {
		cookie.Options.MaxAge = -1
	}
	if err := cookie.Save(r, w); err != nil {
		h.log.Error().Err(err).Msg("could not save shell session cookie")
	}
}
