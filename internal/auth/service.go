package auth

import (
	"context"
	"net/http"

	"github.com/gourmand-app/gourmand/internal/credentials"
	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/gateway"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/gourmand-app/gourmand/internal/notification"
	"github.com/gourmand-app/gourmand/internal/session"
	"github.com/gourmand-app/gourmand/pkg/errors"
	"github.com/rs/zerolog"
)

// Service orchestrates the authentication lifecycle: backend call, credential
// mirror, in-memory session and notification feed always move together.
type Service interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, email, phone, password string) error
	// Logout tears everything down. It cannot fail; storage cleanup errors
	// are logged and swallowed.
	Logout(ctx context.Context)
	// Restore rebuilds the session from the credential mirror at cold start.
	// It must complete before the bridge starts serving so the first
	// snapshot a shell sees is never a logged-out flicker.
	Restore(ctx context.Context) error
	// Revalidate re-fetches the profile with the stored token. A 401 means
	// the token died server-side and the session is logged out.
	Revalidate(ctx context.Context) error
}

type service struct {
	log           zerolog.Logger
	api           *gateway.Client
	sessions      *session.Store
	creds         credentials.Service
	notifications notification.Service
}

func NewService(log logger.Logger, api *gateway.Client, sessions *session.Store, creds credentials.Service, notifications notification.Service) Service {
	return &service{
		log:           log.With().Str("module", "auth").Logger(),
		api:           api,
		sessions:      sessions,
		creds:         creds,
		notifications: notifications,
	}
}

func (s *service) Login(ctx context.Context, email, password string) error {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return errors.Wrap(err, "login failed")
	}
	if res.Token == "" || res.User == nil {
		return errors.New("login response missing token or user")
	}

	return s.establish(ctx, res.User, res.Token)
}

func (s *service) Register(ctx context.Context, email, phone, password string) error {
	res, err := s.api.Register(ctx, email, phone, password)
	if err != nil {
		return errors.Wrap(err, "registration failed")
	}
	if res.Token == "" || res.User == nil {
		return errors.New("register response missing token or user")
	}

	return s.establish(ctx, res.User, res.Token)
}

func (s *service) Logout(ctx context.Context) {
	s.notifications.Detach()
	s.sessions.Logout()
	s.creds.Clear(ctx)
	s.log.Info().Msg("logged out")
}

func (s *service) Restore(ctx context.Context) error {
	creds, err := s.creds.Restore(ctx)
	if err != nil {
		return errors.Wrap(err, "could not restore persisted session")
	}
	if creds == nil {
		s.log.Debug().Msg("no persisted session, starting logged out")
		return nil
	}

	s.sessions.SetUser(creds.User, creds.Token)
	s.sessions.SetBasket(creds.BasketCount)
	s.sessions.SetWishlist(creds.WishlistCount)

	if creds.User != nil {
		if err := s.notifications.Attach(creds.User.ID); err != nil {
			s.log.Error().Err(err).Msg("could not attach notification feed after restore")
		}
	}

	s.log.Info().Msg("session restored from credential mirror")
	return nil
}

func (s *service) Revalidate(ctx context.Context) error {
	if !s.sessions.Authenticated() {
		return nil
	}

	token := s.sessions.Token()
	res, err := s.api.Profile(ctx, token)
	if err != nil {
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			s.log.Info().Msg("stored token rejected, logging out")
			s.Logout(ctx)
			return nil
		}
		return errors.Wrap(err, "could not revalidate session")
	}

	s.sessions.SetUser(res.User, token)

	snapshot := s.sessions.Snapshot()
	if err := s.creds.SaveSession(ctx, domain.PersistedCredentials{
		Token:         token,
		User:          res.User,
		BasketCount:   snapshot.BasketCount,
		WishlistCount: snapshot.WishlistCount,
	}); err != nil {
		s.log.Warn().Err(err).Msg("could not refresh credential mirror")
	}
	return nil
}

// establish writes the credential mirror before touching the in-memory
// session, then attaches the notification feed.
func (s *service) establish(ctx context.Context, user *domain.UserProfile, token string) error {
	if err := s.creds.SaveSession(ctx, domain.PersistedCredentials{Token: token, User: user}); err != nil {
		return errors.Wrap(err, "could not persist credentials")
	}

	s.sessions.SetUser(user, token)

	if err := s.notifications.Attach(user.ID); err != nil {
		s.log.Error().Err(err).Msg("could not attach notification feed")
	}

	s.log.Info().Int64("user_id", user.ID).Msg("authenticated")
	return nil
}
