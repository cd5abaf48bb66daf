package credentials

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/gourmand-app/gourmand/pkg/errors"
	"github.com/rs/zerolog"
)

type Service interface {
	// SaveSession writes the full credential mirror. Callers invoke it before
	// touching the in-memory session so a crash between the two leaves the
	// persisted copy at least as fresh as memory.
	SaveSession(ctx context.Context, creds domain.PersistedCredentials) error
	// Restore reads the mirror at cold start. A missing token yields
	// (nil, nil): cold start without credentials is not an error.
	Restore(ctx context.Context) (*domain.PersistedCredentials, error)
	// Clear deletes the mirror. Failures are logged and swallowed; logout
	// must proceed even when storage cleanup partially fails.
	Clear(ctx context.Context)
	// PersistCounts opportunistically refreshes the cached counters after a
	// successful mutation. Best effort only.
	PersistCounts(ctx context.Context, basket, wishlist int)
}

type service struct {
	log  zerolog.Logger
	repo domain.CredentialRepo
}

func NewService(log logger.Logger, repo domain.CredentialRepo) Service {
	return &service{
		log:  log.With().Str("module", "credentials").Logger(),
		repo: repo,
	}
}

func (s *service) SaveSession(ctx context.Context, creds domain.PersistedCredentials) error {
	user, err := json.Marshal(creds.User)
	if err != nil {
		return errors.Wrap(err, "could not serialize user profile")
	}

	// token first: a partially written mirror with a token but stale counters
	// still reconstructs an authenticated session
	if err := s.repo.Set(ctx, domain.CredentialKeyToken, creds.Token); err != nil {
		return errors.Wrap(err, "could not persist token")
	}
	if err := s.repo.Set(ctx, domain.CredentialKeyUser, string(user)); err != nil {
		return errors.Wrap(err, "could not persist user profile")
	}
	if err := s.repo.Set(ctx, domain.CredentialKeyBasketCount, strconv.Itoa(creds.BasketCount)); err != nil {
		return errors.Wrap(err, "could not persist basket count")
	}
	if err := s.repo.Set(ctx, domain.CredentialKeyWishlistCount, strconv.Itoa(creds.WishlistCount)); err != nil {
		return errors.Wrap(err, "could not persist wishlist count")
	}

	s.log.Debug().Msg("credential mirror written")
	return nil
}

func (s *service) Restore(ctx context.Context) (*domain.PersistedCredentials, error) {
	token, err := s.repo.Get(ctx, domain.CredentialKeyToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "could not read persisted token")
	}
	if token == "" {
		return nil, nil
	}

	creds := &domain.PersistedCredentials{Token: token}

	if raw, err := s.repo.Get(ctx, domain.CredentialKeyUser); err == nil {
		var user domain.UserProfile
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			s.log.Warn().Err(err).Msg("persisted user profile is unreadable, restoring without it")
		} else {
			creds.User = &user
		}
	}

	creds.BasketCount = s.readCount(ctx, domain.CredentialKeyBasketCount)
	creds.WishlistCount = s.readCount(ctx, domain.CredentialKeyWishlistCount)

	return creds, nil
}

func (s *service) Clear(ctx context.Context) {
	keys := []string{
		domain.CredentialKeyToken,
		domain.CredentialKeyUser,
		domain.CredentialKeyBasketCount,
		domain.CredentialKeyWishlistCount,
	}

	for _, key := range keys {
		if err := s.repo.Delete(ctx, key); err != nil {
			// fail-open on teardown: never block the user from leaving
			s.log.Error().Err(err).Str("key", key).Msg("could not clear persisted credential")
		}
	}
}

func (s *service) PersistCounts(ctx context.Context, basket, wishlist int) {
	if err := s.repo.Set(ctx, domain.CredentialKeyBasketCount, strconv.Itoa(basket)); err != nil {
		s.log.Warn().Err(err).Msg("could not persist basket count")
	}
	if err := s.repo.Set(ctx, domain.CredentialKeyWishlistCount, strconv.Itoa(wishlist)); err != nil {
		s.log.Warn().Err(err).Msg("could not persist wishlist count")
	}
}

func (s *service) readCount(ctx context.Context, key string) int {
	raw, err := s.repo.Get(ctx, key)
	if err != nil {
		return 0
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return count
}
