package session

import (
	"sync"

	"github.com/asaskevich/EventBus"
	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/rs/zerolog"
)

// Bus topics published by the store. The bridge forwards badge updates to the
// shell over SSE; subscribers must treat payloads as read-only.
const (
	TopicBadges = "session:badges"
	TopicUser   = "session:user"
)

// Badges is the payload published on TopicBadges.
type Badges struct {
	Basket        int `json:"basket"`
	Wishlist      int `json:"wishlist"`
	Notifications int `json:"notifications"`
}

// Store is the single process-wide authority for who is logged in and the
// three badge counters. It is an explicit dependency-injected container, not
// a package singleton, so tests can construct isolated instances.
//
// Setters are unconditional overwrites with last-write-wins semantics and
// cannot fail; callers handle failures of the network calls that precede
// them.
type Store struct {
	log zerolog.Logger
	bus EventBus.Bus

	m       sync.RWMutex
	session domain.Session
}

func New(log logger.Logger, bus EventBus.Bus) *Store {
	return &Store{
		log: log.With().Str("module", "session").Logger(),
		bus: bus,
	}
}

// SetUser replaces the user/token pair. A nil user or empty token implies
// unauthenticated. No validation of the token shape is performed; trust is
// delegated to the backend on each subsequent call.
func (s *Store) SetUser(user *domain.UserProfile, token string) {
	s.m.Lock()
	s.session.User = user
	s.session.Token = token
	s.session.Authenticated = user != nil && token != ""
	authenticated := s.session.Authenticated
	s.m.Unlock()

	s.log.Debug().Bool("authenticated", authenticated).Msg("session user replaced")
	s.publishUser(user)
}

// SetBasket overwrites the basket badge counter.
func (s *Store) SetBasket(count int) {
	s.m.Lock()
	s.session.BasketCount = count
	badges := s.badges()
	s.m.Unlock()

	s.publishBadges(badges)
}

// SetWishlist overwrites the wishlist badge counter.
func (s *Store) SetWishlist(count int) {
	s.m.Lock()
	s.session.WishlistCount = count
	badges := s.badges()
	s.m.Unlock()

	s.publishBadges(badges)
}

// SetNotifications overwrites the unread-notification badge counter.
func (s *Store) SetNotifications(count int) {
	s.m.Lock()
	s.session.UnreadCount = count
	badges := s.badges()
	s.m.Unlock()

	s.publishBadges(badges)
}

// Logout clears the user, the auth flag and all three counters in a single
// state transition. Readers never observe an intermediate state that is
// unauthenticated with nonzero counters or vice versa.
func (s *Store) Logout() {
	s.m.Lock()
	s.session = domain.Session{}
	badges := s.badges()
	s.m.Unlock()

	s.log.Info().Msg("session cleared")
	s.publishUser(nil)
	s.publishBadges(badges)
}

// Snapshot returns a copy of the current session for readers.
func (s *Store) Snapshot() domain.Session {
	s.m.RLock()
	defer s.m.RUnlock()
	return s.session
}

// Authenticated reports whether a user is logged in.
func (s *Store) Authenticated() bool {
	s.m.RLock()
	defer s.m.RUnlock()
	return s.session.Authenticated
}

// Token returns the current auth token, empty when logged out.
func (s *Store) Token() string {
	s.m.RLock()
	defer s.m.RUnlock()
	return s.session.Token
}

// UserID returns the current user id and whether a user is present.
func (s *Store) UserID() (int64, bool) {
	s.m.RLock()
	defer s.m.RUnlock()
	if s.session.User == nil {
		return 0, false
	}
	return s.session.User.ID, true
}

// badges must be called with the lock held.
func (s *Store) badges() Badges {
	return Badges{
		Basket:        s.session.BasketCount,
		Wishlist:      s.session.WishlistCount,
		Notifications: s.session.UnreadCount,
	}
}

func (s *Store) publishBadges(b Badges) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(TopicBadges, b)
}

func (s *Store) publishUser(user *domain.UserProfile) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(TopicUser, user)
}
