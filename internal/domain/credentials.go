package domain

import "context"

// Credential cache keys. The store is string-only key-value with no
// multi-key atomicity; write ordering is the caller's responsibility.
const (
	CredentialKeyToken         = "auth_token"
	CredentialKeyUser          = "user_profile"
	CredentialKeyBasketCount   = "basket_count"
	CredentialKeyWishlistCount = "wishlist_count"
)

// CredentialRepo is the device-local secure key-value store backing the
// persisted credential cache.
type CredentialRepo interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// PersistedCredentials is the durable mirror of the session fields that
// survive a process restart. It is a cache, not a source of truth.
type PersistedCredentials struct {
	Token         string
	User          *UserProfile
	BasketCount   int
	WishlistCount int
}
