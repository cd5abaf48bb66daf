package screen

import (
	"github.com/gourmand-app/gourmand/pkg/errors"
)

// ErrUnauthenticated is the redirect-to-login signal. Controllers return it
// without issuing any fetch when their auth requirement is unmet.
const ErrUnauthenticated = errors.Sentinel("not authenticated")

// Authenticator is the part of the session store a gate consults.
type Authenticator interface {
	Authenticated() bool
}

// Gate guards authenticated screens. Check is evaluated before every fetch,
// not only on first entry, so a logout mid-session is caught on the next
// focus.
type Gate struct {
	auth Authenticator
}

func NewGate(auth Authenticator) *Gate {
	return &Gate{auth: auth}
}

func (g *Gate) Check() error {
	if !g.auth.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}
