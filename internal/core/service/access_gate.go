package service

import (
	"crypto/subtle"

	"github.com/rl1809/banko/internal/core/domain"
)

// AccessGate holds the single admin credential.
type AccessGate struct {
	username string
	password string
}

func NewAccessGate(username, password string) *AccessGate {
	return &AccessGate{username: username, password: password}
}

// Authorize reports whether principal holds the required role.
func (g *AccessGate) Authorize(principal, required domain.Principal) bool {
	return required != domain.Anonymous && principal == required
}

// Require is Authorize as an error, for callers that propagate it.
func (g *AccessGate) Require(principal, required domain.Principal) error {
	if !g.Authorize(principal, required) {
		return ErrUnauthorized
	}
	return nil
}

// Login returns domain.Admin on an exact credential match and
// domain.Anonymous otherwise.
func (g *AccessGate) Login(username, password string) domain.Principal {
	if g.username == "" || g.password == "" {
		return domain.Anonymous
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) == 1
	if userOK && passOK {
		return domain.Admin
	}
	return domain.Anonymous
}
