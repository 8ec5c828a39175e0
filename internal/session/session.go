// Package session resolves the anonymous session token that scopes a
// client's ledger. The token is a bearer capability: whoever presents it
// owns the session. There is no user identity behind it.
package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CookieName is the client-side marker carrying the session token.
const CookieName = "sessionId"

// Resolver issues and reads session tokens via a persistent cookie.
type Resolver struct {
	ttl time.Duration
}

func NewResolver(ttl time.Duration) *Resolver {
	return &Resolver{ttl: ttl}
}

// Current returns the session token presented by the request, if any.
// It never mutates the response.
func Current(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// Resolve returns the request's session token, minting a new one and
// attaching it to the response when the request carries none. Collisions are
// negligible by construction (random v4 UUID), so no uniqueness check is
// made against the store.
func (rs *Resolver) Resolve(w http.ResponseWriter, r *http.Request) (token string, issued bool) {
	if tok, ok := Current(r); ok {
		return tok, false
	}

	tok := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(rs.ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return tok, true
}
