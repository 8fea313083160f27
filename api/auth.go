/*
auth.go - Bearer-token authentication and the captain gate

PURPOSE:
  The engine treats authorization as the caller's concern; this file is that
  caller. A signed JWT carries the crew member's id and captain flag. The
  middleware verifies the token and stores the identity in the request
  context; RequireCaptain guards the routes that award points, complete
  bookings, or archive them.

TOKEN SHAPE (HS256):
  sub:     crew member id
  captain: bool
  exp:     expiry

  Tokens are minted by the crew-management side of the deployment; this
  service only verifies.
*/
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/warp/charter-engine/charter"
)

type ctxKey int

const identityKey ctxKey = iota

// Identity is the authenticated caller.
type Identity struct {
	UserID  charter.UserID
	Captain bool
}

type claims struct {
	Captain bool `json:"captain"`
	jwt.RegisteredClaims
}

// IdentityFrom returns the caller's identity, if the request was authenticated.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// Authenticator verifies the Bearer token and injects the identity. With an
// empty secret authentication is disabled and every request is anonymous -
// the development default, matching an empty JWT_SECRET.
func Authenticator(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
				return
			}

			var c claims
			token, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid || c.Subject == "" {
				writeError(w, http.StatusUnauthorized, "Invalid token", err)
				return
			}

			identity := Identity{UserID: charter.UserID(c.Subject), Captain: c.Captain}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
		})
	}
}

// RequireCaptain rejects callers without captain privilege. When
// authentication is disabled it lets everything through, again the
// development default.
func RequireCaptain(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if ok && !id.Captain {
			writeError(w, http.StatusForbidden, "Captain privilege required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
