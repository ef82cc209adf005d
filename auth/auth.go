/*
auth.go - Bearer-token authentication and role guards

PURPOSE:
  Parses HMAC-signed bearer tokens into an Actor and exposes chi-compatible
  middleware for role-guarded routes. Token issuance (login) is out of scope;
  tokens are minted by an external identity service sharing the secret.

TOKEN SHAPE:
  JWT, HS256, claims:
    sub    actor id
    roles  []string, e.g. ["admin"] or ["recruiter"]
    exp    standard expiry

USAGE:
  r.Use(auth.Middleware(secret))                 // attaches Actor to context
  r.With(auth.RequireRole("admin")).Delete(...)  // guards a route

  An empty secret disables authentication entirely. Every request then runs
  as a synthetic admin actor, which keeps local development and the demo
  scenarios friction-free.

SEE ALSO:
  - api/server.go: Route wiring
*/
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

// Actor is the authenticated caller attached to the request context.
type Actor struct {
	ID    string
	Roles []string
}

// HasRole reports whether the actor carries any of the given roles.
func (a Actor) HasRole(roles ...string) bool {
	for _, want := range roles {
		for _, have := range a.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

type contextKey struct{}

// FromContext returns the Actor set by Middleware, if any.
func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(contextKey{}).(Actor)
	return a, ok
}

// WithActor returns a context carrying the given actor. Exposed for tests.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

type claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// ErrInvalidToken is returned when a bearer token fails parsing or
// signature verification.
var ErrInvalidToken = errors.New("invalid bearer token")

// ParseToken verifies an HS256 token and extracts the actor.
func ParseToken(secret, token string) (Actor, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return Actor{}, ErrInvalidToken
	}
	return Actor{ID: c.Subject, Roles: c.Roles}, nil
}

// Middleware authenticates requests. With an empty secret every request is
// given an admin actor; otherwise a valid "Authorization: Bearer <token>"
// header is required.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				ctx := WithActor(r.Context(), Actor{ID: "dev", Roles: []string{"admin"}})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			actor, err := ParseToken(secret, token)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid bearer token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireRole rejects requests whose actor lacks all of the given roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := FromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			if !actor.HasRole(roles...) {
				writeAuthError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
