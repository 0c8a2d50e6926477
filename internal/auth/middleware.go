package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type contextKey string

const claimsKey contextKey = "auth_claims"

// ClaimsFromContext extracts JWT claims from request context.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// Authenticator resolves the admin token of a request, read from the
// Authorization bearer header first and the auth cookie second.
type Authenticator struct {
	jwt        *JWTManager
	cookieName string
}

// NewAuthenticator creates an Authenticator reading cookieName.
func NewAuthenticator(jwtMgr *JWTManager, cookieName string) *Authenticator {
	return &Authenticator{jwt: jwtMgr, cookieName: cookieName}
}

// CookieName is the name of the auth cookie.
func (a *Authenticator) CookieName() string { return a.cookieName }

// Authenticate validates the request's token.
func (a *Authenticator) Authenticate(r *http.Request) (*Claims, error) {
	token, err := a.tokenFromRequest(r)
	if err != nil {
		return nil, err
	}
	return a.jwt.ValidateToken(token)
}

// IsAuthenticated reports whether r carries a valid admin token.
func (a *Authenticator) IsAuthenticated(r *http.Request) bool {
	_, err := a.Authenticate(r)
	return err == nil
}

// RequireAdmin rejects requests without a valid admin token before the
// wrapped handler runs, so nothing is mutated.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.Authenticate(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"code":"UNAUTHORIZED","message":"admin authentication required"}`))
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) tokenFromRequest(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return "", fmt.Errorf("invalid Authorization format")
		}
		return parts[1], nil
	}

	if c, err := r.Cookie(a.cookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return "", fmt.Errorf("missing credentials")
}
