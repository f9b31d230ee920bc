package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ariefcatur/bookstore-storefront/internal/auth"
)

type ctxKey struct{}

const tokenCookie = "token"

func claimsFrom(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(ctxKey{}).(*auth.Claims)
	return c
}

// Authenticate requires a valid session token from the token cookie or an
// Authorization bearer header.
func Authenticate(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearer(r)
			if raw == "" {
				fail(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required")
				return
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				msg := "Invalid token"
				if errors.Is(err, auth.ErrExpiredToken) {
					msg = "Token expired"
				}
				fail(w, http.StatusUnauthorized, "INVALID_TOKEN", msg)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims)))
		})
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c := claimsFrom(r.Context()); c == nil || !c.IsAdmin {
			fail(w, http.StatusForbidden, "FORBIDDEN", "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearer(r *http.Request) string {
	if c, err := r.Cookie(tokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func setTokenCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
