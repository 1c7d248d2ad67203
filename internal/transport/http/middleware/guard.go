package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtinfra "github.com/bookkita-api/internal/infrastructure/jwt"
)

type contextKey string

// ClaimsKey carries the verified token claims through the request context.
const ClaimsKey contextKey = "claims"

// TokenVerifier validates a signed token and returns its claims.
type TokenVerifier interface {
	Verify(tokenStr string) (*jwtinfra.Claims, error)
}

// Paths the guard never touches, matching the original deployment's matcher.
var bypassPrefixes = []string{"/api/", "/_next/static/", "/_next/image/"}

// Pages that require a login, and pages that only make sense logged out.
var (
	protectedPrefixes = []string{"/dashboard", "/profile", "/settings"}
	authPrefixes      = []string{"/auth", "/login", "/register", "/verify-login"}
)

const (
	authEntryPoint = "/auth"
	landingPage    = "/dashboard"
)

// Guard is the route-protection middleware. It reads the signed-token cookie
// and redirects: protected page without a valid token → the auth entry point
// (clearing stale cookies when the token is present but invalid), auth page
// with a valid token → the landing page. A valid token on a protected page is
// forwarded with its claims in the request context. Token validation failure
// is never surfaced; it just means "unauthenticated".
func Guard(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if path == "/favicon.ico" || hasAnyPrefix(path, bypassPrefixes) {
				next.ServeHTTP(w, r)
				return
			}
			protected := hasAnyPrefix(path, protectedPrefixes)
			authPage := hasAnyPrefix(path, authPrefixes)

			cookie, err := r.Cookie(AuthCookieName)
			if err != nil || cookie.Value == "" {
				if protected {
					http.Redirect(w, r, authEntryPoint, http.StatusTemporaryRedirect)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(cookie.Value)
			if err != nil {
				if protected {
					ClearAuthCookies(w)
					http.Redirect(w, r, authEntryPoint, http.StatusTemporaryRedirect)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if authPage {
				http.Redirect(w, r, landingPage, http.StatusTemporaryRedirect)
				return
			}
			if protected {
				ctx := context.WithValue(r.Context(), ClaimsKey, claims)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext extracts verified token claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
