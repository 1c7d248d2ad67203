package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwtinfra "github.com/bookkita-api/internal/infrastructure/jwt"
)

func newGuardedServer(t *testing.T) (http.Handler, *jwtinfra.Provider) {
	t.Helper()
	provider := jwtinfra.NewProvider("guard-test-secret", time.Hour)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := ClaimsFromContext(r.Context()); ok {
			w.Header().Set("X-User-Id", claims.UserID)
		}
		w.WriteHeader(http.StatusOK)
	})
	return Guard(provider)(next), provider
}

func guardRequest(t *testing.T, h http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGuard_ProtectedWithoutCookieRedirects(t *testing.T) {
	h, _ := newGuardedServer(t)
	rec := guardRequest(t, h, "/dashboard", "")

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/auth", rec.Header().Get("Location"))
}

func TestGuard_ProtectedWithInvalidTokenClearsCookiesAndRedirects(t *testing.T) {
	h, _ := newGuardedServer(t)
	rec := guardRequest(t, h, "/dashboard", "not-a-jwt")

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/auth", rec.Header().Get("Location"))

	cleared := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			cleared[c.Name] = true
		}
	}
	assert.True(t, cleared[SessionCookieName], "session cookie should be expired")
	assert.True(t, cleared[AuthCookieName], "auth cookie should be expired")
}

func TestGuard_ProtectedWithValidTokenPassesClaims(t *testing.T) {
	h, provider := newGuardedServer(t)
	token, err := provider.Sign("u1", "a@b.com")
	require.NoError(t, err)

	rec := guardRequest(t, h, "/dashboard", token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Header().Get("X-User-Id"))
}

func TestGuard_AuthPageWithValidTokenRedirectsToDashboard(t *testing.T) {
	h, provider := newGuardedServer(t)
	token, err := provider.Sign("u1", "a@b.com")
	require.NoError(t, err)

	for _, path := range []string{"/auth", "/login", "/register", "/verify-login"} {
		rec := guardRequest(t, h, path, token)
		assert.Equal(t, http.StatusTemporaryRedirect, rec.Code, path)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"), path)
	}
}

func TestGuard_AuthPageWithoutCookiePasses(t *testing.T) {
	h, _ := newGuardedServer(t)
	rec := guardRequest(t, h, "/auth", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuard_PublicPageWithInvalidTokenPasses(t *testing.T) {
	h, _ := newGuardedServer(t)
	rec := guardRequest(t, h, "/", "garbage")
	assert.Equal(t, http.StatusOK, rec.Code)
	// No redirect and no claims; the page renders for an anonymous visitor.
	assert.Empty(t, rec.Header().Get("X-User-Id"))
}

func TestGuard_BypassPathsAreNeverTouched(t *testing.T) {
	h, _ := newGuardedServer(t)
	for _, path := range []string{
		"/api/auth/me",
		"/_next/static/chunk.js",
		"/_next/image/cover.png",
		"/favicon.ico",
	} {
		rec := guardRequest(t, h, path, "garbage")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
