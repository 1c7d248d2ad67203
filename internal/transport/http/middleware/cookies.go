package middleware

import (
	"net/http"
	"time"
)

// Cookie names shared by the verify handlers and the route guard.
// session-token is the HTTP-only server-side session lookup key; auth-token
// is the client-readable signed token.
const (
	SessionCookieName = "session-token"
	AuthCookieName    = "auth-token"
)

// SetAuthCookies installs both login cookies on the response.
func SetAuthCookies(w http.ResponseWriter, sessionToken, signedToken string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionToken,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    signedToken,
		Path:     "/",
		Expires:  expires,
		HttpOnly: false, // readable by the frontend
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAuthCookies expires both login cookies.
func ClearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{SessionCookieName, AuthCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: name == SessionCookieName,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
