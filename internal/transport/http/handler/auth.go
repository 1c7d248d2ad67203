package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/bookkita-api/internal/application/auth"
	"github.com/bookkita-api/internal/domain"
	"github.com/bookkita-api/internal/transport/http/middleware"
)

// AuthHandler handles the passwordless authentication endpoints.
type AuthHandler struct {
	svc           auth.Service
	secureCookies bool
}

func NewAuthHandler(svc auth.Service, secureCookies bool) *AuthHandler {
	return &AuthHandler{svc: svc, secureCookies: secureCookies}
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	masked, err := h.svc.SendOTP(r.Context(), req, middleware.RealIP(r))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SendOTPEnvelope{
		Message: "an OTP code has been sent to your email",
		Email:   masked,
	})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.svc.VerifyOTP(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	h.login(w, result)
}

func (h *AuthHandler) SendMagicLink(w http.ResponseWriter, r *http.Request) {
	var req domain.SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	masked, err := h.svc.SendMagicLink(r.Context(), req, middleware.RealIP(r))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SendOTPEnvelope{
		Message: "a login link has been sent to your email",
		Email:   masked,
	})
}

func (h *AuthHandler) VerifyLogin(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.VerifyMagicLink(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		httpError(w, err)
		return
	}
	h.login(w, result)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.svc.Me(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{User: u})
}

// UpdateMe changes the caller's profile fields and returns the fresh record.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := h.svc.UpdateProfile(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{Message: "profile updated", User: u})
}

// Session reports whether the caller's session cookie still backs a live
// server-side session, and when it runs out.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sess, err := h.svc.Session(r.Context(), cookie.Value)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionEnvelope{ExpiresAt: sess.ExpiresAt})
}

// Logout deletes the server-side session and clears both cookies. It returns
// 200 even without a session cookie so repeated logouts stay harmless.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.svc.Logout(r.Context(), cookie.Value); err != nil {
			httpError(w, err)
			return
		}
	}
	middleware.ClearAuthCookies(w)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logout successful"})
}

// LogoutAll revokes every session the caller holds and clears the cookies on
// this device.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.LogoutAll(r.Context(), claims.UserID); err != nil {
		httpError(w, err)
		return
	}
	middleware.ClearAuthCookies(w)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "all sessions revoked"})
}

// login sets both auth cookies and writes the verified user's profile.
func (h *AuthHandler) login(w http.ResponseWriter, result *auth.LoginResult) {
	middleware.SetAuthCookies(
		w,
		result.Session.SessionToken,
		result.SignedToken,
		time.Unix(result.Session.ExpiresAt, 0),
		h.secureCookies,
	)
	writeJSON(w, http.StatusOK, UserEnvelope{
		Message: "verification successful",
		User:    result.User,
	})
}
