package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/bookkita-api/internal/domain"
	"github.com/bookkita-api/internal/infrastructure/smtp"
	"github.com/bookkita-api/internal/pkg/id"
	"github.com/bookkita-api/internal/pkg/ratelimit"
	pkgtoken "github.com/bookkita-api/internal/pkg/token"
	"github.com/bookkita-api/internal/pkg/validate"
)

const (
	otpExpiry  = 5 * time.Minute
	linkExpiry = 15 * time.Minute
)

// UserStore is the minimal user storage the service requires.
type UserStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// OtpStore is the minimal OTP storage the service requires.
type OtpStore interface {
	Put(ctx context.Context, o *domain.OtpCode) error
	GetActive(ctx context.Context, email, code, purpose string) (*domain.OtpCode, error)
	GetActiveByCode(ctx context.Context, code, purpose string) (*domain.OtpCode, error)
	MarkUsed(ctx context.Context, otpID string) error
	DeleteUnusedByEmail(ctx context.Context, email, purpose string) error
	PurgeExpired(ctx context.Context) error
}

// SessionStore is the minimal session storage the service requires.
type SessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	GetByToken(ctx context.Context, sessionToken string) (*domain.Session, error)
	DeleteByToken(ctx context.Context, sessionToken string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// TokenSigner issues the client-readable signed token.
type TokenSigner interface {
	Sign(userID, email string) (string, error)
}

// LoginResult carries everything a successful verification produces.
type LoginResult struct {
	User        *domain.User
	Session     *domain.Session
	SignedToken string
}

type Service interface {
	// SendOTP issues a 6-digit code for the email and returns the masked
	// address for client display. clientIP participates in rate limiting.
	SendOTP(ctx context.Context, req domain.SendOTPRequest, clientIP string) (string, error)
	// VerifyOTP consumes a code and opens a session.
	VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*LoginResult, error)
	// SendMagicLink issues a single-use login URL for the email.
	SendMagicLink(ctx context.Context, req domain.SendOTPRequest, clientIP string) (string, error)
	// VerifyMagicLink consumes a link token and opens a session.
	VerifyMagicLink(ctx context.Context, linkToken string) (*LoginResult, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
	// UpdateProfile changes the caller's mutable profile fields.
	UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error)
	// Session reports the server-side session backing the caller's cookie.
	// Unknown or expired tokens come back as ErrUnauthorized.
	Session(ctx context.Context, sessionToken string) (*domain.Session, error)
	Logout(ctx context.Context, sessionToken string) error
	// LogoutAll revokes every session the user holds, on every device.
	LogoutAll(ctx context.Context, userID string) error
}

// ServiceDeps holds the injected collaborators.
type ServiceDeps struct {
	UserRepo    UserStore
	OtpRepo     OtpStore
	SessionRepo SessionStore
	Mailer      smtp.Mailer
	Limiter     ratelimit.Limiter
	Signer      TokenSigner
	SessionDur  time.Duration
	// BaseURL is the public origin used to build magic-link URLs.
	BaseURL string
}

type service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) Service {
	return &service{deps: deps}
}

func (s *service) SendOTP(ctx context.Context, req domain.SendOTPRequest, clientIP string) (string, error) {
	u, err := s.admitAndResolveUser(ctx, req, clientIP)
	if err != nil {
		return "", err
	}

	code, err := generateOTP()
	if err != nil {
		return "", err
	}
	if err := s.issueCode(ctx, u, code, domain.PurposeOTP, otpExpiry); err != nil {
		return "", err
	}

	body := fmt.Sprintf(
		"Hello %s,\n\nYour login code is: %s\n\nIt expires in 5 minutes. If you did not request this code, ignore this email.\n\nThe Bookkita team",
		u.Username, code,
	)
	if err := s.deps.Mailer.SendEmail(u.Email, "Your Bookkita login code", body); err != nil {
		return "", fmt.Errorf("send otp email: %w", err)
	}
	return MaskEmail(u.Email), nil
}

func (s *service) VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*LoginResult, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	otp, err := s.deps.OtpRepo.GetActive(ctx, req.Email, req.OTPCode, domain.PurposeOTP)
	if err != nil {
		return nil, err
	}
	return s.consume(ctx, otp)
}

func (s *service) SendMagicLink(ctx context.Context, req domain.SendOTPRequest, clientIP string) (string, error) {
	u, err := s.admitAndResolveUser(ctx, req, clientIP)
	if err != nil {
		return "", err
	}

	linkToken, err := pkgtoken.NewLinkToken()
	if err != nil {
		return "", err
	}
	if err := s.issueCode(ctx, u, linkToken, domain.PurposeMagicLink, linkExpiry); err != nil {
		return "", err
	}

	link := fmt.Sprintf("%s/verify-login?token=%s", strings.TrimRight(s.deps.BaseURL, "/"), linkToken)
	body := fmt.Sprintf(
		"Hello %s,\n\nClick the link below to sign in:\n\n%s\n\nThe link expires in 15 minutes and can be used once.\n\nThe Bookkita team",
		u.Username, link,
	)
	if err := s.deps.Mailer.SendEmail(u.Email, "Your Bookkita login link", body); err != nil {
		return "", fmt.Errorf("send magic link email: %w", err)
	}
	return MaskEmail(u.Email), nil
}

func (s *service) VerifyMagicLink(ctx context.Context, linkToken string) (*LoginResult, error) {
	if linkToken == "" {
		return nil, fmt.Errorf("token required: %w", domain.ErrBadRequest)
	}
	otp, err := s.deps.OtpRepo.GetActiveByCode(ctx, linkToken, domain.PurposeMagicLink)
	if err != nil {
		return nil, err
	}
	return s.consume(ctx, otp)
}

func (s *service) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.deps.UserRepo.Get(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	if err := s.deps.UserRepo.Update(ctx, userID, map[string]interface{}{"name": req.Name}); err != nil {
		return nil, err
	}
	return s.deps.UserRepo.Get(ctx, userID)
}

func (s *service) Session(ctx context.Context, sessionToken string) (*domain.Session, error) {
	sess, err := s.deps.SessionRepo.GetByToken(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("session not found: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if sess.Expired(time.Now()) {
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	return sess, nil
}

func (s *service) Logout(ctx context.Context, sessionToken string) error {
	return s.deps.SessionRepo.DeleteByToken(ctx, sessionToken)
}

func (s *service) LogoutAll(ctx context.Context, userID string) error {
	return s.deps.SessionRepo.DeleteByUser(ctx, userID)
}

// admitAndResolveUser runs the shared front half of both issuance flows:
// input validation, the per-IP and per-email rate limit, and registration or
// login user resolution.
func (s *service) admitAndResolveUser(ctx context.Context, req domain.SendOTPRequest, clientIP string) (*domain.User, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}

	// IP first, then email. Both counters advance on an allowed request, so a
	// caller hammering one address burns their IP budget as well.
	for _, identifier := range []string{clientIP, req.Email} {
		ok, err := s.deps.Limiter.Allow(ctx, identifier)
		if err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("too many requests, try again in a minute: %w", domain.ErrRateLimited)
		}
	}

	if req.Username != nil {
		// Registration: both the email and the username must be free.
		if _, err := s.deps.UserRepo.GetByEmail(ctx, req.Email); err == nil {
			return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		if _, err := s.deps.UserRepo.GetByUsername(ctx, *req.Username); err == nil {
			return nil, fmt.Errorf("username already taken: %w", domain.ErrConflict)
		}
		u := &domain.User{
			UserID:    id.New(),
			Email:     req.Email,
			Username:  *req.Username,
			Name:      *req.Username,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.deps.UserRepo.Put(ctx, u); err != nil {
			return nil, err
		}
		return u, nil
	}

	u, err := s.deps.UserRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("email not registered: %w", domain.ErrNotFound)
	}
	return u, nil
}

// issueCode supersedes any live code for the email and persists the new one.
func (s *service) issueCode(ctx context.Context, u *domain.User, code, purpose string, expiry time.Duration) error {
	if err := s.deps.OtpRepo.DeleteUnusedByEmail(ctx, u.Email, purpose); err != nil {
		return fmt.Errorf("supersede existing codes: %w", err)
	}
	now := time.Now().UTC()
	return s.deps.OtpRepo.Put(ctx, &domain.OtpCode{
		OtpID:     id.New(),
		Code:      code,
		Email:     u.Email,
		UserID:    u.UserID,
		Purpose:   purpose,
		Used:      false,
		ExpiresAt: now.Add(expiry).Unix(),
		CreatedAt: now,
	})
}

// consume marks the record used (single-shot, enforced by the store) and
// opens a session with its signed token. Expired records are purged
// opportunistically on the way out.
func (s *service) consume(ctx context.Context, otp *domain.OtpCode) (*LoginResult, error) {
	if err := s.deps.OtpRepo.MarkUsed(ctx, otp.OtpID); err != nil {
		return nil, err
	}
	u, err := s.deps.UserRepo.Get(ctx, otp.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess := &domain.Session{
		SessionToken: pkgtoken.NewSessionToken(),
		UserID:       u.UserID,
		ExpiresAt:    now.Add(s.deps.SessionDur).Unix(),
		CreatedAt:    now,
	}
	if err := s.deps.SessionRepo.Put(ctx, sess); err != nil {
		return nil, err
	}
	signed, err := s.deps.Signer.Sign(u.UserID, u.Email)
	if err != nil {
		return nil, err
	}

	if err := s.deps.OtpRepo.PurgeExpired(ctx); err != nil {
		slog.Warn("failed to purge expired otp codes", "err", err)
	}

	return &LoginResult{User: u, Session: sess, SignedToken: signed}, nil
}

// generateOTP returns a uniformly random 6-digit decimal code, leading zeros
// included.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// MaskEmail hides most of the address for client display: the first three
// characters survive, then the domain. "alice@example.com" → "ali***example.com".
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at < 0 {
		return email
	}
	visible := email
	if len(visible) > 3 {
		visible = visible[:3]
	}
	return visible + "***" + email[at+1:]
}
