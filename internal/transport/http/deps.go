package http

import (
	"github.com/bookkita-api/internal/application/auth"
	"github.com/bookkita-api/internal/application/book"
	jwtinfra "github.com/bookkita-api/internal/infrastructure/jwt"
	"github.com/bookkita-api/internal/infrastructure/smtp"
	"github.com/bookkita-api/internal/pkg/ratelimit"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    auth.UserStore
	OtpRepo     auth.OtpStore
	SessionRepo auth.SessionStore
	BookRepo    book.BookStore
	AssetStore  book.AssetStore
	Mailer      smtp.Mailer
	Limiter     ratelimit.Limiter
	JWTProvider *jwtinfra.Provider
}
