package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/bookkita-api/internal/application/auth"
	"github.com/bookkita-api/internal/application/book"
	"github.com/bookkita-api/internal/config"
	"github.com/bookkita-api/internal/transport/http/handler"
	appmiddleware "github.com/bookkita-api/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, a transport backstop on the public auth
	// endpoints; the 3-per-minute issuance limit is enforced in the service.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:    deps.UserRepo,
		OtpRepo:     deps.OtpRepo,
		SessionRepo: deps.SessionRepo,
		Mailer:      deps.Mailer,
		Limiter:     deps.Limiter,
		Signer:      deps.JWTProvider,
		SessionDur:  cfg.TokenExpiry(),
		BaseURL:     cfg.PublicBaseURL,
	})
	bookSvc := book.NewService(deps.BookRepo, deps.AssetStore)

	authH := handler.NewAuthHandler(authSvc, cfg.IsProduction())
	bookH := handler.NewBookHandler(bookSvc)
	healthH := handler.NewHealthHandler()
	pages := handler.NewPageHandler()

	requireAuth := appmiddleware.RequireAuth(deps.JWTProvider)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.Route("/auth", func(r chi.Router) {
			r.With(sensitiveRL.Limit).Post("/send-otp", authH.SendOTP)
			r.With(sensitiveRL.Limit).Post("/verify-otp", authH.VerifyOTP)
			r.With(sensitiveRL.Limit).Post("/send-magic-link", authH.SendMagicLink)
			r.With(sensitiveRL.Limit).Get("/verify-login", authH.VerifyLogin)
			r.Get("/session", authH.Session)
			r.Post("/logout", authH.Logout)
			r.With(requireAuth).Post("/logout-all", authH.LogoutAll)
			r.With(requireAuth).Get("/me", authH.Me)
			r.With(requireAuth).Put("/me", authH.UpdateMe)
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/", bookH.List)
			r.With(requireAuth).Post("/", bookH.Create)
			r.Get("/{id}", bookH.Get)
			r.With(requireAuth).Delete("/{id}", bookH.Delete)
			r.With(requireAuth).Get("/{id}/download", bookH.Download)
		})
	})

	// Page routes behind the route guard.
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.Guard(deps.JWTProvider))

		r.Get("/", pages.Page("Bookkita"))
		r.Get("/auth", pages.Page("Sign in"))
		r.Get("/login", pages.Page("Sign in"))
		r.Get("/register", pages.Page("Create account"))
		r.Get("/verify-login", pages.Page("Verifying login"))
		r.Get("/dashboard", pages.Page("Dashboard"))
		r.Get("/profile", pages.Page("Profile"))
		r.Get("/settings", pages.Page("Settings"))
	})

	return r
}
