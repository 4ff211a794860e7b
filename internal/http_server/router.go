package httpserver

import (
	"log/slog"
	"net/http"

	"auth_service/internal/auth"
	"auth_service/internal/http_server/handlers/login"
	"auth_service/internal/http_server/handlers/logout"
	"auth_service/internal/http_server/handlers/profile"
	"auth_service/internal/http_server/handlers/refresh"
	"auth_service/internal/http_server/handlers/register"
	"auth_service/internal/lib/cookies"
	"auth_service/internal/lib/jwt"
	rateLimit "auth_service/internal/middleware/ratelimit"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
)

// NewRouter wires the auth endpoints. Only login passes the rate
// limiter gate; registration and refresh are unthrottled.
func NewRouter(
	log *slog.Logger,
	validate *validator.Validate,
	authService *auth.Auth,
	codec *jwt.Codec,
	jar *cookies.Jar,
	limiter *rateLimit.Limiter,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Post("/auth/register",
		register.New(log, validate, authService),
	)
	r.With(limiter.Login()).Post("/auth/login",
		login.New(log, validate, authService, jar),
	)
	r.Post("/auth/refresh",
		refresh.New(log, authService, jar),
	)
	r.Post("/auth/logout",
		logout.New(log, jar),
	)
	r.Get("/me",
		profile.New(log, codec),
	)

	return r
}
