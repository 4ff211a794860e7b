package profile

import (
	"log/slog"
	"net/http"

	"auth_service/internal/lib/cookies"
	"auth_service/internal/lib/jwt"
	resp "auth_service/internal/lib/api/response"
	sl "auth_service/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Typ   string `json:"typ"`
	Iss   string `json:"iss"`
	Aud   string `json:"aud"`
	Iat   int64  `json:"iat"`
	Exp   int64  `json:"exp"`
}

// New returns the decoded claims of the caller's access token. Any
// verification failure, including a refresh token presented in place
// of an access token, yields the same unauthorized response.
func New(
	log *slog.Logger,
	codec *jwt.Codec,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profile.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		token, err := cookies.Access(r)
		if err != nil {
			log.Warn("access cookie missing")

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("unauthorized"))

			return
		}

		claims, err := codec.Verify(token, jwt.TypeAccess)
		if err != nil {
			log.Warn("access token rejected", sl.Err(err))

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("unauthorized"))

			return
		}

		render.JSON(w, r, Response{
			Sub:   claims.Subject,
			Email: claims.Email,
			Typ:   string(claims.Typ),
			Iss:   claims.Issuer,
			Aud:   claims.Audience[0],
			Iat:   claims.IssuedAt.Unix(),
			Exp:   claims.ExpiresAt.Unix(),
		})
	}
}
