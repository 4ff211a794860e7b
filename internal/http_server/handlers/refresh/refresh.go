package refresh

import (
	"auth_service/internal/auth"
	resp "auth_service/internal/lib/api/response"
	"auth_service/internal/lib/cookies"
	sl "auth_service/internal/lib/logger"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	AccessToken string `json:"access_token"`
}

// New rotates the session pair. The refresh token is read from its
// cookie only, never from the request body.
func New(
	log *slog.Logger,
	authService *auth.Auth,
	jar *cookies.Jar,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.refresh.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		refreshToken, err := cookies.Refresh(r)
		if err != nil {
			log.Warn("refresh cookie missing")

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("missing session"))

			return
		}

		accessToken, newRefreshToken, err := authService.Refresh(r.Context(), refreshToken)
		if err != nil {
			log.Warn("failed to refresh tokens", sl.Err(err))

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("invalid token"))

			return
		}

		log.Info("Tokens refreshed successfully")

		jar.SetSession(w, accessToken, newRefreshToken)

		ResponseOK(w, r, accessToken)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request, accessToken string) {
	render.JSON(w, r, Response{
		Response:    resp.OK(),
		AccessToken: accessToken,
	})
}
