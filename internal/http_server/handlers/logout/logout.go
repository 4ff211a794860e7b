package logout

import (
	"log/slog"
	"net/http"

	resp "auth_service/internal/lib/api/response"
	"auth_service/internal/lib/cookies"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
}

// New instructs the client to discard both tokens. There is no
// server-side revocation; the tokens stay valid until their own
// expiry, which is why both TTLs are short.
func New(
	log *slog.Logger,
	jar *cookies.Jar,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logout.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		jar.ClearSession(w)

		log.Info("user logged out")

		ResponseOK(w, r)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, Response{
		Response: resp.OK(),
	})
}
