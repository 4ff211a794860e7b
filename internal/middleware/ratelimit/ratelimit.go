package rateLimit

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	resp "auth_service/internal/lib/api/response"
	sl "auth_service/internal/lib/logger"

	"github.com/go-chi/render"
)

const keyPrefix = "rate:login:"

// CounterStore is the shared external counter backing the gate. It
// must provide atomic increment semantics so the gate stays correct
// under concurrent requests from many server instances.
type CounterStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

type Limiter struct {
	log    *slog.Logger
	store  CounterStore
	limit  int
	window time.Duration
}

func New(log *slog.Logger, store CounterStore, limit int, window time.Duration) *Limiter {
	return &Limiter{
		log:    log,
		store:  store,
		limit:  limit,
		window: window,
	}
}

// Login throttles login attempts per client key within a fixed time
// window. A counter-store failure lets the request through: login
// availability must not hinge on the rate backend.
func (l *Limiter) Login() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			count, err := l.store.IncrementWindow(r.Context(), keyPrefix+ClientKey(r), l.window)
			if err != nil {
				l.log.Warn("rate counter unavailable", sl.Err(err))

				next.ServeHTTP(w, r)
				return
			}

			if count > int64(l.limit) {
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, resp.Error("too many requests"))

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey derives the rate key from the first comma-separated token
// of X-Forwarded-For, falling back to the user agent. Clients with
// neither header share one bucket.
func ClientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}

	return r.Header.Get("User-Agent")
}
