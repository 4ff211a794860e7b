package rateLimit

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	redisrepo "auth_service/internal/storage/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(log, redisrepo.NewWithClient(client), limit, window), mr
}

func doRequest(handler http.Handler, clientAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set("X-Forwarded-For", clientAddr)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	return w
}

func TestLoginGateBlocksSixthAttempt(t *testing.T) {
	limiter, mr := newTestLimiter(t, 5, time.Minute)

	handler := limiter.Login()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		w := doRequest(handler, "10.0.0.1")
		assert.Equal(t, http.StatusOK, w.Code, "attempt %d should pass", i+1)
	}

	w := doRequest(handler, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// another client key has its own budget
	w = doRequest(handler, "10.0.0.2")
	assert.Equal(t, http.StatusOK, w.Code)

	mr.FastForward(61 * time.Second)

	w = doRequest(handler, "10.0.0.1")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginGateFailsOpenWithoutStore(t *testing.T) {
	limiter, mr := newTestLimiter(t, 5, time.Minute)
	mr.Close()

	handler := limiter.Login()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := doRequest(handler, "10.0.0.1")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("User-Agent", "test-agent")
	assert.Equal(t, "203.0.113.7", ClientKey(req))

	req = httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set("User-Agent", "test-agent")
	assert.Equal(t, "test-agent", ClientKey(req))
}
