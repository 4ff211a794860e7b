package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"auth_service/internal/auth"
	"auth_service/internal/lib/jwt"
	"auth_service/internal/models"
	"auth_service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeStore struct {
	users      map[string]models.User
	lastLookup string
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]models.User{}}
}

func (s *fakeStore) SaveUser(_ context.Context, email string, passHash []byte) (string, error) {
	if _, ok := s.users[email]; ok {
		return "", storage.ErrUserExists
	}

	id := "uid-" + email
	s.users[email] = models.User{ID: id, Email: email, PassHash: passHash}

	return id, nil
}

func (s *fakeStore) User(_ context.Context, email string) (models.User, error) {
	s.lastLookup = email

	u, ok := s.users[email]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, nil
}

type failingPublisher struct{}

func (failingPublisher) SendMessage(context.Context, models.Message) error {
	return errors.New("broker down")
}

func newTestAuth(t *testing.T, store *fakeStore) (*auth.Auth, *jwt.Codec) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	codec := jwt.NewCodec("test-secret", time.Minute, 5*time.Minute)

	return auth.New(log, store, store, codec, nil), codec
}

func registerUser(t *testing.T, store *fakeStore, email, password string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	store.users[email] = models.User{ID: "uid-" + email, Email: email, PassHash: hash}
}

func TestLoginIssuesVerifiablePair(t *testing.T) {
	store := newFakeStore()
	registerUser(t, store, "user@test.com", "password1")
	a, codec := newTestAuth(t, store)

	access, refresh, err := a.Login(context.Background(), "user@test.com", "password1")
	require.NoError(t, err)

	accessClaims, err := codec.Verify(access, jwt.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "uid-user@test.com", accessClaims.Subject)
	assert.Equal(t, "user@test.com", accessClaims.Email)

	refreshClaims, err := codec.Verify(refresh, jwt.TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, accessClaims.Subject, refreshClaims.Subject)
}

func TestLoginNormalizesEmail(t *testing.T) {
	store := newFakeStore()
	registerUser(t, store, "user@test.com", "password1")
	a, _ := newTestAuth(t, store)

	_, _, err := a.Login(context.Background(), "  User@TEST.com ", "password1")
	require.NoError(t, err)
	assert.Equal(t, "user@test.com", store.lastLookup)
}

func TestLoginCollapsesCredentialFailures(t *testing.T) {
	store := newFakeStore()
	registerUser(t, store, "user@test.com", "password1")
	a, _ := newTestAuth(t, store)

	_, _, err := a.Login(context.Background(), "nobody@test.com", "password1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, _, err = a.Login(context.Background(), "user@test.com", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestRefreshRotatesPair(t *testing.T) {
	store := newFakeStore()
	registerUser(t, store, "user@test.com", "password1")
	a, codec := newTestAuth(t, store)

	oldAccess, oldRefresh, err := a.Login(context.Background(), "user@test.com", "password1")
	require.NoError(t, err)

	newAccess, newRefresh, err := a.Refresh(context.Background(), oldRefresh)
	require.NoError(t, err)

	newClaims, err := codec.Verify(newAccess, jwt.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "uid-user@test.com", newClaims.Subject)
	assert.Equal(t, "user@test.com", newClaims.Email)

	assert.NotEqual(t, oldRefresh, newRefresh)

	// rotation does not force-invalidate previously issued tokens
	_, err = codec.Verify(oldAccess, jwt.TypeAccess)
	assert.NoError(t, err)
	_, err = codec.Verify(oldRefresh, jwt.TypeRefresh)
	assert.NoError(t, err)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	store := newFakeStore()
	registerUser(t, store, "user@test.com", "password1")
	a, _ := newTestAuth(t, store)

	access, _, err := a.Login(context.Background(), "user@test.com", "password1")
	require.NoError(t, err)

	_, _, err = a.Refresh(context.Background(), access)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	store := newFakeStore()
	a, _ := newTestAuth(t, store)

	_, _, err := a.Refresh(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRegisterNewUser(t *testing.T) {
	store := newFakeStore()
	a, _ := newTestAuth(t, store)

	id, err := a.RegisterNewUser(context.Background(), "User@Test.com", "password1")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	// stored under the lower-cased key
	u, ok := store.users["user@test.com"]
	require.True(t, ok)
	assert.NoError(t, bcrypt.CompareHashAndPassword(u.PassHash, []byte("password1")))

	// duplicate registration is rejected case-insensitively
	_, err = a.RegisterNewUser(context.Background(), "uSeR@tEsT.cOm", "password1")
	assert.ErrorIs(t, err, auth.ErrUserExists)
}

func TestRegisterSurvivesPublisherFailure(t *testing.T) {
	store := newFakeStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	codec := jwt.NewCodec("test-secret", time.Minute, 5*time.Minute)
	a := auth.New(log, store, store, codec, failingPublisher{})

	_, err := a.RegisterNewUser(context.Background(), "user@test.com", "password1")
	assert.NoError(t, err)
}
