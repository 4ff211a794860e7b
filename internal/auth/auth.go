package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"auth_service/internal/lib/jwt"
	sl "auth_service/internal/lib/logger"
	"auth_service/internal/models"
	"auth_service/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
)

// Auth orchestrates the access/refresh token pair: issuance on login,
// rotation on refresh. There is no server-side session state; a pair
// dies by cookie clearing on the client or by expiry.
type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	codec       *jwt.Codec
	events      EventPublisher
}

type UserSaver interface {
	SaveUser(ctx context.Context, email string, passHash []byte) (uid string, err error)
}

type UserProvider interface {
	User(ctx context.Context, email string) (models.User, error)
}

type EventPublisher interface {
	SendMessage(ctx context.Context, msg models.Message) error
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	codec *jwt.Codec,
	events EventPublisher,
) *Auth {
	return &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		codec:       codec,
		events:      events,
	}
}

// Login verifies the credentials and mints an access/refresh pair.
// Lookup miss and password mismatch are indistinguishable to callers.
func (a *Auth) Login(
	ctx context.Context,
	email, password string,
) (accessToken string, refreshToken string, err error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	email = normalizeEmail(email)

	user, err := a.usrProvider.User(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return "", "", ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))
		return "", "", ErrInvalidCredentials
	}

	accessToken, err = a.codec.Mint(user.ID, user.Email, jwt.TypeAccess)
	if err != nil {
		log.Error("failed to mint access token", sl.Err(err))
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err = a.codec.Mint(user.ID, user.Email, jwt.TypeRefresh)
	if err != nil {
		log.Error("failed to mint refresh token", sl.Err(err))
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in successfully", slog.String("uid", user.ID))

	return accessToken, refreshToken, nil
}

// Refresh verifies the incoming refresh token and mints a fresh pair
// (full rotation). Subject and email come from the verified claims,
// not from a store lookup; the old refresh token stays valid until its
// own expiry since there is no revocation store.
func (a *Auth) Refresh(
	ctx context.Context,
	refreshToken string,
) (string, string, error) {
	const op = "auth.Refresh"

	log := a.log.With(slog.String("op", op))

	claims, err := a.codec.Verify(refreshToken, jwt.TypeRefresh)
	if err != nil {
		log.Warn("refresh token rejected", sl.Err(err))
		return "", "", ErrInvalidToken
	}

	newAccess, err := a.codec.Mint(claims.Subject, claims.Email, jwt.TypeAccess)
	if err != nil {
		log.Error("failed to mint access token", sl.Err(err))
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	newRefresh, err := a.codec.Mint(claims.Subject, claims.Email, jwt.TypeRefresh)
	if err != nil {
		log.Error("failed to mint refresh token", sl.Err(err))
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("refresh successful", slog.String("uid", claims.Subject))

	return newAccess, newRefresh, nil
}

// RegisterNewUser hashes the password and stores the user keyed by
// lower-cased email. A registered event is published best effort; the
// registration itself never fails on a publish error.
func (a *Auth) RegisterNewUser(
	ctx context.Context,
	email string,
	pass string,
) (string, error) {
	const op = "auth.RegisterNewUser"

	log := a.log.With(slog.String("op", op))

	email = normalizeEmail(email)

	passHash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id, err := a.usrSaver.SaveUser(ctx, email, passHash)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists")
			return "", ErrUserExists
		}

		log.Error("failed to save user", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if a.events != nil {
		msg := models.Message{Email: email, Purpose: "user.registered"}
		if err := a.events.SendMessage(ctx, msg); err != nil {
			log.Warn("failed to publish registered event", sl.Err(err))
		}
	}

	log.Info("user registered", slog.String("uid", id))

	return id, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
