package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	Issuer   = "auth_service"
	Audience = "user"

	// ClockTolerance absorbs drift between the issuing and
	// verifying processes.
	ClockTolerance = 5 * time.Second
)

type TokenType string

const (
	TypeAccess  TokenType = "access"
	TypeRefresh TokenType = "refresh"
)

// Verification failures are distinguishable for logging; callers must
// collapse them into a single unauthorized outcome at the boundary.
var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
	ErrIssuerMismatch   = errors.New("token issuer mismatch")
	ErrAudienceMismatch = errors.New("token audience mismatch")
	ErrWrongTokenType   = errors.New("wrong token type")
	ErrInvalidToken     = errors.New("invalid token")
)

type Claims struct {
	Email string    `json:"email"`
	Typ   TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// Codec mints and verifies signed, time-bounded tokens. The signing
// secret and the per-kind TTLs are fixed at construction; a Codec is
// safe for concurrent use.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewCodec(secret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (c *Codec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// Mint encodes a signed token for the given subject. The TTL is
// determined solely by typ. The jti claim makes every minted token
// unique even when subject and timestamps coincide.
func (c *Codec) Mint(userID, email string, typ TokenType) (string, error) {
	ttl := c.accessTTL
	if typ == TypeRefresh {
		ttl = c.refreshTTL
	}

	now := c.now()
	claims := Claims{
		Email: email,
		Typ:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks the signature, issuer, audience and expiry (with
// ClockTolerance leeway), then confirms the token kind matches
// expected. The kind check is deliberately separate from signature
// verification: a cryptographically valid token of the wrong kind is
// still rejected.
func (c *Codec) Verify(tokenStr string, expected TokenType) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithLeeway(ClockTolerance),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, classify(err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Typ != expected {
		return nil, ErrWrongTokenType
	}

	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuerMismatch
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrAudienceMismatch
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedToken
	default:
		return ErrInvalidToken
	}
}
