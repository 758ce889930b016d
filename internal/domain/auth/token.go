package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hrperf/internal/domain/apperr"
	"hrperf/internal/domain/identity"
)

type tokenClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 access tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenService) Issue(claims identity.Claims) (string, time.Time, error) {
	issued := t.now()
	expires := issued.Add(t.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID: claims.UserID,
		Role:   claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(issued),
		},
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Verify checks signature and expiry. Any failure is an identity error.
func (t *TokenService) Verify(raw string) (identity.Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return identity.Claims{}, apperr.Identity("invalid or expired token")
	}
	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return identity.Claims{}, apperr.Identity("invalid token")
	}
	return identity.Claims{UserID: claims.UserID, Role: claims.Role}, nil
}
