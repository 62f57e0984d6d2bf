package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the authenticated user id next to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func NewTokenIssuer(cfg JWTConfig) *TokenIssuer {
	return &TokenIssuer{
		secret:   []byte(cfg.Secret),
		lifetime: cfg.Lifetime(),
		now:      time.Now,
	}
}

// Issue returns a signed token for userID and its expiry.
func (t *TokenIssuer) Issue(userID int64) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.lifetime)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        GenerateUUIDString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify returns the user id carried by a valid token. Every failure,
// including expiry and a foreign signing method, is ErrInvalidToken.
func (t *TokenIssuer) Verify(tokenString string) (int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid || claims.UserID <= 0 {
		return 0, ErrInvalidToken
	}

	return claims.UserID, nil
}
