package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"replydesk/errors"
)

const tokenIssuer = "replydesk"

// SessionClaims is what a signed session token carries.
type SessionClaims struct {
	Operator string   `json:"operator"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates session tokens with a secret loaded
// from configuration. HS256 only.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Generate issues a signed token for one operator session.
func (m *TokenManager) Generate(operator string, roles []string) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		Operator: operator,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate checks the signature and expiry of a token string. Expired or
// tampered tokens come back as ErrSessionExpired so callers can force a
// fresh login without inspecting jwt internals.
func (m *TokenManager) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrSessionExpired, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.ErrSessionExpired
	}
	return claims, nil
}
