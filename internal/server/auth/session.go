// Package auth issues and verifies the stateless session tokens handed to
// clients after register/login.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultValidity is the session lifetime used when none is configured.
const DefaultValidity = 90 * 24 * time.Hour

// Claims are the registered claims plus the account id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// SessionIssuer signs HS256 tokens with a server secret.
type SessionIssuer struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

type Option func(*SessionIssuer)

// WithClock replaces time.Now, both for issuing and for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *SessionIssuer) { s.now = now }
}

func NewSessionIssuer(secret string, validity time.Duration, opts ...Option) (*SessionIssuer, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}
	if validity <= 0 {
		validity = DefaultValidity
	}
	s := &SessionIssuer{secret: []byte(secret), validity: validity, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue returns a token for accountID valid for the configured duration.
func (s *SessionIssuer) Issue(accountID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
		},
		UserID: accountID,
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// Verify returns the account id carried by token. Expired tokens yield
// common.ErrTokenExpired, everything else common.ErrInvalidToken.
func (s *SessionIssuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
