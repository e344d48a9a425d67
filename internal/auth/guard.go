// Package auth verifies the long-lived access token the platform
// attaches to a linked session.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/itplan/alice-worktime/internal/alice"
)

var (
	ErrMissingToken = errors.New("turn carries no access token")
	ErrInvalidToken = errors.New("access token is invalid")
	ErrExpiredToken = errors.New("access token has expired")
)

// Context is the identity decoded from a verified token.
type Context struct {
	UserID    string
	ExpiresAt time.Time
}

// Guard checks HS256 signature and expiry. The clock is injected so
// expiry paths are testable.
type Guard struct {
	secret []byte
	now    func() time.Time
}

func NewGuard(secret string) *Guard {
	return &Guard{secret: []byte(secret), now: time.Now}
}

// WithClock returns a copy of the guard using the given clock.
func (g *Guard) WithClock(now func() time.Time) *Guard {
	clone := *g
	clone.now = now
	return &clone
}

// Authenticate extracts and verifies the session's access token.
// Failures map onto exactly one of the three sentinel errors; the
// webhook layer renders all of them as an authentication prompt.
func (g *Guard) Authenticate(turn *alice.IncomingTurn) (Context, error) {
	token := turn.AccessToken()
	if token == "" {
		return Context{}, ErrMissingToken
	}
	return g.Verify(token)
}

// Verify checks a raw token string.
func (g *Guard) Verify(token string) (Context, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(g.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Context{}, fmt.Errorf("%w: %w", ErrExpiredToken, err)
		}
		return Context{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	userID, _ := claims["userId"].(string)
	if userID == "" {
		return Context{}, fmt.Errorf("%w: missing userId claim", ErrInvalidToken)
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return Context{}, fmt.Errorf("%w: missing exp claim", ErrInvalidToken)
	}
	return Context{UserID: userID, ExpiresAt: exp.Time}, nil
}

// Sign issues a token for the given user. The token service exchanges
// authorization codes through this; tests mint fixtures with it.
func (g *Guard) Sign(userID string, ttl time.Duration) (string, error) {
	now := g.now()
	claims := jwt.MapClaims{
		"userId": userID,
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}
