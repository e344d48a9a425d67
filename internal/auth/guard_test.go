package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/itplan/alice-worktime/internal/alice"
)

func turnWithToken(token string) *alice.IncomingTurn {
	turn := &alice.IncomingTurn{}
	if token != "" {
		turn.Session.User = &alice.User{UserID: "platform-id", AccessToken: token}
	}
	return turn
}

func TestAuthenticateValidToken(t *testing.T) {
	t.Parallel()
	guard := NewGuard("test-secret")

	token, err := guard.Sign("user-42", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	identity, err := guard.Authenticate(turnWithToken(token))
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if identity.UserID != "user-42" {
		t.Fatalf("expected user-42, got %s", identity.UserID)
	}
	if !identity.ExpiresAt.After(time.Now()) {
		t.Fatal("expected expiry in the future")
	}
}

func TestAuthenticateMissingToken(t *testing.T) {
	t.Parallel()
	guard := NewGuard("test-secret")

	if _, err := guard.Authenticate(turnWithToken("")); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}

	anonymous := &alice.IncomingTurn{}
	if _, err := guard.Authenticate(anonymous); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken for anonymous session, got %v", err)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	t.Parallel()
	guard := NewGuard("test-secret")

	past := func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := guard.WithClock(past).Sign("user-42", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := guard.Authenticate(turnWithToken(token)); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestAuthenticateWrongSecret(t *testing.T) {
	t.Parallel()
	token, err := NewGuard("other-secret").Sign("user-42", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	guard := NewGuard("test-secret")
	if _, err := guard.Authenticate(turnWithToken(token)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsUnsignedAlgorithm(t *testing.T) {
	t.Parallel()
	claims := jwt.MapClaims{
		"userId": "user-42",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	guard := NewGuard("test-secret")
	if _, err := guard.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for alg=none, got %v", err)
	}
}

func TestVerifyRequiresUserIDClaim(t *testing.T) {
	t.Parallel()
	secret := []byte("test-secret")
	claims := jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	guard := NewGuard("test-secret")
	if _, err := guard.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for missing userId, got %v", err)
	}
}

func TestVerifyRequiresExpiry(t *testing.T) {
	t.Parallel()
	secret := []byte("test-secret")
	claims := jwt.MapClaims{"userId": "user-42"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	guard := NewGuard("test-secret")
	if _, err := guard.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for missing exp, got %v", err)
	}
}
