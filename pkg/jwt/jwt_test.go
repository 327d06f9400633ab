package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateValidate(t *testing.T) {
	manager := NewManager("secret", time.Hour, "eventreg")
	token, err := manager.GenerateToken(42, "admin")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	id, err := claims.UserID()
	if err != nil || id != 42 || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %#v (id %d, err %v)", claims, id, err)
	}
}

func TestGenerateInvalid(t *testing.T) {
	manager := NewManager("secret", time.Hour, "eventreg")
	if _, err := manager.GenerateToken(0, "user"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
	if _, err := manager.GenerateToken(1, ""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestValidateMissing(t *testing.T) {
	manager := NewManager("secret", time.Hour, "eventreg")
	if _, err := manager.ValidateToken("  "); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	manager := NewManager("secret", time.Hour, "eventreg")
	valid, err := manager.GenerateToken(7, "user")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	expired, err := NewManager("secret", -time.Minute, "eventreg").GenerateToken(7, "user")
	if err != nil {
		t.Fatalf("generate expired token: %v", err)
	}

	otherSecret, err := NewManager("other", time.Hour, "eventreg").GenerateToken(7, "admin")
	if err != nil {
		t.Fatalf("generate foreign token: %v", err)
	}

	otherIssuer, err := NewManager("secret", time.Hour, "someone-else").GenerateToken(7, "admin")
	if err != nil {
		t.Fatalf("generate foreign issuer token: %v", err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			Issuer:    "eventreg",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("generate unsigned token: %v", err)
	}

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	cases := map[string]string{
		"malformed":    "not-a-token",
		"expired":      expired,
		"other secret": otherSecret,
		"other issuer": otherIssuer,
		"unsigned":     unsigned,
		"tampered":     tampered,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := manager.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected invalid token error, got %v", err)
			}
		})
	}
}

func TestTokenFromHeader(t *testing.T) {
	if _, err := TokenFromHeader("nope"); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
	if _, err := TokenFromHeader("Basic abc"); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
	if token, err := TokenFromHeader("Bearer token"); err != nil || token != "token" {
		t.Fatalf("expected token, got %s err %v", token, err)
	}
	if token, err := TokenFromHeader("bearer token"); err != nil || token != "token" {
		t.Fatalf("expected token, got %s err %v", token, err)
	}
}
