package utils

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", "42", "ana@example.com", "USER", 15)
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(tok.Exp) <= 14*time.Minute {
		t.Fatalf("expiry too early: %v", tok.Exp)
	}
	claims, err := ParseAccessToken("s3cret", tok.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Subject != "42" || claims.Role != "USER" || claims.Email != "ana@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseAccessTokenRejects(t *testing.T) {
	good, _ := NewAccessToken("s3cret", "42", "", "USER", 15)
	expired, _ := NewAccessToken("s3cret", "42", "", "USER", -1)
	noSub, _ := NewAccessToken("s3cret", "", "", "USER", 15)
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "42"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name   string
		secret string
		raw    string
	}{
		{"wrong secret", "other", good.Token},
		{"expired", "s3cret", expired.Token},
		{"missing subject", "s3cret", noSub.Token},
		{"alg none", "s3cret", none},
		{"garbage", "s3cret", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAccessToken(tt.secret, tt.raw); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(30)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewRefreshToken(30)
	if len(a.Raw) != 96 || a.Raw == b.Raw {
		t.Fatalf("unexpected raw tokens %q %q", a.Raw, b.Raw)
	}
	h := HashRefreshRaw(a.Raw)
	if len(h) != 64 || h != HashRefreshRaw(a.Raw) || strings.Contains(h, a.Raw) {
		t.Fatalf("unexpected hash %q", h)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("Secret1", 4)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword(hash, "Secret1") {
		t.Fatal("expected password to verify")
	}
	if VerifyPassword(hash, "secret1") {
		t.Fatal("wrong password verified")
	}
}

func TestPasswordStrong(t *testing.T) {
	tests := map[string]bool{
		"Secret1":  true,
		"Ab1cde":   true,
		"Ab1cd":    false,
		"secret1":  false,
		"Secreto":  false,
		"ÑANDÚ123": true,
	}
	for in, want := range tests {
		if got := PasswordStrong(in); got != want {
			t.Errorf("PasswordStrong(%q) = %v, want %v", in, got, want)
		}
	}
}
