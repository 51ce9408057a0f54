package security

import (
	"testing"
	"time"
)

func newJWTManagerForTest() *JWTManager {
	return NewJWTManager("iss", "aud", "abcdefghijklmnopqrstuvwxyz123456", "abcdefghijklmnopqrstuvwxyz654321")
}

func TestSignAndParseAccessToken(t *testing.T) {
	m := newJWTManagerForTest()
	raw, err := m.SignAccessToken(42, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := m.ParseAccessToken(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	id, err := claims.UserID()
	if err != nil {
		t.Fatalf("user id: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected subject 42, got %d", id)
	}
	if claims.ID == "" {
		t.Fatal("expected non-empty jti")
	}
}

func TestAccessAndRefreshSecretsAreIsolated(t *testing.T) {
	m := newJWTManagerForTest()
	refresh, err := m.SignRefreshToken(7, time.Minute)
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}
	if _, err := m.ParseAccessToken(refresh); err == nil {
		t.Fatal("refresh token must not validate as access token")
	}
	if _, err := m.ParseRefreshToken(refresh); err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := newJWTManagerForTest()
	raw, err := m.SignAccessToken(1, -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.ParseAccessToken(raw); err == nil {
		t.Fatal("expected expired token to fail parsing")
	}
}
