package token

import (
	"errors"
	"testing"
	"time"
)

func newTestIssuer(t *testing.T, ttl time.Duration) *Issuer {
	t.Helper()
	i, err := NewIssuer("test-key", "test-secret", ttl)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return i
}

func TestMintAndVerify(t *testing.T) {
	i := newTestIssuer(t, time.Hour)

	grants := Grants{RoomJoin: true, Room: "front-desk", CanPublish: true, CanSubscribe: true}
	signed, err := i.Mint("user-abc123", "Dana", grants)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if signed == "" {
		t.Fatal("empty token")
	}

	identity, got, err := i.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity != "user-abc123" {
		t.Errorf("identity = %q", identity)
	}
	if got != grants {
		t.Errorf("grants = %+v, want %+v", got, grants)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	i := newTestIssuer(t, time.Hour)
	i.ttl = -time.Minute

	signed, err := i.Mint("user-abc123", "Dana", Grants{Room: "front-desk"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	_, _, err = i.Verify(signed)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("got %v, want ErrExpiredToken", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	i := newTestIssuer(t, time.Hour)
	other := newTestIssuer(t, time.Hour)
	other.secret = []byte("different-secret")

	signed, err := i.Mint("user-abc123", "Dana", Grants{Room: "front-desk"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, _, err := other.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	i := newTestIssuer(t, time.Hour)
	if _, _, err := i.Verify("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestNewIssuerRequiresCredentials(t *testing.T) {
	if _, err := NewIssuer("", "secret", 0); err == nil {
		t.Error("expected error for empty api key")
	}
	if _, err := NewIssuer("key", "", 0); err == nil {
		t.Error("expected error for empty secret")
	}
}
