package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	signer, err := NewSigner("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	token, err := signer.Issue(42, 3, "Admin", "admin@medicloud.example")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.RoleID != 3 || claims.Email != "admin@medicloud.example" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	id, err := claims.AccountID()
	if err != nil || id != 42 {
		t.Fatalf("AccountID = %d, %v", id, err)
	}
}

func TestVerifyExpiredDistinctFromMalformed(t *testing.T) {
	base := time.Now()
	signer, err := NewSigner("test-secret", time.Minute)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	signer.WithClock(func() time.Time { return base })

	token, err := signer.Issue(1, 0, "u", "u@acme.example")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	signer.WithClock(func() time.Time { return base.Add(2 * time.Minute) })
	if _, err := signer.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	if _, err := signer.Verify("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	a, _ := NewSigner("secret-a", time.Hour)
	b, _ := NewSigner("secret-b", time.Hour)

	token, err := a.Issue(1, 1, "m", "m@acme.example")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := b.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestNewSignerRequiresSecret(t *testing.T) {
	if _, err := NewSigner("", time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
