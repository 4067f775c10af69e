package auth_test

import (
	"errors"
	"testing"

	"github.com/fornello/pizzeria/app/models"
	"github.com/fornello/pizzeria/pkg/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := auth.NewTokenManager("test-secret")

	token, err := tm.GenerateToken("64f0c2a1b3d4e5f6a7b8c9d0", "mario@example.com", models.RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := tm.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "64f0c2a1b3d4e5f6a7b8c9d0" {
		t.Errorf("user_id = %q", claims.UserID)
	}
	if claims.Email != "mario@example.com" {
		t.Errorf("email = %q", claims.Email)
	}
	if claims.Role != models.RoleAdmin {
		t.Errorf("role = %d, want admin", claims.Role)
	}
}

func TestTokenSignedWithOtherSecretRejected(t *testing.T) {
	issuer := auth.NewTokenManager("secret-a")
	verifier := auth.NewTokenManager("secret-b")

	token, err := issuer.GenerateToken("u1", "a@b.com", models.RoleStandard)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := verifier.ValidateToken(token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	tm := auth.NewTokenManager("test-secret")

	token, err := tm.GenerateToken("u1", "a@b.com", models.RoleStandard)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := tm.ValidateToken(tampered); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestGarbageTokensRejected(t *testing.T) {
	tm := auth.NewTokenManager("test-secret")

	for _, tok := range []string{"", "not-a-jwt", "a.b.c", "Bearer something"} {
		if _, err := tm.ValidateToken(tok); !errors.Is(err, auth.ErrInvalidToken) {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestEmptySecret(t *testing.T) {
	tm := auth.NewTokenManager("")

	if _, err := tm.GenerateToken("u1", "a@b.com", models.RoleStandard); !errors.Is(err, auth.ErrNoSecret) {
		t.Errorf("generate: expected ErrNoSecret, got %v", err)
	}
	if _, err := tm.ValidateToken("whatever"); !errors.Is(err, auth.ErrNoSecret) {
		t.Errorf("validate: expected ErrNoSecret, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash must not equal the plain text")
	}
	if !auth.CheckPassword(hash, "s3cret-pass") {
		t.Error("correct password rejected")
	}
	if auth.CheckPassword(hash, "wrong-pass") {
		t.Error("wrong password accepted")
	}
}
