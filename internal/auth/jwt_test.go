package auth

import (
	"errors"
	"testing"
	"time"

	"jobboard-backend/internal/models"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	user := &models.User{ID: 42, Email: "a@b.test", Roles: []models.Role{{Name: models.RoleCompany}}}

	tok, err := issuer.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	claims, err := issuer.ParseToken(tok)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != 42 || claims.Subject != "42" || len(claims.Roles) != 1 || claims.Roles[0] != models.RoleCompany {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Minute)
	issued := time.Now().Add(-2 * time.Hour)
	issuer.now = func() time.Time { return issued }

	tok, err := issuer.GenerateToken(&models.User{ID: 1})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	issuer.now = time.Now
	if _, err := issuer.ParseToken(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	tok, _ := NewTokenIssuer(testSecret, time.Hour).GenerateToken(&models.User{ID: 1})
	other := NewTokenIssuer("ffffffffffffffffffffffffffffffff", time.Hour)
	if _, err := other.ParseToken(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if _, err := other.ParseToken("garbage"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for garbage, got %v", err)
	}
}
