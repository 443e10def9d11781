package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/knpstore/sport-store/internal/validation"
)

func TestService_AuthenticateUnknownEmail(t *testing.T) {
	s := NewService(NewInMemoryRepository(nil), NewTokenIssuer(testSecret, 0))
	if _, err := s.Authenticate(context.Background(), "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestService_UpdateProfileKeepsUnsetFields(t *testing.T) {
	dob := time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)
	repo := NewInMemoryRepository([]User{{ID: "u-1", FullName: "An", Email: "an@example.com", DateOfBirth: &dob, Gender: "male"}})
	s := NewService(repo, NewTokenIssuer(testSecret, 0))

	g := validation.GenderOther
	updated, err := s.UpdateProfile(context.Background(), "u-1", ProfileInput{Gender: &g})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Gender != "other" || updated.DateOfBirth == nil || !updated.DateOfBirth.Equal(dob) {
		t.Fatalf("unexpected user %+v", updated)
	}
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	fixed := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return fixed }

	signed, err := issuer.Issue(User{ID: "u-9", Email: "u9@example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (any, error) { return []byte(testSecret), nil }); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims["sub"] != "u-9" || claims["email"] != "u9@example.com" {
		t.Fatalf("unexpected claims %v", claims)
	}
	if exp := int64(claims["exp"].(float64)); exp != fixed.Add(time.Hour).Unix() {
		t.Fatalf("unexpected exp %d", exp)
	}

	if _, err := NewTokenIssuer("", 0).Issue(User{ID: "u-9"}); err == nil {
		t.Fatalf("expected an error without a secret")
	}
}
