package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"trainup/training-app/internal/domain"
)

const testJWTSecret = "test-secret-not-for-production"

// TestRegisterAndLogin walks the full credential round trip: register,
// reject a duplicate email, fail a wrong password, then log in and check
// the JWT carries the uid and role claims the middleware expects.
func TestRegisterAndLogin(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo, testJWTSecret, time.Hour)

	user, err := svc.Register(context.Background(), "Sam", "sam@test.io", "correct horse", domain.RoleStudent)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.PasswordHash != "" {
		t.Error("returned user must not carry the password hash")
	}

	if _, err := svc.Register(context.Background(), "Sam Again", "sam@test.io", "whatever9", domain.RoleStudent); !errors.Is(err, ErrUserAlreadyExists) {
		t.Errorf("duplicate email error = %v, want ErrUserAlreadyExists", err)
	}
	if _, err := svc.Register(context.Background(), "Eve", "eve@test.io", "pw123456", domain.Role("admin")); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("bad role error = %v, want ErrInvalidRole", err)
	}

	if _, _, err := svc.Login(context.Background(), "sam@test.io", "wrong password"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("wrong password error = %v, want ErrAuthenticationFailed", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody@test.io", "correct horse"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("unknown email error = %v, want ErrAuthenticationFailed", err)
	}

	token, loggedIn, err := svc.Login(context.Background(), "sam@test.io", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("logged-in user = %s, want %s", loggedIn.ID.Hex(), user.ID.Hex())
	}

	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not parse: %v", err)
	}
	if claims.UserID != user.ID.Hex() {
		t.Errorf("uid claim = %q, want %q", claims.UserID, user.ID.Hex())
	}
	if claims.Role != domain.RoleStudent {
		t.Errorf("role claim = %q, want %q", claims.Role, domain.RoleStudent)
	}
	if claims.Issuer != "trainup" {
		t.Errorf("issuer = %q, want %q", claims.Issuer, "trainup")
	}
}
