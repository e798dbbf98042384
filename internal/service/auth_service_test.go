package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Mrabbi3/ConceptsPro/internal/dto"
	"github.com/Mrabbi3/ConceptsPro/internal/model"
	"github.com/Mrabbi3/ConceptsPro/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func newAuthFixture() (*stubUserRepo, AuthService) {
	users := newStubUserRepo()
	svc := NewAuthService(users, testSecret, time.Hour)
	return users, svc
}

func registerRequest(email string) dto.RegisterRequest {
	return dto.RegisterRequest{
		Email:     email,
		Password:  "correct-horse",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
}

func TestRegister_DefaultsToStudent(t *testing.T) {
	_, svc := newAuthFixture()

	result, err := svc.Register(context.Background(), registerRequest("ada@example.edu"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.User.Role != model.RoleStudent {
		t.Fatalf("expected student role by default, got %s", result.User.Role)
	}
	if result.AccessToken == "" {
		t.Fatal("expected a token")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	_, svc := newAuthFixture()

	if _, err := svc.Register(context.Background(), registerRequest("ada@example.edu")); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(context.Background(), registerRequest("ada@example.edu"))
	if err == nil {
		t.Fatal("expected conflict")
	}
	if code := apperror.MapErrorToStatus(err); code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	_, svc := newAuthFixture()

	if _, err := svc.Register(context.Background(), registerRequest("ada@example.edu")); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "ada@example.edu", Password: "wrong"})
	if err == nil {
		t.Fatal("expected unauthorized")
	}
	if code := apperror.MapErrorToStatus(err); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}

	// Unknown email must fail with the same message as a bad password.
	_, err2 := svc.Login(context.Background(), dto.LoginRequest{Email: "nobody@example.edu", Password: "wrong"})
	if err2 == nil {
		t.Fatal("expected unauthorized for unknown email")
	}
	if err.Error() != err2.Error() {
		t.Fatalf("login failures must be indistinguishable: %q vs %q", err.Error(), err2.Error())
	}
}

func TestLogin_DisabledAccount(t *testing.T) {
	users, svc := newAuthFixture()

	result, err := svc.Register(context.Background(), registerRequest("ada@example.edu"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	stored := users.byEmail["ada@example.edu"]
	stored.IsSuspended = true
	_ = result

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "ada@example.edu", Password: "correct-horse"})
	if err == nil {
		t.Fatal("expected forbidden for suspended account")
	}
	if code := apperror.MapErrorToStatus(err); code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestLogin_TokenCarriesClaims(t *testing.T) {
	_, svc := newAuthFixture()

	result, err := svc.Register(context.Background(), registerRequest("ada@example.edu"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	token, err := jwt.ParseWithClaims(result.AccessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("parse token: %v", err)
	}

	claims := token.Claims.(*Claims)
	if claims.Subject != result.User.ID.String() {
		t.Fatalf("subject mismatch: %s", claims.Subject)
	}
	if claims.Email != "ada@example.edu" {
		t.Fatalf("email claim mismatch: %s", claims.Email)
	}
	if claims.Role != string(model.RoleStudent) {
		t.Fatalf("role claim mismatch: %s", claims.Role)
	}
}
