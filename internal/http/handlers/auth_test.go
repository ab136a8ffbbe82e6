package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rmacedo/custeio/internal/auth"
	"github.com/rmacedo/custeio/internal/config"
	"github.com/rmacedo/custeio/internal/domain/user"
	"github.com/rmacedo/custeio/internal/http/handlers"
	"github.com/rmacedo/custeio/internal/repo/postgres"
	"github.com/rmacedo/custeio/internal/security"
	"github.com/gin-gonic/gin"
)

func testJWT() *auth.Manager {
	return auth.NewManager("test-secret", 15*time.Minute, 24*time.Hour)
}

func loginRouter(users handlers.UserReader) *gin.Engine {
	h := handlers.NewAuthHandler(users, testJWT(), nil, config.Config{Env: "dev"})

	r := gin.New()
	r.POST("/auth/login", h.Login)
	return r
}

func TestLoginUnknownEmail(t *testing.T) {
	users := &fakeUsers{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			return user.User{}, postgres.ErrUserNotFound
		},
	}

	r := loginRouter(users)

	w := postJSON(t, r, "/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever",
	})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	if !strings.Contains(w.Body.String(), "Email ou senha incorretos") {
		t.Fatalf("expected the credentials message, got %s", w.Body.String())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := security.HashPassword("the-right-one")

	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	users := &fakeUsers{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			return user.User{ID: "u1", Email: email, PasswordHash: hash}, nil
		},
	}

	r := loginRouter(users)

	w := postJSON(t, r, "/auth/login", map[string]string{
		"email":    "joao@example.com",
		"password": "the-wrong-one",
	})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	// the wrong-password answer is indistinguishable from an unknown email
	if !strings.Contains(w.Body.String(), "Email ou senha incorretos") {
		t.Fatalf("expected the credentials message, got %s", w.Body.String())
	}
}

func TestLoginLookupFailure(t *testing.T) {
	users := &fakeUsers{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			return user.User{}, errors.New("db down")
		},
	}

	r := loginRouter(users)

	w := postJSON(t, r, "/auth/login", map[string]string{
		"email":    "joao@example.com",
		"password": "segredo123",
	})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}

	if !strings.Contains(w.Body.String(), "Erro ao fazer login") {
		t.Fatalf("expected the generic failure message, got %s", w.Body.String())
	}
}

func TestLoginValidation(t *testing.T) {
	users := &fakeUsers{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			t.Fatalf("an invalid body must not reach the store")
			return user.User{}, nil
		},
	}

	r := loginRouter(users)

	cases := []struct {
		name string
		body map[string]string
	}{
		{name: "missing password", body: map[string]string{"email": "joao@example.com"}},
		{name: "bad email", body: map[string]string{"email": "nope", "password": "x"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, r, "/auth/login", tc.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
		})
	}
}
