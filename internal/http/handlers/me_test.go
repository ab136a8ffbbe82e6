package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rmacedo/custeio/internal/domain/user"
	"github.com/rmacedo/custeio/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func TestMeReturnsProfileWithoutPasswordHash(t *testing.T) {
	users := &fakeUsers{
		getByIDFn: func(ctx context.Context, id string) (user.User, error) {
			return user.User{
				ID:           id,
				Nome:         "João da Silva",
				Email:        "joao@example.com",
				PasswordHash: "$2a$10$secret",
				Role:         user.RoleUser,
			}, nil
		},
	}

	h := handlers.NewMeHandler(users)

	r := gin.New()
	r.GET("/me", asUser(), h.Me)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	body := w.Body.String()

	if !strings.Contains(body, "joao@example.com") {
		t.Fatalf("expected the profile in the body, got %s", body)
	}

	if strings.Contains(body, "secret") {
		t.Fatalf("the password hash must never leave the API: %s", body)
	}
}

func TestMeWithoutIdentity(t *testing.T) {
	h := handlers.NewMeHandler(&fakeUsers{})

	r := gin.New()
	r.GET("/me", h.Me)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
