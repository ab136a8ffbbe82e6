package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rmacedo/custeio/internal/domain/pricing"
	"github.com/rmacedo/custeio/internal/domain/user"
	"github.com/rmacedo/custeio/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func reportRouter(users handlers.UserReader, store handlers.DatasetReader) *gin.Engine {
	h := handlers.NewReportHandler(users, store)

	r := gin.New()
	r.GET("/report", asUser(), h.Export)
	return r
}

func TestExportReturnsAPDFDownload(t *testing.T) {
	users := &fakeUsers{
		getByIDFn: func(ctx context.Context, id string) (user.User, error) {
			return user.User{ID: id, Nome: "João da Silva", Email: "joao@example.com"}, nil
		},
	}
	store := &fakeDataset{
		getFn: func(ctx context.Context) (pricing.Dataset, error) {
			return fixedDataset(), nil
		},
	}

	r := reportRouter(users, store)

	req := httptest.NewRequest(http.MethodGet, "/report?produto=Gasolina", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if got := w.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", got)
	}

	disposition := w.Header().Get("Content-Disposition")

	if !strings.Contains(disposition, "custeio_derivado_João_da_Silva_") {
		t.Fatalf("expected the named attachment, got %q", disposition)
	}

	if !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Fatalf("body is not a PDF")
	}
}

func TestExportWithEmptyDataset(t *testing.T) {
	users := &fakeUsers{
		getByIDFn: func(ctx context.Context, id string) (user.User, error) {
			return user.User{ID: id, Nome: "João"}, nil
		},
	}
	store := &fakeDataset{}

	r := reportRouter(users, store)

	req := httptest.NewRequest(http.MethodGet, "/report", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("an empty dataset still exports, got %d", w.Code)
	}
}
