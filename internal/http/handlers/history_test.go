package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rmacedo/custeio/internal/domain/history"
	"github.com/rmacedo/custeio/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type fakeHistory struct {
	listFn    func(ctx context.Context, limit int) ([]history.Entry, error)
	lastLimit int
}

func (f *fakeHistory) ListRecent(ctx context.Context, limit int) ([]history.Entry, error) {
	f.lastLimit = limit
	if f.listFn != nil {
		return f.listFn(ctx, limit)
	}
	return []history.Entry{}, nil
}

func historyRouter(repo handlers.HistoryReader) *gin.Engine {
	h := handlers.NewHistoryHandler(repo)

	r := gin.New()
	r.GET("/history", asAdmin(), h.List)
	return r
}

func TestHistoryDefaultsToTen(t *testing.T) {
	repo := &fakeHistory{
		listFn: func(ctx context.Context, limit int) ([]history.Entry, error) {
			return []history.Entry{{Date: "15/01/2026 10:00:00", User: "Maria", RecordCount: 42}}, nil
		},
	}

	r := historyRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	if repo.lastLimit != 10 {
		t.Fatalf("expected default limit 10, got %d", repo.lastLimit)
	}

	var body struct {
		Count int             `json:"count"`
		Items []history.Entry `json:"items"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if body.Count != 1 || body.Items[0].User != "Maria" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHistoryLimitValidationAndCap(t *testing.T) {
	repo := &fakeHistory{}
	r := historyRouter(repo)

	// invalid limits are rejected
	for _, q := range []string{"?limit=0", "?limit=-3", "?limit=abc"} {
		req := httptest.NewRequest(http.MethodGet, "/history"+q, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("limit %q: expected 400, got %d", q, w.Code)
		}
	}

	// oversized limits are capped, not rejected
	req := httptest.NewRequest(http.MethodGet, "/history?limit=500", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	if repo.lastLimit != 50 {
		t.Fatalf("expected the cap of 50, got %d", repo.lastLimit)
	}
}
