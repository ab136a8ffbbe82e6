package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rmacedo/custeio/internal/domain/pricing"
	"github.com/rmacedo/custeio/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type fakeHub struct {
	ch        chan pricing.Dataset
	cancelled bool
}

func newFakeHub() *fakeHub {
	return &fakeHub{ch: make(chan pricing.Dataset, 1)}
}

func (f *fakeHub) Subscribe() (<-chan pricing.Dataset, func()) {
	return f.ch, func() {
		f.cancelled = true
	}
}

func streamRouter(store handlers.DatasetReader, hub handlers.StreamHub) *gin.Engine {
	h := handlers.NewStreamHandler(store, hub, nil)

	r := gin.New()
	r.GET("/dataset/stream", asUser(), h.Stream)
	return r
}

func TestStreamSendsInitialSnapshotAndUpdates(t *testing.T) {
	store := &fakeDataset{
		getFn: func(ctx context.Context) (pricing.Dataset, error) {
			return fixedDataset(), nil
		},
	}
	hub := newFakeHub()

	r := streamRouter(store, hub)

	ctx, cancel := context.WithCancel(context.Background())

	req := httptest.NewRequest(http.MethodGet, "/dataset/stream", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	// push one update, then hang up
	hub.ch <- pricing.Dataset{
		Records:    []pricing.Record{},
		LastUpdate: "16/01/2026 08:00:00",
		UpdatedBy:  "Carlos",
	}

	time.AfterFunc(100*time.Millisecond, cancel)

	r.ServeHTTP(w, req)

	if got := w.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %q", got)
	}

	body := w.Body.String()

	// initial snapshot plus the pushed update, both full snapshots
	if strings.Count(body, "event: dataset") != 2 {
		t.Fatalf("expected 2 dataset events, got: %s", body)
	}
	if !strings.Contains(body, "15/01/2026 10:00:00") {
		t.Fatalf("initial snapshot missing: %s", body)
	}
	if !strings.Contains(body, "16/01/2026 08:00:00") {
		t.Fatalf("pushed update missing: %s", body)
	}

	if !hub.cancelled {
		t.Fatalf("expected the subscription to be cancelled on disconnect")
	}
}

func TestStreamEndsWhenHubCloses(t *testing.T) {
	store := &fakeDataset{}
	hub := newFakeHub()

	r := streamRouter(store, hub)

	req := httptest.NewRequest(http.MethodGet, "/dataset/stream", nil)
	w := httptest.NewRecorder()

	time.AfterFunc(50*time.Millisecond, func() { close(hub.ch) })

	done := make(chan struct{})

	go func() {
		defer close(done)
		r.ServeHTTP(w, req)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("handler did not return after the hub closed")
	}
}
