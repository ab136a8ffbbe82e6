package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rmacedo/custeio/internal/cache"
	"github.com/rmacedo/custeio/internal/domain/pricing"
	"github.com/rmacedo/custeio/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type fakeDataset struct {
	getFn func(ctx context.Context) (pricing.Dataset, error)
	calls int
}

func (f *fakeDataset) Get(ctx context.Context) (pricing.Dataset, error) {
	f.calls++
	if f.getFn != nil {
		return f.getFn(ctx)
	}
	return pricing.Dataset{Records: []pricing.Record{}}, nil
}

func fixedDataset() pricing.Dataset {
	return pricing.Dataset{
		Records: []pricing.Record{
			{Local: "Porto Alegre", UFDestino: "RS", Produto: "Diesel S10", ModalidadeVenda: "CIF", CusteioDerivado: 12.5},
			{Local: "Porto Alegre", UFDestino: "SC", Produto: "Gasolina", ModalidadeVenda: "FOB", CusteioDerivado: 10},
			{Local: "Itaqui", UFDestino: "MA", Produto: "Gasolina", ModalidadeVenda: "CIF", CusteioDerivado: 9.1},
		},
		LastUpdate: "15/01/2026 10:00:00",
		UpdatedBy:  "Maria",
	}
}

func datasetRouter(store handlers.DatasetReader) *gin.Engine {
	h := handlers.NewDatasetHandler(store, cache.New(time.Minute))

	r := gin.New()
	r.GET("/dataset", asUser(), h.Get)
	return r
}

type datasetResponse struct {
	Registros  []pricing.Record `json:"registros"`
	Total      int              `json:"total"`
	LastUpdate string           `json:"lastUpdate"`
	UpdatedBy  string           `json:"updatedBy"`
	Options    pricing.Options  `json:"options"`
	Stats      pricing.Stats    `json:"stats"`
}

func getDataset(t *testing.T, r *gin.Engine, path string) (*httptest.ResponseRecorder, datasetResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body datasetResponse

	if w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal response: %v", err)
		}
	}

	return w, body
}

func TestGetDatasetUnfiltered(t *testing.T) {
	store := &fakeDataset{
		getFn: func(ctx context.Context) (pricing.Dataset, error) {
			return fixedDataset(), nil
		},
	}

	r := datasetRouter(store)

	w, body := getDataset(t, r, "/dataset")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	if len(body.Registros) != 3 || body.Total != 3 {
		t.Fatalf("expected all 3 records, got %d (total %d)", len(body.Registros), body.Total)
	}

	if body.LastUpdate != "15/01/2026 10:00:00" || body.UpdatedBy != "Maria" {
		t.Fatalf("update banner fields missing: %+v", body)
	}

	if body.Stats.Registros != 3 || body.Stats.Locais != 2 {
		t.Fatalf("unexpected stats: %+v", body.Stats)
	}
}

func TestGetDatasetFilteredViewKeepsFullOptions(t *testing.T) {
	store := &fakeDataset{
		getFn: func(ctx context.Context) (pricing.Dataset, error) {
			return fixedDataset(), nil
		},
	}

	r := datasetRouter(store)

	w, body := getDataset(t, r, "/dataset?produto=Gasolina&local=Itaqui")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	if len(body.Registros) != 1 {
		t.Fatalf("expected 1 filtered record, got %d", len(body.Registros))
	}

	// total and dropdown options always reflect the unfiltered dataset
	if body.Total != 3 {
		t.Fatalf("expected total 3, got %d", body.Total)
	}
	if len(body.Options.Locais) != 2 || len(body.Options.Produtos) != 2 {
		t.Fatalf("options must come from the full set: %+v", body.Options)
	}

	// stats reflect the filtered view
	if body.Stats.Registros != 1 {
		t.Fatalf("expected filtered stats, got %+v", body.Stats)
	}
}

func TestGetDatasetTermFilter(t *testing.T) {
	store := &fakeDataset{
		getFn: func(ctx context.Context) (pricing.Dataset, error) {
			return fixedDataset(), nil
		},
	}

	r := datasetRouter(store)

	_, body := getDataset(t, r, "/dataset?term=porto")

	if len(body.Registros) != 2 {
		t.Fatalf("expected 2 records for term 'porto', got %d", len(body.Registros))
	}
}

func TestGetDatasetETagRoundTrip(t *testing.T) {
	store := &fakeDataset{
		getFn: func(ctx context.Context) (pricing.Dataset, error) {
			return fixedDataset(), nil
		},
	}

	r := datasetRouter(store)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/dataset", nil))

	etag := first.Header().Get("ETag")

	if etag == "" {
		t.Fatalf("expected an ETag header")
	}

	req := httptest.NewRequest(http.MethodGet, "/dataset", nil)
	req.Header.Set("If-None-Match", etag)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, req)

	if second.Code != http.StatusNotModified {
		t.Fatalf("expected 304 for a matching ETag, got %d", second.Code)
	}
}

func TestGetDatasetEmptySnapshot(t *testing.T) {
	store := &fakeDataset{}

	r := datasetRouter(store)

	w, body := getDataset(t, r, "/dataset")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	if body.Registros == nil {
		t.Fatalf("registros must serialize as an empty array, not null")
	}

	if len(body.Registros) != 0 || body.Total != 0 {
		t.Fatalf("expected an empty view, got %+v", body)
	}
}

func TestGetDatasetStoreFailure(t *testing.T) {
	store := &fakeDataset{
		getFn: func(ctx context.Context) (pricing.Dataset, error) {
			return pricing.Dataset{}, errors.New("db down")
		},
	}

	r := datasetRouter(store)

	w, _ := getDataset(t, r, "/dataset")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
