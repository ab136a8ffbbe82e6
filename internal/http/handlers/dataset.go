package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rmacedo/custeio/internal/cache"
	"github.com/rmacedo/custeio/internal/config"
	"github.com/rmacedo/custeio/internal/domain/pricing"
	"github.com/gin-gonic/gin"
)

type DatasetReader interface {
	Get(ctx context.Context) (pricing.Dataset, error)
}

type DatasetHandler struct {
	store DatasetReader

	// distinct-value dropdown lists, memoized per lastUpdate
	options *cache.Cache
}

func NewDatasetHandler(store DatasetReader, options *cache.Cache) *DatasetHandler {
	return &DatasetHandler{
		store:   store,
		options: options,
	}
}

func filterFromQuery(ctx *gin.Context) pricing.Filter {
	return pricing.Filter{
		Term:    ctx.Query("term"),
		Local:   ctx.Query("local"),
		UF:      ctx.Query("uf"),
		Produto: ctx.Query("produto"),
	}
}

// Get returns the filtered view plus everything the dashboard derives from
// it: dropdown options (always from the unfiltered set), statistic cards
// (from the filtered set), and the update banner fields. The response
// carries an ETag so polling clients can skip unchanged payloads.
func (h *DatasetHandler) Get(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	ds, err := h.store.Get(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not load dataset")
		return
	}

	f := filterFromQuery(ctx)
	filtered := pricing.Apply(ds.Records, f)

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"registros":  filtered,
		"total":      len(ds.Records),
		"lastUpdate": ds.LastUpdate,
		"updatedBy":  ds.UpdatedBy,
		"options":    h.optionsFor(ds),
		"stats":      pricing.ComputeStats(filtered),
	})
}

// optionsFor recomputes the dropdown lists only when the dataset version
// changes; every request in between reuses the cached value.
func (h *DatasetHandler) optionsFor(ds pricing.Dataset) pricing.Options {
	if h.options == nil {
		return pricing.DistinctOptions(ds.Records)
	}

	key := "options:" + ds.LastUpdate

	if v, ok := h.options.Get(key); ok {
		if opts, ok := v.(pricing.Options); ok {
			return opts
		}
	}

	opts := pricing.DistinctOptions(ds.Records)
	h.options.Set(key, opts)

	return opts
}
