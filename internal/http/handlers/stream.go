package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rmacedo/custeio/internal/config"
	"github.com/rmacedo/custeio/internal/domain/pricing"
	"github.com/rmacedo/custeio/internal/observability"
	"github.com/gin-gonic/gin"
)

type StreamHub interface {
	Subscribe() (<-chan pricing.Dataset, func())
}

type StreamHandler struct {
	store DatasetReader
	hub   StreamHub
	prom  *observability.Prom

	heartbeat time.Duration
}

func NewStreamHandler(store DatasetReader, hub StreamHub, prom *observability.Prom) *StreamHandler {
	return &StreamHandler{
		store:     store,
		hub:       hub,
		prom:      prom,
		heartbeat: 25 * time.Second,
	}
}

// Stream is the live dataset feed over server-sent events. Every message
// is a full snapshot: the client replaces its state wholesale, exactly as
// it does for the initial load. The first event fires immediately so a
// subscriber never starts blank.
func (h *StreamHandler) Stream(ctx *gin.Context) {
	flusher, ok := ctx.Writer.(http.Flusher)

	if !ok {
		RespondInternal(ctx, "Streaming unsupported")
		return
	}

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")

	sub, cancel := h.hub.Subscribe()
	defer cancel()

	if h.prom != nil {
		h.prom.SSESubscribers.Inc()
		defer h.prom.SSESubscribers.Dec()
	}

	// initial snapshot
	cctx, loadCancel := config.WithTimeout(3 * time.Second)
	ds, err := h.store.Get(cctx)
	loadCancel()

	if err == nil {
		writeEvent(ctx, flusher, ds)
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	done := ctx.Request.Context().Done()

	for {
		select {
		case <-done:
			return
		case snapshot, open := <-sub:
			if !open {
				return
			}
			writeEvent(ctx, flusher, snapshot)
		case <-ticker.C:
			// comment line keeps proxies from idling out the connection
			_, _ = ctx.Writer.WriteString(": ping\n\n")
			flusher.Flush()
		}
	}
}

func writeEvent(ctx *gin.Context, flusher http.Flusher, ds pricing.Dataset) {
	payload, err := json.Marshal(ds)

	if err != nil {
		return
	}

	_, _ = ctx.Writer.WriteString("event: dataset\ndata: ")
	_, _ = ctx.Writer.Write(payload)
	_, _ = ctx.Writer.WriteString("\n\n")
	flusher.Flush()
}
