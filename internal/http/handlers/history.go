package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/rmacedo/custeio/internal/config"
	"github.com/rmacedo/custeio/internal/domain/history"
	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50
)

type HistoryReader interface {
	ListRecent(ctx context.Context, limit int) ([]history.Entry, error)
}

type HistoryHandler struct {
	repo HistoryReader
}

func NewHistoryHandler(repo HistoryReader) *HistoryHandler {
	return &HistoryHandler{repo: repo}
}

// List returns the newest upload entries; the admin panel shows ten.
func (h *HistoryHandler) List(ctx *gin.Context) {
	limit := defaultHistoryLimit

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)

		if err != nil || n < 1 {
			RespondBadRequest(ctx, "limit must be a positive integer", nil)
			return
		}

		limit = n
	}

	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	entries, err := h.repo.ListRecent(cctx, limit)

	if err != nil {
		RespondInternal(ctx, "Could not list history")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": entries,
		"count": len(entries),
	})
}
