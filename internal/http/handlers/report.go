package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rmacedo/custeio/internal/config"
	"github.com/rmacedo/custeio/internal/domain/pricing"
	"github.com/rmacedo/custeio/internal/http/middlewares"
	"github.com/rmacedo/custeio/internal/report"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	users UserReader
	store DatasetReader
	now   func() time.Time
}

func NewReportHandler(users UserReader, store DatasetReader) *ReportHandler {
	return &ReportHandler{
		users: users,
		store: store,
		now:   time.Now,
	}
}

// Export renders the requester's current filtered view as a PDF download.
// The same filter query params as GET /dataset apply, so the file matches
// exactly what the dashboard table shows.
func (h *ReportHandler) Export(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)

	if !ok || id == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	profile, err := h.users.GetByID(cctx, id)

	if err != nil {
		RespondInternal(ctx, "Could not load profile")
		return
	}

	ds, err := h.store.Get(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not load dataset")
		return
	}

	filtered := pricing.Apply(ds.Records, filterFromQuery(ctx))

	now := h.now()

	pdf, err := report.Build(profile, filtered, now)

	if err != nil {
		RespondInternal(ctx, "Erro ao gerar o relatório. Tente novamente.")
		return
	}

	name := report.FileName(profile.Nome, now)

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	ctx.Data(http.StatusOK, "application/pdf", pdf)
}
