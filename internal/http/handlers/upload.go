package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rmacedo/custeio/internal/config"
	"github.com/rmacedo/custeio/internal/http/middlewares"
	"github.com/rmacedo/custeio/internal/ingest"
	"github.com/rmacedo/custeio/internal/observability"
	"github.com/rmacedo/custeio/internal/security"
	"github.com/gin-gonic/gin"
)

const msgUploadForbidden = "Apenas administradores podem carregar planilhas"

// Message display hints, in milliseconds. The sheet-structure error keeps
// its banner up longer because the admin has to read the sheet list.
const (
	hintLong  = 8000
	hintShort = 5000
	hintDeny  = 3000
)

type Ingestor interface {
	Ingest(ctx context.Context, file io.Reader, uploaderName string) (ingest.Result, error)
}

// Broadcaster pushes a fresh snapshot to this instance's live streams.
// Cross-instance fan-out rides on redis; this is the local fallback.
type Broadcaster interface {
	Broadcast(ctx context.Context)
}

type UploadHandler struct {
	svc   Ingestor
	users UserReader
	hub   Broadcaster
	prom  *observability.Prom
}

func NewUploadHandler(svc Ingestor, users UserReader, hub Broadcaster, prom *observability.Prom) *UploadHandler {
	return &UploadHandler{
		svc:   svc,
		users: users,
		hub:   hub,
		prom:  prom,
	}
}

func (h *UploadHandler) count(result string) {
	if h.prom != nil {
		h.prom.UploadResults.WithLabelValues(result).Inc()
	}
}

// Upload replaces the shared dataset from a multipart .xlsx file. The route
// already sits behind the admin gate; the policy check repeats here so the
// decision lives next to the write no matter how the route is wired.
func (h *UploadHandler) Upload(ctx *gin.Context) {
	role, _ := middlewares.RoleFromContext(ctx)

	if !security.IsAdmin(role) {
		h.count("forbidden")
		RespondError(ctx, http.StatusForbidden, "forbidden", msgUploadForbidden, gin.H{"messageTimeoutMs": hintDeny})
		return
	}

	fileHeader, err := ctx.FormFile("file")

	if err != nil {
		h.count("parse_error")
		RespondError(ctx, http.StatusBadRequest, "missing_file", "Nenhum arquivo enviado.", gin.H{"messageTimeoutMs": hintShort})
		return
	}

	file, err := fileHeader.Open()

	if err != nil {
		h.count("parse_error")
		RespondError(ctx, http.StatusBadRequest, "parse_error", "Erro ao ler o arquivo enviado.", gin.H{"messageTimeoutMs": hintShort})
		return
	}

	defer func() {
		_ = file.Close()
	}()

	uploader := h.uploaderName(ctx)

	start := time.Now()

	cctx, cancel := config.WithTimeout(30 * time.Second)
	defer cancel()

	res, err := h.svc.Ingest(cctx, file, uploader)

	if h.prom != nil {
		h.prom.UploadDuration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		h.respondIngestError(ctx, err)
		return
	}

	h.count("ok")

	if h.hub != nil {
		h.hub.Broadcast(ctx.Request.Context())
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":          fmt.Sprintf("✓ %d registros atualizados!", res.Count),
		"count":            res.Count,
		"lastUpdate":       res.LastUpdate,
		"messageTimeoutMs": hintShort,
	})
}

func (h *UploadHandler) respondIngestError(ctx *gin.Context, err error) {
	var missing *ingest.MissingSheetError

	if errors.As(err, &missing) {
		h.count("missing_sheet")
		msg := fmt.Sprintf("Erro: A planilha não contém a aba %q. Abas: %s",
			ingest.SheetName, strings.Join(missing.Sheets, ", "))
		RespondError(ctx, http.StatusBadRequest, "missing_sheet", msg, gin.H{"messageTimeoutMs": hintLong})
		return
	}

	if errors.Is(err, ingest.ErrNoValidRows) {
		h.count("no_valid_rows")
		RespondError(ctx, http.StatusBadRequest, "no_valid_rows", "Erro: Não foram encontrados dados válidos", gin.H{"messageTimeoutMs": hintShort})
		return
	}

	var storeErr *ingest.StoreError

	if errors.As(err, &storeErr) {
		h.count("store_error")
		RespondError(ctx, http.StatusInternalServerError, "store_error", "Erro ao salvar os dados. Tente novamente.", gin.H{"messageTimeoutMs": hintShort})
		return
	}

	h.count("parse_error")
	RespondError(ctx, http.StatusBadRequest, "parse_error", "Erro ao processar o arquivo. Verifique se é uma planilha .xlsx válida.", gin.H{"messageTimeoutMs": hintShort})
}

// uploaderName resolves the display name stamped on the dataset and the
// history entry. The profile's Nome wins; email is the fallback.
func (h *UploadHandler) uploaderName(ctx *gin.Context) string {
	id, ok := middlewares.UserIDFromContext(ctx)

	if !ok || id == "" {
		return "Administrador"
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)

	if err != nil {
		return "Administrador"
	}

	if u.Nome != "" {
		return u.Nome
	}

	return u.Email
}
