package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rmacedo/custeio/internal/config"
	"github.com/rmacedo/custeio/internal/domain/request"
	"github.com/rmacedo/custeio/internal/domain/user"
	"github.com/rmacedo/custeio/internal/http/middlewares"
	"github.com/rmacedo/custeio/internal/repo/postgres"
	"github.com/rmacedo/custeio/internal/security"
	"github.com/gin-gonic/gin"
)

// Wording shown by the registration form and the admin panel.
const (
	msgRequestSent     = "Solicitação enviada! Aguarde a aprovação do administrador."
	msgPasswordTooWeak = "A senha deve ter pelo menos 6 caracteres"
	msgEmailTaken      = "Este email já está cadastrado no sistema."
)

type RequestStore interface {
	Create(ctx context.Context, req request.Request) error
	List(ctx context.Context) ([]request.Request, error)
	GetByID(ctx context.Context, id string) (request.Request, error)
	Delete(ctx context.Context, id string) error
	Approve(ctx context.Context, req request.Request, passwordHash string) (user.User, error)
}

type RequestsHandler struct {
	repo RequestStore
}

func NewRequestsHandler(repo RequestStore) *RequestsHandler {
	return &RequestsHandler{repo: repo}
}

// Create accepts a public sign-up submission. Nothing grants access here;
// the request sits pending until an admin acts on it.
func (h *RequestsHandler) Create(ctx *gin.Context) {
	var req request.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// checked here rather than via binding so the form sees this exact text
	if len(req.Password) < 6 {
		RespondError(ctx, http.StatusBadRequest, "weak_password", msgPasswordTooWeak, nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	r := request.NewFromCreateRequest(req)

	if err := h.repo.Create(cctx, r); err != nil {
		RespondInternal(ctx, "Erro ao enviar solicitação. Tente novamente.")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"id":      r.ID,
		"status":  r.Status,
		"message": msgRequestSent,
	})
}

func (h *RequestsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	reqs, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list requests")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": reqs,
		"count": len(reqs),
	})
}

// Approve promotes a pending request into an account. On a duplicate email
// nothing is written and the request stays pending, so the admin can ask
// the requester for another address and retry.
func (h *RequestsHandler) Approve(ctx *gin.Context) {
	role, _ := middlewares.RoleFromContext(ctx)

	if !security.IsAdmin(role) {
		RespondForbidden(ctx, "forbidden", "Admin role required")
		return
	}

	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	req, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, request.ErrNotFound) {
			RespondNotFound(ctx, "Solicitação não encontrada")
			return
		}
		RespondInternal(ctx, "Could not load request")
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not approve request")
		return
	}

	u, err := h.repo.Approve(cctx, req, hash)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailAlreadyUsed) {
			RespondConflict(ctx, "email_taken", msgEmailTaken)
			return
		}
		if errors.Is(err, request.ErrNotFound) {
			// someone else consumed it between the read and the tx
			RespondNotFound(ctx, "Solicitação não encontrada")
			return
		}
		RespondInternal(ctx, "Could not approve request")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user":    u,
		"message": "Usuário aprovado com sucesso!",
	})
}

// Reject deletes the request outright. The dashboard asks the admin to
// confirm first, and the API requires the same confirmation explicitly.
func (h *RequestsHandler) Reject(ctx *gin.Context) {
	role, _ := middlewares.RoleFromContext(ctx)

	if !security.IsAdmin(role) {
		RespondForbidden(ctx, "forbidden", "Admin role required")
		return
	}

	if ctx.Query("confirm") != "true" {
		RespondError(ctx, http.StatusBadRequest, "confirm_required", "Rejeitar esta solicitação? Reenvie com confirm=true.", nil)
		return
	}

	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, request.ErrNotFound) {
			RespondNotFound(ctx, "Solicitação não encontrada")
			return
		}
		RespondInternal(ctx, "Could not reject request")
		return
	}

	ctx.Status(http.StatusNoContent)
}
