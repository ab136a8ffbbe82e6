package handlers

import (
	"net/http"
	"time"

	"github.com/rmacedo/custeio/internal/config"
	"github.com/rmacedo/custeio/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type MeHandler struct {
	users UserReader
}

func NewMeHandler(users UserReader) *MeHandler {
	return &MeHandler{users: users}
}

// Me returns the authenticated user's profile. The dashboard keeps this in
// state and the report exporter prints it on the PDF.
func (h *MeHandler) Me(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)

	if !ok || id == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)

	if err != nil {
		RespondInternal(ctx, "Could not load profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}
