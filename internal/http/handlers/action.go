package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dealgrid/dealgrid-backend/internal/http/response"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
	"github.com/dealgrid/dealgrid-backend/internal/services"
)

type ActionHandler struct {
	log     *logger.Logger
	actions services.ActionService
}

func NewActionHandler(log *logger.Logger, actions services.ActionService) *ActionHandler {
	return &ActionHandler{
		log:     log.With("handler", "ActionHandler"),
		actions: actions,
	}
}

type emitActionRequest struct {
	Action string `json:"action" binding:"required"`
	Note   string `json:"note"`
}

func (h *ActionHandler) EmitAction(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	var req emitActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	thread, msg, err := h.actions.EmitAction(c.Request.Context(), threadID, req.Action, req.Note)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"thread": thread, "message": msg})
}
