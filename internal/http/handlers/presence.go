package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dealgrid/dealgrid-backend/internal/http/response"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
	"github.com/dealgrid/dealgrid-backend/internal/services"
)

type PresenceHandler struct {
	log      *logger.Logger
	presence services.PresenceService
}

func NewPresenceHandler(log *logger.Logger, presence services.PresenceService) *PresenceHandler {
	return &PresenceHandler{
		log:      log.With("handler", "PresenceHandler"),
		presence: presence,
	}
}

type setTypingRequest struct {
	IsTyping bool `json:"is_typing"`
}

func (h *PresenceHandler) SetTyping(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	var req setTypingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	if err := h.presence.SetTyping(c.Request.Context(), threadID, req.IsTyping); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"is_typing": req.IsTyping})
}

func (h *PresenceHandler) ListTyping(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	rows, err := h.presence.ListTyping(c.Request.Context(), threadID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"typing": rows})
}
