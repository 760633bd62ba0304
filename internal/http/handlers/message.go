package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/dealgrid/dealgrid-backend/internal/http/response"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
	"github.com/dealgrid/dealgrid-backend/internal/services"
)

type MessageHandler struct {
	log      *logger.Logger
	messages services.MessageService
}

func NewMessageHandler(log *logger.Logger, messages services.MessageService) *MessageHandler {
	return &MessageHandler{
		log:      log.With("handler", "MessageHandler"),
		messages: messages,
	}
}

func intQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

type sendMessageRequest struct {
	Kind     string         `json:"kind"`
	Body     string         `json:"body" binding:"required"`
	Metadata datatypes.JSON `json:"metadata"`
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	msg, err := h.messages.Send(c.Request.Context(), threadID, req.Kind, req.Body, req.Metadata)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": msg})
}

func (h *MessageHandler) ListMessages(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	msgs, err := h.messages.List(c.Request.Context(), threadID, limit, offset)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"messages": msgs})
}

func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	messageID, err := uuid.Parse(c.Param("message_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	if err := h.messages.SoftDelete(c.Request.Context(), threadID, messageID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
