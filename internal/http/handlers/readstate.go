package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dealgrid/dealgrid-backend/internal/http/response"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
	"github.com/dealgrid/dealgrid-backend/internal/services"
)

type ReadStateHandler struct {
	log       *logger.Logger
	readstate services.ReadStateService
}

func NewReadStateHandler(log *logger.Logger, readstate services.ReadStateService) *ReadStateHandler {
	return &ReadStateHandler{
		log:       log.With("handler", "ReadStateHandler"),
		readstate: readstate,
	}
}

type markReadRequest struct {
	At *time.Time `json:"at"`
}

func (h *ReadStateHandler) MarkRead(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	var req markReadRequest
	_ = c.ShouldBindJSON(&req)
	var at time.Time
	if req.At != nil {
		at = *req.At
	}
	if err := h.readstate.MarkRead(c.Request.Context(), threadID, at); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"marked": true})
}

func (h *ReadStateHandler) UnreadCount(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	count, err := h.readstate.UnreadCount(c.Request.Context(), threadID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"unread": count})
}
