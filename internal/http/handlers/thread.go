package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/dealgrid/dealgrid-backend/internal/http/response"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
	"github.com/dealgrid/dealgrid-backend/internal/services"
)

type ThreadHandler struct {
	log     *logger.Logger
	threads services.ThreadService
}

func NewThreadHandler(log *logger.Logger, threads services.ThreadService) *ThreadHandler {
	return &ThreadHandler{
		log:     log.With("handler", "ThreadHandler"),
		threads: threads,
	}
}

type openThreadRequest struct {
	ContextType  string         `json:"context_type" binding:"required"`
	ContextID    string         `json:"context_id" binding:"required"`
	ContextTitle string         `json:"context_title"`
	ContextData  datatypes.JSON `json:"context_data"`
	PartyA       uuid.UUID      `json:"party_a" binding:"required"`
	PartyB       uuid.UUID      `json:"party_b" binding:"required"`
	SupportUser  *uuid.UUID     `json:"support_user"`
}

func (h *ThreadHandler) OpenThread(c *gin.Context) {
	var req openThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	thread, created, err := h.threads.OpenThread(c.Request.Context(), services.OpenThreadInput{
		ContextType:  req.ContextType,
		ContextID:    req.ContextID,
		ContextTitle: req.ContextTitle,
		ContextData:  req.ContextData,
		PartyA:       req.PartyA,
		PartyB:       req.PartyB,
		SupportUser:  req.SupportUser,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"thread": thread, "created": created})
}

func (h *ThreadHandler) ListThreads(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	threads, err := h.threads.ListThreads(c.Request.Context(), limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"threads": threads})
}

func (h *ThreadHandler) GetThread(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	limit := intQuery(c, "limit", 50)
	thread, msgs, err := h.threads.GetThread(c.Request.Context(), threadID, limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"thread": thread, "messages": msgs})
}

func (h *ThreadHandler) CloseThread(c *gin.Context) {
	threadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "BAD_REQUEST", err)
		return
	}
	thread, err := h.threads.Close(c.Request.Context(), threadID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"thread": thread})
}
