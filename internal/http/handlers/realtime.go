package handlers

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dealgrid/dealgrid-backend/internal/http/response"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
	"github.com/dealgrid/dealgrid-backend/internal/realtime"
	"github.com/dealgrid/dealgrid-backend/internal/requestdata"
	"github.com/dealgrid/dealgrid-backend/internal/services"
)

// RealtimeHandler owns the long-lived SSE connections. One connection per
// session; a new stream for the same session replaces the old one. Channel
// subscriptions are gated on thread participation.
type RealtimeHandler struct {
	log     *logger.Logger
	hub     *realtime.SSEHub
	threads services.ThreadService

	mu      sync.RWMutex
	clients map[uuid.UUID]*realtime.SSEClient // keyed by session id
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub, threads services.ThreadService) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		threads: threads,
		clients: make(map[uuid.UUID]*realtime.SSEClient),
	}
}

func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	sessionID := rd.SessionID
	if sessionID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session id"})
		return
	}

	h.mu.Lock()
	if existing, ok := h.clients[sessionID]; ok {
		h.hub.CloseClient(existing)
		delete(h.clients, sessionID)
	}
	client := h.hub.NewSSEClient(rd.UserID)
	h.clients[sessionID] = client
	h.mu.Unlock()

	h.log.Debug("SSE stream open", "userID", rd.UserID, "sessionID", sessionID)
	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.mu.Lock()
	delete(h.clients, sessionID)
	h.mu.Unlock()
	h.hub.CloseClient(client)
}

type channelRequest struct {
	Channel string `json:"channel" binding:"required"`
}

// threadIDFromChannel parses "thread:<uuid>"; only thread channels are
// subscribable from the outside.
func threadIDFromChannel(channel string) (uuid.UUID, bool) {
	const prefix = "thread:"
	if !strings.HasPrefix(channel, prefix) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimPrefix(channel, prefix))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func (h *RealtimeHandler) SSESubscribe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.SessionID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req channelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel"})
		return
	}
	threadID, ok := threadIDFromChannel(req.Channel)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel"})
		return
	}
	if err := h.threads.CanAccess(c.Request.Context(), threadID); err != nil {
		response.RespondServiceError(c, err)
		return
	}

	h.mu.RLock()
	client, exists := h.clients[rd.SessionID]
	h.mu.RUnlock()
	if !exists {
		c.JSON(http.StatusConflict, gin.H{"error": "no active SSE connection for this session"})
		return
	}

	h.hub.AddChannel(client, req.Channel)
	c.JSON(http.StatusOK, gin.H{"message": "subscribed", "channel": req.Channel})
}

func (h *RealtimeHandler) SSEUnsubscribe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.SessionID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req channelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel"})
		return
	}

	h.mu.RLock()
	client, exists := h.clients[rd.SessionID]
	h.mu.RUnlock()
	if !exists {
		c.JSON(http.StatusConflict, gin.H{"error": "no active SSE connection for this session"})
		return
	}

	h.hub.RemoveChannel(client, req.Channel)
	c.JSON(http.StatusOK, gin.H{"message": "unsubscribed", "channel": req.Channel})
}
