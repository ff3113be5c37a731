package handler

import (
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/taskify_api/internal/middleware"
	"github.com/GTDGit/taskify_api/internal/service"
	"github.com/GTDGit/taskify_api/internal/sse"
)

// SSEHandler streams alert events to admin dashboards.
type SSEHandler struct {
	hub          *sse.Hub
	alertService *service.AlertService
	pingEvery    time.Duration
}

// NewSSEHandler creates a new SSEHandler.
func NewSSEHandler(hub *sse.Hub, alertService *service.AlertService) *SSEHandler {
	return &SSEHandler{hub: hub, alertService: alertService, pingEvery: 30 * time.Second}
}

// Stream handles GET /v1/alerts/stream?token=<jwt>
// EventSource API cannot set custom headers, so the JWT middleware accepts the query param here.
func (h *SSEHandler) Stream(c *gin.Context) {
	owner := middleware.Owner(c)

	// Make sure the session exists and is seeded before events can flow.
	alerts, err := h.alertService.List(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}

	clientID := fmt.Sprintf("admin-%s-%d", owner, time.Now().UnixNano())

	// SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering

	client := h.hub.Register(clientID, owner)
	defer h.hub.Unregister(clientID)

	// Send initial connected event with the current alert set
	c.SSEvent("connected", gin.H{
		"clientId":  clientID,
		"alerts":    alerts,
		"timestamp": time.Now().Format(time.RFC3339),
	})
	c.Writer.Flush()

	log.Info().Str("client_id", clientID).Str("owner", owner).Msg("Alert SSE stream started")

	ticker := time.NewTicker(h.pingEvery)
	defer ticker.Stop()

	// Stream events
	c.Stream(func(w io.Writer) bool {
		select {
		case data, ok := <-client.Events:
			if !ok {
				return false
			}
			c.SSEvent("alert", string(data))
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
