package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/gin-gonic/gin"

    "github.com/GTDGit/taskify_api/internal/utils"
)

var startTime = time.Now()

// Pinger is a dependency whose liveness is reported by /v1/health.
type Pinger interface {
    Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler provides health endpoint.
type HealthHandler struct {
    db    Pinger
    redis Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db, redis Pinger) *HealthHandler {
    return &HealthHandler{db: db, redis: redis}
}

// GetHealth responds with service, database and Redis status.
// A down dependency yields 503 with the same body shape.
func (h *HealthHandler) GetHealth(c *gin.Context) {
    ctx := c.Request.Context()
    dbStatus := status(h.db.Ping(ctx))
    redisStatus := status(h.redis.Ping(ctx))

    data := gin.H{
        "status":   "healthy",
        "version":  "1.0.0",
        "uptime":   int(time.Since(startTime).Seconds()),
        "database": gin.H{"status": dbStatus},
        "redis":    gin.H{"status": redisStatus},
    }

    if dbStatus != "connected" || redisStatus != "connected" {
        data["status"] = "degraded"
        c.JSON(http.StatusServiceUnavailable, utils.Response{
            Success: false,
            Code:    http.StatusServiceUnavailable,
            Message: "Service is degraded",
            Data:    data,
            Error:   &utils.ErrorInfo{Code: "SERVICE_UNAVAILABLE", Message: "A dependency is unavailable"},
            Meta:    utils.Meta{RequestID: c.GetString("request_id"), Timestamp: time.Now().Format(time.RFC3339)},
        })
        return
    }

    utils.Success(c, 200, "Service is healthy", data)
}

func status(err error) string {
    if err != nil {
        return "disconnected"
    }
    return "connected"
}
