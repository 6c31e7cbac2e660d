package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports database and, when configured, Redis reachability.
type HealthHandler struct {
	db    Pinger
	redis func(ctx context.Context) error // nil when Redis is disabled
}

func NewHealthHandler(db Pinger, redisPing func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{db: db, redis: redisPing}
}

func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{"database": "ok"}
	if err := h.db.PingContext(ctx); err != nil {
		status = http.StatusServiceUnavailable
		checks["database"] = err.Error()
	}
	if h.redis != nil {
		checks["redis"] = "ok"
		if err := h.redis(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks["redis"] = err.Error()
		}
	}
	c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
}
