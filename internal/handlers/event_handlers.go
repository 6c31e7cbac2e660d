package handlers

import (
	"io"
	"time"

	"gameclub_backend/internal/events"
	"gameclub_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Subscriber hands out event streams. *events.Hub satisfies it.
type Subscriber interface {
	Subscribe() (<-chan events.Event, func())
}

type EventHandler struct {
	hub       Subscriber
	keepAlive time.Duration
}

func NewEventHandler(hub Subscriber) *EventHandler {
	return &EventHandler{hub: hub, keepAlive: 25 * time.Second}
}

// Stream pushes consumables-updated events to the client as Server-Sent Events
// until the client disconnects.
func (h *EventHandler) Stream(c *gin.Context) {
	ch, cancel := h.hub.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Header("Content-Type", "text/event-stream")
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	utils.LogDebug("Event stream opened", map[string]interface{}{"client_ip": c.ClientIP()})
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case event, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(event.Type, event)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
	utils.LogDebug("Event stream closed", map[string]interface{}{"client_ip": c.ClientIP()})
}
