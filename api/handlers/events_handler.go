package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"logistics-admin-service/realtime"
)

const eventBuffer = 64

// ChangeFeed is the subscription side of realtime.Hub.
type ChangeFeed interface {
	Subscribe(buffer int) *realtime.Client
	Unsubscribe(clientID string)
}

// EventsHandler streams row changes to the admin dashboard over SSE.
type EventsHandler struct {
	feed      ChangeFeed
	logger    *zap.Logger
	heartbeat time.Duration
}

func NewEventsHandler(feed ChangeFeed, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{feed: feed, logger: logger, heartbeat: 30 * time.Second}
}

// Stream handles GET /api/admin/events?token=xxx
func (h *EventsHandler) Stream(c *gin.Context) {
	client := h.feed.Subscribe(eventBuffer)
	defer h.feed.Unsubscribe(client.ID)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	fmt.Fprintf(c.Writer, "event: connected\ndata: {\"clientId\":%q}\n\n", client.ID)
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()

	for {
		select {
		case <-clientGone:
			return
		case change, open := <-client.Events:
			if !open {
				return
			}
			data, err := json.Marshal(change)
			if err != nil {
				h.logger.Warn("Failed to encode change event", zap.Error(err))
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", change.Table, data)
			c.Writer.Flush()
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}
