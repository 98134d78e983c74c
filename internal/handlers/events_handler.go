package handlers

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/events"
)

// EventsHandler streams change notifications to clients over Server-Sent
// Events so dashboards can refresh stale panels without polling.
type EventsHandler struct {
	bus events.Bus
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(bus events.Bus) *EventsHandler {
	return &EventsHandler{bus: bus}
}

// Stream handles an SSE subscription.
// @Summary     Subscribe to change events
// @Description Stream change notifications as Server-Sent Events. Without a topics filter every topic is delivered.
// @Tags        events
// @Produce     text/event-stream
// @Param       topics query string false "Comma-separated topic filter (accounts, cards, transactions, invoice-items, goals)"
// @Success     200 {string} string "Event stream"
// @Failure     400 {object} ErrorResponse "Unknown topic"
// @Router      /events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	topics := events.AllTopics()
	if raw := c.Query("topics"); raw != "" {
		topics = topics[:0]
		for _, part := range strings.Split(raw, ",") {
			topic := events.Topic(strings.TrimSpace(part))
			if !events.ValidTopic(topic) {
				respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown topic: "+string(topic)))
				return
			}
			topics = append(topics, topic)
		}
	}

	ch, cancel := h.bus.Subscribe(c.Request.Context(), topics...)
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(string(event.Topic), event)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
