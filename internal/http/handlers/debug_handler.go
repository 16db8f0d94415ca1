package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/velstore/paysim/internal/domain"
	"github.com/velstore/paysim/internal/service"
	"github.com/velstore/paysim/pkg/logger"
	"github.com/velstore/paysim/pkg/res"
)

// DebugHandler обрабатывает отладочные запросы к состоянию симулятора.
type DebugHandler struct {
	status     service.StatusService
	dispatcher service.WebhookDispatcher
	log        *logger.Logger
}

// NewDebugHandler создает новый экземпляр DebugHandler.
func NewDebugHandler(status service.StatusService, dispatcher service.WebhookDispatcher, log *logger.Logger) *DebugHandler {
	return &DebugHandler{
		status:     status,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Status обрабатывает GET /debug/status
func (h *DebugHandler) Status(c *gin.Context) {
	snapshot := h.status.Snapshot(c.Request.Context())
	res.JsonResponse(c.Writer, snapshot, http.StatusOK)
}

// Events обрабатывает GET /debug/events
func (h *DebugHandler) Events(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	res.JsonResponse(c.Writer, h.status.RecentEvents(limit), http.StatusOK)
}

// TestCards обрабатывает GET /debug/test_cards
func (h *DebugHandler) TestCards(c *gin.Context) {
	res.JsonResponse(c.Writer, h.status.TestCards(), http.StatusOK)
}

// WebhookEvents обрабатывает GET /webhook_events
func (h *DebugHandler) WebhookEvents(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	res.JsonResponse(c.Writer, h.dispatcher.GetEvents(limit), http.StatusOK)
}

// WebhookEvent обрабатывает GET /webhook_events/:event_id
func (h *DebugHandler) WebhookEvent(c *gin.Context) {
	event, err := h.dispatcher.GetEventByID(c.Param("event_id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			res.JsonResponse(c.Writer, res.ErrorResponse{Error: "Webhook event not found"}, http.StatusNotFound)
		} else {
			h.log.Errorw("Failed to retrieve webhook event", "error", err)
			res.JsonResponse(c.Writer, res.ErrorResponse{Error: "Failed to retrieve webhook event"}, http.StatusInternalServerError)
		}
		c.Abort()
		return
	}

	res.JsonResponse(c.Writer, event, http.StatusOK)
}
