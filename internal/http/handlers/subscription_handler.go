package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/velstore/paysim/internal/domain"
	"github.com/velstore/paysim/internal/service"
	"github.com/velstore/paysim/pkg/logger"
	"github.com/velstore/paysim/pkg/res"
)

// SubscriptionHandler обрабатывает HTTP запросы подписок.
type SubscriptionHandler struct {
	service service.SubscriptionService
	log     *logger.Logger
}

// NewSubscriptionHandler создает новый экземпляр SubscriptionHandler.
func NewSubscriptionHandler(service service.SubscriptionService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: service,
		log:     log,
	}
}

// Create обрабатывает POST /subscriptions
func (h *SubscriptionHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnw("Failed to bind subscription request", "error", err)
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: "Invalid request data", Details: err.Error()}, http.StatusUnprocessableEntity)
		c.Abort()
		return
	}

	subscription, err := h.service.Create(ctx, req)
	if err != nil {
		h.writeError(c, err, "Failed to create subscription")
		return
	}

	res.JsonResponse(c.Writer, subscription, http.StatusCreated)
}

// Get обрабатывает GET /subscriptions/:subscription_id
func (h *SubscriptionHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	subscriptionID := c.Param("subscription_id")

	subscription, err := h.service.GetByID(ctx, subscriptionID)
	if err != nil {
		h.writeError(c, err, "Failed to retrieve subscription")
		return
	}

	res.JsonResponse(c.Writer, subscription, http.StatusOK)
}

// List обрабатывает GET /subscriptions
func (h *SubscriptionHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	subscriptions, err := h.service.GetAll(ctx)
	if err != nil {
		h.writeError(c, err, "Failed to retrieve subscriptions")
		return
	}

	res.JsonResponse(c.Writer, subscriptions, http.StatusOK)
}

// Update обрабатывает PATCH /subscriptions/:subscription_id
func (h *SubscriptionHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	subscriptionID := c.Param("subscription_id")

	var req domain.SubscriptionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnw("Failed to bind subscription update request", "error", err)
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: "Invalid request data", Details: err.Error()}, http.StatusUnprocessableEntity)
		c.Abort()
		return
	}

	subscription, err := h.service.Update(ctx, subscriptionID, req)
	if err != nil {
		h.writeError(c, err, "Failed to update subscription")
		return
	}

	res.JsonResponse(c.Writer, subscription, http.StatusOK)
}

// Cancel обрабатывает DELETE /subscriptions/:subscription_id
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()
	subscriptionID := c.Param("subscription_id")

	subscription, err := h.service.Cancel(ctx, subscriptionID)
	if err != nil {
		h.writeError(c, err, "Failed to cancel subscription")
		return
	}

	res.JsonResponse(c.Writer, subscription, http.StatusOK)
}

// Renew обрабатывает POST /subscriptions/:subscription_id/renew
func (h *SubscriptionHandler) Renew(c *gin.Context) {
	ctx := c.Request.Context()
	subscriptionID := c.Param("subscription_id")

	subscription, err := h.service.Renew(ctx, subscriptionID)
	if err != nil {
		h.writeError(c, err, "Failed to renew subscription")
		return
	}

	res.JsonResponse(c.Writer, subscription, http.StatusOK)
}

// writeError преобразует ошибку сервиса в HTTP статус
func (h *SubscriptionHandler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: err.Error()}, http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidOperation):
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: err.Error()}, http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidInput):
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: err.Error()}, http.StatusUnprocessableEntity)
	default:
		h.log.Errorw("Subscription handler error", "error", err)
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: fallback}, http.StatusInternalServerError)
	}
	c.Abort()
}
