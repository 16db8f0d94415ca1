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

// CheckoutHandler обрабатывает HTTP запросы сценариев покупки.
type CheckoutHandler struct {
	service service.CheckoutService
	log     *logger.Logger
}

// NewCheckoutHandler создает новый экземпляр CheckoutHandler.
func NewCheckoutHandler(service service.CheckoutService, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		log:     log,
	}
}

// Purchase обрабатывает POST /checkout/purchase
func (h *CheckoutHandler) Purchase(c *gin.Context) {
	ctx := c.Request.Context()

	var req service.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnw("Failed to bind purchase request", "error", err)
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: "Invalid request data", Details: err.Error()}, http.StatusUnprocessableEntity)
		c.Abort()
		return
	}

	result, err := h.service.Purchase(ctx, req)
	if err != nil {
		h.writeError(c, err, "Failed to process purchase")
		return
	}

	res.JsonResponse(c.Writer, result, http.StatusCreated)
}

// AccessPass обрабатывает POST /checkout/access_pass
func (h *CheckoutHandler) AccessPass(c *gin.Context) {
	ctx := c.Request.Context()

	var req service.AccessPassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnw("Failed to bind access pass request", "error", err)
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: "Invalid request data", Details: err.Error()}, http.StatusUnprocessableEntity)
		c.Abort()
		return
	}

	result, err := h.service.PurchaseAccessPass(ctx, req)
	if err != nil {
		h.writeError(c, err, "Failed to purchase access pass")
		return
	}

	res.JsonResponse(c.Writer, result, http.StatusCreated)
}

// writeError преобразует ошибку сервиса в HTTP статус
func (h *CheckoutHandler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: err.Error()}, http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidOperation):
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: err.Error()}, http.StatusUnprocessableEntity)
	default:
		h.log.Errorw("Checkout handler error", "error", err)
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: fallback}, http.StatusInternalServerError)
	}
	c.Abort()
}
