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

// PaymentIntentHandler обрабатывает HTTP запросы платежных намерений.
type PaymentIntentHandler struct {
	service service.PaymentIntentService
	log     *logger.Logger
}

// NewPaymentIntentHandler создает новый экземпляр PaymentIntentHandler.
func NewPaymentIntentHandler(service service.PaymentIntentService, log *logger.Logger) *PaymentIntentHandler {
	return &PaymentIntentHandler{
		service: service,
		log:     log,
	}
}

// SimulateFailureRequest тело запроса POST /payment_intents/:id/fail
type SimulateFailureRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Create обрабатывает POST /payment_intents
func (h *PaymentIntentHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnw("Failed to bind payment intent request", "error", err)
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: "Invalid request data", Details: err.Error()}, http.StatusUnprocessableEntity)
		c.Abort()
		return
	}

	intent, err := h.service.Create(ctx, req)
	if err != nil {
		h.writeError(c, err, "Failed to create payment intent")
		return
	}

	res.JsonResponse(c.Writer, intent, http.StatusCreated)
}

// Get обрабатывает GET /payment_intents/:intent_id
func (h *PaymentIntentHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	intentID := c.Param("intent_id")

	intent, err := h.service.GetByID(ctx, intentID)
	if err != nil {
		h.writeError(c, err, "Failed to retrieve payment intent")
		return
	}

	res.JsonResponse(c.Writer, intent, http.StatusOK)
}

// List обрабатывает GET /payment_intents
func (h *PaymentIntentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	intents, err := h.service.GetAll(ctx)
	if err != nil {
		h.writeError(c, err, "Failed to retrieve payment intents")
		return
	}

	res.JsonResponse(c.Writer, intents, http.StatusOK)
}

// Confirm обрабатывает POST /payment_intents/:intent_id/confirm
func (h *PaymentIntentHandler) Confirm(c *gin.Context) {
	ctx := c.Request.Context()
	intentID := c.Param("intent_id")

	var req domain.ConfirmPaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnw("Failed to bind confirm request", "error", err)
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: "Invalid request data", Details: err.Error()}, http.StatusUnprocessableEntity)
		c.Abort()
		return
	}

	intent, err := h.service.Confirm(ctx, intentID, req.CardNumber)
	if err != nil {
		// Отказ карты возвращает состояние платежа вместе с ошибкой
		var declineErr *domain.DeclineError
		if errors.As(err, &declineErr) {
			res.JsonResponse(c.Writer, gin.H{
				"payment_intent": intent,
				"error": res.ErrorResponse{
					Error:     declineErr.Reason,
					ErrorCode: declineErr.Code,
				},
			}, http.StatusPaymentRequired)
			c.Abort()
			return
		}
		h.writeError(c, err, "Failed to confirm payment intent")
		return
	}

	res.JsonResponse(c.Writer, intent, http.StatusOK)
}

// SimulateFailure обрабатывает POST /payment_intents/:intent_id/fail
func (h *PaymentIntentHandler) SimulateFailure(c *gin.Context) {
	ctx := c.Request.Context()
	intentID := c.Param("intent_id")

	// Тело запроса не обязательно
	var req SimulateFailureRequest
	_ = c.ShouldBindJSON(&req)

	intent, err := h.service.SimulateFailure(ctx, intentID, req.Reason)
	if err != nil {
		h.writeError(c, err, "Failed to simulate payment failure")
		return
	}

	res.JsonResponse(c.Writer, intent, http.StatusOK)
}

// writeError преобразует ошибку сервиса в HTTP статус
func (h *PaymentIntentHandler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: err.Error()}, http.StatusNotFound)
	case errors.Is(err, domain.ErrIntentFinalized):
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: err.Error()}, http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidInput):
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: err.Error()}, http.StatusUnprocessableEntity)
	default:
		h.log.Errorw("Payment intent handler error", "error", err)
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: fallback}, http.StatusInternalServerError)
	}
	c.Abort()
}
