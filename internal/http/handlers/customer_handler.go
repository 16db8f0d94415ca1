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

// CustomerHandler обрабатывает HTTP запросы клиентов.
type CustomerHandler struct {
	customers     service.CustomerService
	intents       service.PaymentIntentService
	subscriptions service.SubscriptionService
	log           *logger.Logger
}

// NewCustomerHandler создает новый экземпляр CustomerHandler.
func NewCustomerHandler(
	customers service.CustomerService,
	intents service.PaymentIntentService,
	subscriptions service.SubscriptionService,
	log *logger.Logger,
) *CustomerHandler {
	return &CustomerHandler{
		customers:     customers,
		intents:       intents,
		subscriptions: subscriptions,
		log:           log,
	}
}

// Create обрабатывает POST /customers
func (h *CustomerHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnw("Failed to bind customer request", "error", err)
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: "Invalid request data", Details: err.Error()}, http.StatusUnprocessableEntity)
		c.Abort()
		return
	}

	customer, err := h.customers.Create(ctx, req)
	if err != nil {
		h.writeError(c, err, "Failed to create customer")
		return
	}

	res.JsonResponse(c.Writer, customer, http.StatusCreated)
}

// Get обрабатывает GET /customers/:customer_id
func (h *CustomerHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	customerID := c.Param("customer_id")

	customer, err := h.customers.GetByID(ctx, customerID)
	if err != nil {
		h.writeError(c, err, "Failed to retrieve customer")
		return
	}

	res.JsonResponse(c.Writer, customer, http.StatusOK)
}

// List обрабатывает GET /customers
func (h *CustomerHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	customers, err := h.customers.GetAll(ctx)
	if err != nil {
		h.writeError(c, err, "Failed to retrieve customers")
		return
	}

	res.JsonResponse(c.Writer, customers, http.StatusOK)
}

// PaymentIntents обрабатывает GET /customers/:customer_id/payment_intents
func (h *CustomerHandler) PaymentIntents(c *gin.Context) {
	ctx := c.Request.Context()
	customerID := c.Param("customer_id")

	if _, err := h.customers.GetByID(ctx, customerID); err != nil {
		h.writeError(c, err, "Failed to retrieve customer")
		return
	}

	intents, err := h.intents.GetByCustomerID(ctx, customerID)
	if err != nil {
		h.writeError(c, err, "Failed to retrieve payment intents")
		return
	}

	res.JsonResponse(c.Writer, intents, http.StatusOK)
}

// Subscriptions обрабатывает GET /customers/:customer_id/subscriptions
func (h *CustomerHandler) Subscriptions(c *gin.Context) {
	ctx := c.Request.Context()
	customerID := c.Param("customer_id")

	if _, err := h.customers.GetByID(ctx, customerID); err != nil {
		h.writeError(c, err, "Failed to retrieve customer")
		return
	}

	subscriptions, err := h.subscriptions.GetByCustomerID(ctx, customerID)
	if err != nil {
		h.writeError(c, err, "Failed to retrieve subscriptions")
		return
	}

	res.JsonResponse(c.Writer, subscriptions, http.StatusOK)
}

// writeError преобразует ошибку сервиса в HTTP статус
func (h *CustomerHandler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: err.Error()}, http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidInput):
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: err.Error()}, http.StatusUnprocessableEntity)
	default:
		h.log.Errorw("Customer handler error", "error", err)
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: fallback}, http.StatusInternalServerError)
	}
	c.Abort()
}
