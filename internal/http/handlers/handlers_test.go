package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velstore/paysim/internal/domain"
	"github.com/velstore/paysim/internal/eventlog"
	"github.com/velstore/paysim/internal/metrics"
	"github.com/velstore/paysim/internal/repository"
	"github.com/velstore/paysim/internal/service"
	"github.com/velstore/paysim/internal/simulator"
	"github.com/velstore/paysim/pkg/logger"
)

type testServer struct {
	router     *gin.Engine
	dispatcher service.WebhookDispatcher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New(logger.FATAL)
	log.SetOutput(io.Discard)

	journal := eventlog.New(eventlog.DefaultCapacity)
	delayer := simulator.NewDelayer(false, 0)
	injector := simulator.NewFailureInjector(true)
	simMetrics := metrics.NewSimulatorMetrics(prometheus.NewRegistry(), log)

	customerRepo := repository.NewInMemoryCustomerRepository(log)
	intentRepo := repository.NewInMemoryPaymentIntentRepository(log)
	subscriptionRepo := repository.NewInMemorySubscriptionRepository(log)

	dispatcher := service.NewWebhookDispatcher(delayer, 1, time.Millisecond, nil, journal, simMetrics, log)

	catalog := service.NewPriceCatalog()
	customers := service.NewCustomerService(customerRepo, journal, log)
	intents := service.NewPaymentIntentService(intentRepo, customers, delayer, injector, dispatcher, journal, simMetrics, log)
	subscriptions := service.NewSubscriptionService(subscriptionRepo, customerRepo, catalog, delayer, dispatcher, journal, simMetrics, log)
	checkout := service.NewCheckoutService(customers, intents, subscriptions, catalog, journal, log)
	status := service.NewStatusService(customerRepo, intentRepo, subscriptionRepo, dispatcher, delayer, injector, journal, log)

	customerHandler := NewCustomerHandler(customers, intents, subscriptions, log)
	intentHandler := NewPaymentIntentHandler(intents, log)
	subscriptionHandler := NewSubscriptionHandler(subscriptions, log)
	checkoutHandler := NewCheckoutHandler(checkout, log)
	debugHandler := NewDebugHandler(status, dispatcher, log)

	router := gin.New()
	api := router.Group("/api/v1")

	api.POST("/customers", customerHandler.Create)
	api.GET("/customers/:customer_id", customerHandler.Get)

	api.POST("/payment_intents", intentHandler.Create)
	api.GET("/payment_intents/:intent_id", intentHandler.Get)
	api.POST("/payment_intents/:intent_id/confirm", intentHandler.Confirm)
	api.POST("/payment_intents/:intent_id/fail", intentHandler.SimulateFailure)

	api.POST("/subscriptions", subscriptionHandler.Create)
	api.GET("/subscriptions/:subscription_id", subscriptionHandler.Get)
	api.PATCH("/subscriptions/:subscription_id", subscriptionHandler.Update)
	api.DELETE("/subscriptions/:subscription_id", subscriptionHandler.Cancel)

	api.POST("/checkout/access_pass", checkoutHandler.AccessPass)

	api.GET("/webhook_events", debugHandler.WebhookEvents)
	api.GET("/debug/status", debugHandler.Status)
	api.GET("/debug/test_cards", debugHandler.TestCards)

	return &testServer{router: router, dispatcher: dispatcher}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestPaymentIntentEndpoints(t *testing.T) {
	server := newTestServer(t)

	rec := server.do(t, http.MethodPost, "/api/v1/payment_intents", gin.H{
		"amount":   1900,
		"currency": "usd",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	intent := decode[domain.PaymentIntent](t, rec)
	assert.Equal(t, domain.PaymentIntentStatusRequiresPaymentMethod, intent.Status)
	assert.NotEmpty(t, intent.ClientSecret)

	rec = server.do(t, http.MethodPost, "/api/v1/payment_intents/"+intent.ID+"/confirm", gin.H{
		"card_number": simulator.CardSuccess,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	confirmed := decode[domain.PaymentIntent](t, rec)
	assert.Equal(t, domain.PaymentIntentStatusSucceeded, confirmed.Status)

	rec = server.do(t, http.MethodGet, "/api/v1/payment_intents/"+intent.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPaymentIntentDeclineReturns402(t *testing.T) {
	server := newTestServer(t)

	rec := server.do(t, http.MethodPost, "/api/v1/payment_intents", gin.H{
		"amount":   1900,
		"currency": "usd",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	intent := decode[domain.PaymentIntent](t, rec)

	rec = server.do(t, http.MethodPost, "/api/v1/payment_intents/"+intent.ID+"/confirm", gin.H{
		"card_number": simulator.CardDeclined,
	})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Contains(t, rec.Body.String(), "card_declined")
}

func TestPaymentIntentValidation(t *testing.T) {
	server := newTestServer(t)

	rec := server.do(t, http.MethodPost, "/api/v1/payment_intents", gin.H{
		"amount":   -5,
		"currency": "usd",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = server.do(t, http.MethodGet, "/api/v1/payment_intents/pi_missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPaymentIntentConfirmFinalizedConflict(t *testing.T) {
	server := newTestServer(t)

	rec := server.do(t, http.MethodPost, "/api/v1/payment_intents", gin.H{
		"amount":   500,
		"currency": "usd",
	})
	intent := decode[domain.PaymentIntent](t, rec)

	rec = server.do(t, http.MethodPost, "/api/v1/payment_intents/"+intent.ID+"/confirm", gin.H{})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = server.do(t, http.MethodPost, "/api/v1/payment_intents/"+intent.ID+"/confirm", gin.H{})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSubscriptionEndpoints(t *testing.T) {
	server := newTestServer(t)

	rec := server.do(t, http.MethodPost, "/api/v1/customers", gin.H{
		"email": "sub@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	customer := decode[domain.Customer](t, rec)

	rec = server.do(t, http.MethodPost, "/api/v1/subscriptions", gin.H{
		"customer_id": customer.ID,
		"items": []gin.H{
			{"price_id": "price_access_monthly", "plan_type": "monthly"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	subscription := decode[domain.Subscription](t, rec)
	assert.Equal(t, domain.SubscriptionStatusActive, subscription.Status)

	rec = server.do(t, http.MethodPatch, "/api/v1/subscriptions/"+subscription.ID, gin.H{
		"cancel_at_period_end": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[domain.Subscription](t, rec)
	assert.True(t, updated.CancelAtPeriodEnd)
	assert.Equal(t, domain.SubscriptionStatusActive, updated.Status)

	rec = server.do(t, http.MethodDelete, "/api/v1/subscriptions/"+subscription.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	canceled := decode[domain.Subscription](t, rec)
	assert.Equal(t, domain.SubscriptionStatusCanceled, canceled.Status)
}

func TestCheckoutAccessPassEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := server.do(t, http.MethodPost, "/api/v1/checkout/access_pass", gin.H{
		"user_id": "user-100",
		"email":   "pass@example.com",
		"plan":    "yearly",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "PSIM-")
	assert.Contains(t, rec.Body.String(), "$149.00/year")
}

func TestDebugEndpoints(t *testing.T) {
	server := newTestServer(t)

	rec := server.do(t, http.MethodPost, "/api/v1/payment_intents", gin.H{
		"amount":   1000,
		"currency": "usd",
	})
	intent := decode[domain.PaymentIntent](t, rec)

	rec = server.do(t, http.MethodPost, "/api/v1/payment_intents/"+intent.ID+"/confirm", gin.H{})
	require.Equal(t, http.StatusOK, rec.Code)
	server.dispatcher.Wait()

	rec = server.do(t, http.MethodGet, "/api/v1/debug/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[map[string]interface{}](t, rec)
	assert.EqualValues(t, 1, status["payment_intents"])

	rec = server.do(t, http.MethodGet, "/api/v1/debug/test_cards", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = server.do(t, http.MethodGet, "/api/v1/webhook_events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[[]domain.WebhookEvent](t, rec)
	require.Len(t, events, 1)
	assert.Equal(t, domain.WebhookEventTypePaymentIntentSucceeded, events[0].Type)
}
