package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velstore/paysim/internal/domain"
	"github.com/velstore/paysim/internal/simulator"
)

func TestCheckoutService_Purchase(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	result, err := env.checkout.Purchase(ctx, PurchaseRequest{
		UserID: "user-10",
		Email:  "buyer@example.com",
		Items: []PurchaseItem{
			{Name: "UI Kit", Amount: 2900},
			{Name: "Icon Pack", Amount: 500, Quantity: 2},
		},
		Currency: "usd",
		Metadata: map[string]string{"product_id": "prod_123"},
	})
	require.NoError(t, err)

	assert.Equal(t, "buyer@example.com", result.Customer.Email)
	// Итоговая сумма складывается из позиций с учетом количества
	assert.Equal(t, int64(3900), result.PaymentIntent.Amount)
	assert.Equal(t, result.Customer.ID, result.PaymentIntent.CustomerID)

	// Подтверждение выполняется асинхронно всегда успешной картой
	env.checkout.Wait()
	env.dispatcher.Wait()

	intent, err := env.intents.GetByID(ctx, result.PaymentIntent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentIntentStatusSucceeded, intent.Status)

	events := env.dispatcher.GetEvents(10)
	require.Len(t, events, 1)
	assert.Equal(t, domain.WebhookEventTypePaymentIntentSucceeded, events[0].Type)
}

func TestCheckoutService_PurchaseReusesCustomer(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	first, err := env.checkout.Purchase(ctx, PurchaseRequest{
		UserID: "user-11", Email: "repeat@example.com", Currency: "usd",
		Items: []PurchaseItem{{Name: "Template", Amount: 1000}},
	})
	require.NoError(t, err)

	second, err := env.checkout.Purchase(ctx, PurchaseRequest{
		UserID: "user-11", Email: "repeat@example.com", Currency: "usd",
		Items: []PurchaseItem{{Name: "Font Bundle", Amount: 2000}},
	})
	require.NoError(t, err)

	assert.Equal(t, first.Customer.ID, second.Customer.ID)
	env.checkout.Wait()
}

func TestCheckoutService_PurchaseDeclinedCard(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	result, err := env.checkout.Purchase(ctx, PurchaseRequest{
		Email:      "declined@example.com",
		Items:      []PurchaseItem{{Name: "Mockup Pack", Amount: 4900}},
		Currency:   "usd",
		CardNumber: simulator.CardDeclined,
	})
	require.NoError(t, err)

	env.checkout.Wait()
	env.dispatcher.Wait()

	intent, err := env.intents.GetByID(ctx, result.PaymentIntent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentIntentStatusCanceled, intent.Status)
	assert.NotEmpty(t, intent.LastError)
}

func TestCheckoutService_PurchaseNoItems(t *testing.T) {
	env := newTestEnv()

	_, err := env.checkout.Purchase(context.Background(), PurchaseRequest{
		Email:    "empty@example.com",
		Currency: "usd",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckoutService_AccessPassMonthly(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	result, err := env.checkout.PurchaseAccessPass(ctx, AccessPassRequest{
		UserID: "user-20",
		Email:  "pass@example.com",
		Plan:   domain.PlanTypeMonthly,
	})
	require.NoError(t, err)

	require.NotNil(t, result.Subscription)
	assert.Nil(t, result.PaymentIntent)
	assert.Equal(t, domain.SubscriptionStatusActive, result.Subscription.Status)
	assert.Equal(t, "$19.00/month", result.PriceDisplay)
	assert.True(t, strings.HasPrefix(result.LicenseKey, "PSIM-"))
}

func TestCheckoutService_AccessPassLifetime(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	result, err := env.checkout.PurchaseAccessPass(ctx, AccessPassRequest{
		UserID: "user-21",
		Email:  "lifetime@example.com",
		Plan:   domain.PlanTypeLifetime,
	})
	require.NoError(t, err)

	require.NotNil(t, result.PaymentIntent)
	assert.Nil(t, result.Subscription)
	assert.Equal(t, int64(39900), result.PaymentIntent.Amount)
	assert.Equal(t, "$399.00 one-time", result.PriceDisplay)

	env.checkout.Wait()
	env.dispatcher.Wait()

	intent, err := env.intents.GetByID(ctx, result.PaymentIntent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentIntentStatusSucceeded, intent.Status)
}

func TestCheckoutService_AccessPassInvalidPlan(t *testing.T) {
	env := newTestEnv()

	_, err := env.checkout.PurchaseAccessPass(context.Background(), AccessPassRequest{
		Email: "bad@example.com",
		Plan:  domain.PlanType("weekly"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckoutService_LicenseKeysUnique(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		result, err := env.checkout.PurchaseAccessPass(ctx, AccessPassRequest{
			Email: "unique@example.com",
			Plan:  domain.PlanTypeMonthly,
		})
		require.NoError(t, err)
		assert.False(t, seen[result.LicenseKey], "duplicate license key %s", result.LicenseKey)
		seen[result.LicenseKey] = true
	}
}
