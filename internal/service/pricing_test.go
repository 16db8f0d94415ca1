package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velstore/paysim/internal/domain"
)

func TestResolvePlanType(t *testing.T) {
	tests := []struct {
		name string
		item domain.SubscriptionItemRequest
		want domain.PlanType
	}{
		{
			name: "explicit field wins over everything",
			item: domain.SubscriptionItemRequest{
				PriceID:  "price_access_monthly",
				PlanType: domain.PlanTypeYearly,
				Metadata: map[string]string{"plan_type": "lifetime"},
			},
			want: domain.PlanTypeYearly,
		},
		{
			name: "metadata wins over price ID substring",
			item: domain.SubscriptionItemRequest{
				PriceID:  "price_access_monthly",
				Metadata: map[string]string{"plan_type": "yearly"},
			},
			want: domain.PlanTypeYearly,
		},
		{
			name: "lifetime substring",
			item: domain.SubscriptionItemRequest{PriceID: "price_pro_lifetime"},
			want: domain.PlanTypeLifetime,
		},
		{
			name: "year substring",
			item: domain.SubscriptionItemRequest{PriceID: "price_pro_yearly"},
			want: domain.PlanTypeYearly,
		},
		{
			name: "annual substring",
			item: domain.SubscriptionItemRequest{PriceID: "price_annual_plan"},
			want: domain.PlanTypeYearly,
		},
		{
			name: "month substring",
			item: domain.SubscriptionItemRequest{PriceID: "price_monthly_basic"},
			want: domain.PlanTypeMonthly,
		},
		{
			name: "unknown defaults to monthly",
			item: domain.SubscriptionItemRequest{PriceID: "price_mystery"},
			want: domain.PlanTypeMonthly,
		},
		{
			name: "invalid metadata ignored",
			item: domain.SubscriptionItemRequest{
				PriceID:  "price_pro_yearly",
				Metadata: map[string]string{"plan_type": "weekly"},
			},
			want: domain.PlanTypeYearly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePlanType(tt.item))
		})
	}
}

func TestPriceCatalog_Resolve(t *testing.T) {
	catalog := NewPriceCatalog()

	item, plan := catalog.Resolve(domain.SubscriptionItemRequest{
		PriceID:  "price_custom_yearly",
		PlanType: domain.PlanTypeYearly,
	})

	assert.Equal(t, domain.PlanTypeYearly, plan)
	// Запрошенный идентификатор цены сохраняется
	assert.Equal(t, "price_custom_yearly", item.PriceID)
	assert.Equal(t, int64(14900), item.UnitAmount)
	assert.Equal(t, "usd", item.Currency)
	assert.Equal(t, domain.PriceIntervalYear, item.Interval)
}

func TestPriceCatalog_ResolveEmptyPriceIDUsesCatalog(t *testing.T) {
	catalog := NewPriceCatalog()

	item, _ := catalog.Resolve(domain.SubscriptionItemRequest{
		PlanType: domain.PlanTypeMonthly,
	})
	assert.Equal(t, PriceIDAccessMonthly, item.PriceID)
}

func TestPriceCatalog_PriceFor(t *testing.T) {
	catalog := NewPriceCatalog()

	price, ok := catalog.PriceFor(domain.PlanTypeLifetime)
	require.True(t, ok)
	assert.Equal(t, int64(39900), price.UnitAmount)
	assert.Empty(t, price.Interval)

	_, ok = catalog.PriceFor(domain.PlanType("weekly"))
	assert.False(t, ok)
}

func TestPeriodLength(t *testing.T) {
	assert.Equal(t, MonthlyPeriod, PeriodLength(domain.PriceIntervalMonth))
	assert.Equal(t, YearlyPeriod, PeriodLength(domain.PriceIntervalYear))
	assert.Equal(t, MonthlyPeriod, PeriodLength(domain.PriceInterval("")))

	// Фиксированные длительности в секундах
	assert.EqualValues(t, 30*24*3600, MonthlyPeriod.Seconds())
	assert.EqualValues(t, 365*24*3600, YearlyPeriod.Seconds())
}
