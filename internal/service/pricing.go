package service

import (
	"strings"
	"time"

	"github.com/velstore/paysim/internal/domain"
)

// Длины биллинговых периодов. Фиксированные длительности, а не
// календарные: ровно 30 дней для месяца и 365 дней для года.
const (
	MonthlyPeriod = 30 * 24 * time.Hour
	YearlyPeriod  = 365 * 24 * time.Hour
)

// Идентификаторы цен абонемента по умолчанию
const (
	PriceIDAccessMonthly  = "price_access_monthly"
	PriceIDAccessYearly   = "price_access_yearly"
	PriceIDAccessLifetime = "price_access_lifetime"
)

// Ключ метаданных с типом тарифа
const metadataPlanTypeKey = "plan_type"

// Price конкретная цена тарифа. Interval пустой для разовых цен.
type Price struct {
	ID         string               `json:"id"`
	UnitAmount int64                `json:"unit_amount"`
	Currency   string               `json:"currency"`
	Interval   domain.PriceInterval `json:"interval,omitempty"`
}

// PriceCatalog разрешает ссылки на цены в конкретные суммы по типу тарифа
type PriceCatalog struct {
	prices map[domain.PlanType]Price
}

// NewPriceCatalog создает каталог цен абонемента со значениями по умолчанию
func NewPriceCatalog() *PriceCatalog {
	return &PriceCatalog{
		prices: map[domain.PlanType]Price{
			domain.PlanTypeMonthly: {
				ID:         PriceIDAccessMonthly,
				UnitAmount: 1900,
				Currency:   "usd",
				Interval:   domain.PriceIntervalMonth,
			},
			domain.PlanTypeYearly: {
				ID:         PriceIDAccessYearly,
				UnitAmount: 14900,
				Currency:   "usd",
				Interval:   domain.PriceIntervalYear,
			},
			domain.PlanTypeLifetime: {
				ID:         PriceIDAccessLifetime,
				UnitAmount: 39900,
				Currency:   "usd",
			},
		},
	}
}

// PriceFor возвращает цену для указанного типа тарифа
func (c *PriceCatalog) PriceFor(plan domain.PlanType) (Price, bool) {
	price, ok := c.prices[plan]
	return price, ok
}

// Resolve разрешает позицию запроса в конкретную позицию подписки
// и тип тарифа
func (c *PriceCatalog) Resolve(item domain.SubscriptionItemRequest) (domain.SubscriptionItem, domain.PlanType) {
	plan := ResolvePlanType(item)
	price := c.prices[plan]

	priceID := item.PriceID
	if priceID == "" {
		priceID = price.ID
	}

	return domain.SubscriptionItem{
		PriceID:    priceID,
		UnitAmount: price.UnitAmount,
		Currency:   price.Currency,
		Interval:   price.Interval,
	}, plan
}

// ResolvePlanType определяет тип тарифа для позиции запроса.
/// Порядок разрешения: явное поле plan_type, затем метаданные,
// затем подстроки в идентификаторе цены.
func ResolvePlanType(item domain.SubscriptionItemRequest) domain.PlanType {
	if item.PlanType.Valid() {
		return item.PlanType
	}

	if item.Metadata != nil {
		if plan := domain.PlanType(item.Metadata[metadataPlanTypeKey]); plan.Valid() {
			return plan
		}
	}

	id := strings.ToLower(item.PriceID)
	switch {
	case strings.Contains(id, "lifetime"):
		return domain.PlanTypeLifetime
	case strings.Contains(id, "year"), strings.Contains(id, "annual"):
		return domain.PlanTypeYearly
	case strings.Contains(id, "month"):
		return domain.PlanTypeMonthly
	}

	return domain.PlanTypeMonthly
}

// PeriodLength возвращает длину биллингового периода для интервала
func PeriodLength(interval domain.PriceInterval) time.Duration {
	if interval == domain.PriceIntervalYear {
		return YearlyPeriod
	}
	return MonthlyPeriod
}
