package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/velstore/paysim/internal/domain"
)

// Символы валют для отображения сумм
var currencySymbols = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
}

// FormatAmount форматирует сумму в минимальных единицах валюты
// в человекочитаемую строку, например "$19.00"
func FormatAmount(amount int64, currency string) string {
	currency = strings.ToLower(currency)
	major := float64(amount) / 100

	if symbol, ok := currencySymbols[currency]; ok {
		return fmt.Sprintf("%s%.2f", symbol, major)
	}
	return fmt.Sprintf("%.2f %s", major, strings.ToUpper(currency))
}

// FormatPlanPrice форматирует цену тарифа с периодом списания,
// например "$19.00/month" или "$399.00 one-time"
func FormatPlanPrice(price Price) string {
	amount := FormatAmount(price.UnitAmount, price.Currency)
	switch price.Interval {
	case domain.PriceIntervalMonth:
		return amount + "/month"
	case domain.PriceIntervalYear:
		return amount + "/year"
	default:
		return amount + " one-time"
	}
}

// GenerateLicenseKey генерирует лицензионный ключ вида
// PSIM-XXXXXXXX-XXXX-XXXX. Ключи уникальны в пределах процесса.
func GenerateLicenseKey(now int64) string {
	ts := strings.ToUpper(strconv.FormatInt(now, 36))

	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))

	return fmt.Sprintf("PSIM-%s-%s-%s", ts, raw[:4], raw[4:8])
}
