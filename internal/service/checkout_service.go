package service

import (
	"context"
	"sync"
	"time"

	"github.com/velstore/paysim/internal/domain"
	"github.com/velstore/paysim/internal/eventlog"
	"github.com/velstore/paysim/internal/simulator"
	"github.com/velstore/paysim/pkg/logger"
)

// PurchaseItem позиция разовой покупки. Сумма в минимальных
// единицах валюты.
type PurchaseItem struct {
	Name     string `json:"name,omitempty"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Quantity int    `json:"quantity,omitempty"`
}

// Total возвращает сумму позиции с учетом количества
func (i PurchaseItem) Total() int64 {
	quantity := i.Quantity
	if quantity < 1 {
		quantity = 1
	}
	return i.Amount * int64(quantity)
}

// PurchaseRequest запрос на разовую покупку цифровых товаров.
// Пустой номер карты означает всегда успешную тестовую карту.
type PurchaseRequest struct {
	UserID     string            `json:"user_id,omitempty"`
	Email      string            `json:"email,omitempty"`
	Name       string            `json:"name,omitempty"`
	Items      []PurchaseItem    `json:"items" binding:"required,min=1"`
	Currency   string            `json:"currency" binding:"required,len=3"`
	CardNumber string            `json:"card_number,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// TotalAmount возвращает итоговую сумму покупки по всем позициям
func (r PurchaseRequest) TotalAmount() int64 {
	var total int64
	for _, item := range r.Items {
		total += item.Total()
	}
	return total
}

// AccessPassRequest запрос на оформление абонемента полного доступа
type AccessPassRequest struct {
	UserID string          `json:"user_id,omitempty"`
	Email  string          `json:"email,omitempty"`
	Name   string          `json:"name,omitempty"`
	Plan   domain.PlanType `json:"plan" binding:"required"`
}

// PurchaseResult результат разовой покупки
type PurchaseResult struct {
	Customer      domain.Customer      `json:"customer"`
	PaymentIntent domain.PaymentIntent `json:"payment_intent"`
}

// AccessPassResult результат оформления абонемента. Subscription
// заполнен для рекуррентных тарифов, PaymentIntent для пожизненного.
type AccessPassResult struct {
	Customer      domain.Customer       `json:"customer"`
	Plan          domain.PlanType       `json:"plan"`
	PriceDisplay  string                `json:"price_display"`
	LicenseKey    string                `json:"license_key,omitempty"`
	Subscription  *domain.Subscription  `json:"subscription,omitempty"`
	PaymentIntent *domain.PaymentIntent `json:"payment_intent,omitempty"`
}

// CheckoutService фасад типовых сценариев покупки. Объединяет
// разрешение клиента, создание платежа или подписки и асинхронное
// подтверждение в один вызов.
type CheckoutService interface {
	// Purchase оформляет разовую покупку: платеж создается сразу,
	// подтверждение выполняется асинхронно
	Purchase(ctx context.Context, req PurchaseRequest) (PurchaseResult, error)

	// PurchaseAccessPass оформляет абонемент выбранного тарифа.
	// Рекуррентные тарифы создают подписку, пожизненный - платеж
	// с асинхронным подтверждением.
	PurchaseAccessPass(ctx context.Context, req AccessPassRequest) (AccessPassResult, error)

	// Wait блокируется до завершения всех асинхронных подтверждений
	Wait()
}

type checkoutService struct {
	customers     CustomerService
	intents       PaymentIntentService
	subscriptions SubscriptionService
	catalog       *PriceCatalog
	journal       *eventlog.Log
	log           *logger.Logger
	wg            sync.WaitGroup
}

// NewCheckoutService создает новый фасад покупок
func NewCheckoutService(
	customers CustomerService,
	intents PaymentIntentService,
	subscriptions SubscriptionService,
	catalog *PriceCatalog,
	journal *eventlog.Log,
	log *logger.Logger,
) CheckoutService {
	return &checkoutService{
		customers:     customers,
		intents:       intents,
		subscriptions: subscriptions,
		catalog:       catalog,
		journal:       journal,
		log:           log,
	}
}

// Purchase оформляет разовую покупку цифровых товаров
func (s *checkoutService) Purchase(ctx context.Context, req PurchaseRequest) (PurchaseResult, error) {
	total := req.TotalAmount()
	s.log.Debugw("Processing purchase", "userID", req.UserID, "items", len(req.Items), "total", total)

	if total <= 0 {
		return PurchaseResult{}, domain.ErrInvalidInput
	}

	customer, err := s.customers.CreateOrRetrieve(ctx, req.UserID, req.Email, req.Name)
	if err != nil {
		return PurchaseResult{}, err
	}

	intent, err := s.intents.Create(ctx, domain.PaymentIntentRequest{
		Amount:     total,
		Currency:   req.Currency,
		CustomerID: customer.ID,
		Metadata:   req.Metadata,
	})
	if err != nil {
		return PurchaseResult{}, err
	}

	s.journal.Append("checkout.purchase", map[string]interface{}{
		"customer_id": customer.ID,
		"intent_id":   intent.ID,
		"items":       len(req.Items),
		"amount":      intent.Amount,
	})

	s.confirmAsync(intent.ID, req.CardNumber)

	return PurchaseResult{Customer: customer, PaymentIntent: intent}, nil
}

// PurchaseAccessPass оформляет абонемент выбранного тарифа
func (s *checkoutService) PurchaseAccessPass(ctx context.Context, req AccessPassRequest) (AccessPassResult, error) {
	s.log.Debugw("Processing access pass purchase", "userID", req.UserID, "plan", req.Plan)

	if !req.Plan.Valid() {
		return AccessPassResult{}, domain.ErrInvalidInput
	}

	price, ok := s.catalog.PriceFor(req.Plan)
	if !ok {
		return AccessPassResult{}, domain.ErrInvalidInput
	}

	customer, err := s.customers.CreateOrRetrieve(ctx, req.UserID, req.Email, req.Name)
	if err != nil {
		return AccessPassResult{}, err
	}

	result := AccessPassResult{
		Customer:     customer,
		Plan:         req.Plan,
		PriceDisplay: FormatPlanPrice(price),
		LicenseKey:   GenerateLicenseKey(time.Now().UnixMilli()),
	}

	if req.Plan == domain.PlanTypeLifetime {
		intent, err := s.intents.Create(ctx, domain.PaymentIntentRequest{
			Amount:     price.UnitAmount,
			Currency:   price.Currency,
			CustomerID: customer.ID,
			Metadata:   map[string]string{metadataPlanTypeKey: string(req.Plan)},
		})
		if err != nil {
			return AccessPassResult{}, err
		}
		result.PaymentIntent = &intent

		s.confirmAsync(intent.ID, "")
	} else {
		subscription, err := s.subscriptions.Create(ctx, domain.SubscriptionRequest{
			CustomerID: customer.ID,
			Items: []domain.SubscriptionItemRequest{
				{PriceID: price.ID, PlanType: req.Plan},
			},
			Metadata: map[string]string{metadataPlanTypeKey: string(req.Plan)},
		})
		if err != nil {
			return AccessPassResult{}, err
		}
		result.Subscription = &subscription
	}

	s.journal.Append("checkout.access_pass", map[string]interface{}{
		"customer_id": customer.ID,
		"plan":        string(req.Plan),
		"license_key": result.LicenseKey,
	})

	s.log.Infow("Access pass purchased", "customerID", customer.ID, "plan", req.Plan)
	return result, nil
}

// confirmAsync подтверждает платеж в фоне. Пустой номер карты
// означает всегда успешную тестовую карту. Ошибки подтверждения
// наблюдаемы через статус платежа и журнал, инициатору они
// не возвращаются.
func (s *checkoutService) confirmAsync(intentID, cardNumber string) {
	if cardNumber == "" {
		cardNumber = simulator.CardSuccess
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		// Небольшая пауза, чтобы ответ с created-платежом ушел первым
		time.Sleep(100 * time.Millisecond)

		if _, err := s.intents.Confirm(context.Background(), intentID, cardNumber); err != nil {
			s.log.Warnw("Async payment confirmation failed", "intentID", intentID, "error", err)
		}
	}()
}

// Wait блокируется до завершения всех асинхронных подтверждений
func (s *checkoutService) Wait() {
	s.wg.Wait()
}
