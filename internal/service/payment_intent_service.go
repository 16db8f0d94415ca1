package service

import (
	"context"
	"errors"
	"strings"

	"github.com/velstore/paysim/internal/domain"
	"github.com/velstore/paysim/internal/eventlog"
	"github.com/velstore/paysim/internal/metrics"
	"github.com/velstore/paysim/internal/repository"
	"github.com/velstore/paysim/internal/simulator"
	"github.com/velstore/paysim/pkg/logger"
)

// PaymentIntentService интерфейс сервиса платежных намерений
type PaymentIntentService interface {
	GetAll(ctx context.Context) ([]domain.PaymentIntent, error)
	GetByID(ctx context.Context, id string) (domain.PaymentIntent, error)
	GetByCustomerID(ctx context.Context, customerID string) ([]domain.PaymentIntent, error)

	// Create создает платежное намерение в статусе requires_payment_method
	Create(ctx context.Context, req domain.PaymentIntentRequest) (domain.PaymentIntent, error)

	// Confirm подтверждает платеж указанной тестовой картой. Пустой номер
	// карты трактуется как всегда успешная карта. Отказ переводит платеж
	// в canceled и возвращает DeclineError.
	Confirm(ctx context.Context, id, cardNumber string) (domain.PaymentIntent, error)

	// SimulateFailure принудительно отменяет платеж с указанной причиной
	// и публикует событие payment_intent.payment_failed
	SimulateFailure(ctx context.Context, id, reason string) (domain.PaymentIntent, error)
}

type paymentIntentService struct {
	repo       repository.PaymentIntentRepository
	customers  CustomerService
	delayer    *simulator.Delayer
	injector   *simulator.FailureInjector
	dispatcher WebhookDispatcher
	journal    *eventlog.Log
	metrics    metrics.SimulatorMetrics
	log        *logger.Logger
}

// NewPaymentIntentService создает новый сервис платежных намерений
func NewPaymentIntentService(
	repo repository.PaymentIntentRepository,
	customers CustomerService,
	delayer *simulator.Delayer,
	injector *simulator.FailureInjector,
	dispatcher WebhookDispatcher,
	journal *eventlog.Log,
	m metrics.SimulatorMetrics,
	log *logger.Logger,
) PaymentIntentService {
	return &paymentIntentService{
		repo:       repo,
		customers:  customers,
		delayer:    delayer,
		injector:   injector,
		dispatcher: dispatcher,
		journal:    journal,
		metrics:    m,
		log:        log,
	}
}

func (s *paymentIntentService) GetAll(ctx context.Context) ([]domain.PaymentIntent, error) {
	s.log.Debug("Getting all payment intents")
	return s.repo.GetAll(ctx)
}

func (s *paymentIntentService) GetByID(ctx context.Context, id string) (domain.PaymentIntent, error) {
	s.log.Debug("Getting payment intent by ID: %s", id)
	return s.repo.GetByID(ctx, id)
}

func (s *paymentIntentService) GetByCustomerID(ctx context.Context, customerID string) ([]domain.PaymentIntent, error) {
	s.log.Debug("Getting payment intents for customer: %s", customerID)
	return s.repo.GetByCustomerID(ctx, customerID)
}

// Create создает платежное намерение в статусе requires_payment_method
func (s *paymentIntentService) Create(ctx context.Context, req domain.PaymentIntentRequest) (domain.PaymentIntent, error) {
	s.log.Debugw("Creating payment intent", "amount", req.Amount, "currency", req.Currency)

	if req.Amount <= 0 {
		return domain.PaymentIntent{}, domain.ErrInvalidInput
	}

	// У платежа всегда есть владелец: указанный клиент должен существовать,
	// без клиента создается гостевой со сгенерированным email
	if req.CustomerID == "" {
		guest, err := s.customers.CreateOrRetrieve(ctx, "", "", "")
		if err != nil {
			s.log.Error("Failed to create guest customer: %v", err)
			return domain.PaymentIntent{}, err
		}
		req.CustomerID = guest.ID
	} else if _, err := s.customers.GetByID(ctx, req.CustomerID); err != nil {
		return domain.PaymentIntent{}, domain.NewNotFoundError("customer", req.CustomerID)
	}

	if err := s.delayer.Wait(ctx, simulator.OpCreate); err != nil {
		return domain.PaymentIntent{}, err
	}

	id := domain.NewID(domain.IDPrefixPaymentIntent)
	intent := domain.PaymentIntent{
		ID:           id,
		Amount:       req.Amount,
		Currency:     strings.ToLower(req.Currency),
		Status:       domain.PaymentIntentStatusRequiresPaymentMethod,
		ClientSecret: domain.NewClientSecret(id),
		CustomerID:   req.CustomerID,
		Metadata:     req.Metadata,
	}

	created, err := s.repo.Create(ctx, intent)
	if err != nil {
		s.log.Error("Failed to create payment intent: %v", err)
		return domain.PaymentIntent{}, err
	}

	s.journal.Append("payment_intent.created", map[string]interface{}{
		"intent_id": created.ID,
		"amount":    created.Amount,
		"currency":  created.Currency,
	})
	s.metrics.IncIntentCreated(created.Currency)

	s.log.Infow("Created payment intent", "intentID", created.ID, "amount", created.Amount)
	return created, nil
}

// Confirm подтверждает платеж тестовой картой
func (s *paymentIntentService) Confirm(ctx context.Context, id, cardNumber string) (domain.PaymentIntent, error) {
	s.log.Debugw("Confirming payment intent", "intentID", id)

	intent, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.PaymentIntent{}, domain.NewNotFoundError("payment intent", id)
	}

	if intent.Terminal() {
		s.log.Warnw("Attempt to confirm finalized payment intent", "intentID", id, "status", intent.Status)
		return intent, domain.ErrIntentFinalized
	}
	if intent.Status == domain.PaymentIntentStatusProcessing {
		s.log.Warnw("Attempt to confirm payment intent already in processing", "intentID", id)
		return intent, domain.ErrIntentFinalized
	}

	// Отказ по номеру тестовой карты, без задержки обработки
	if declineErr := s.injector.Check(cardNumber); declineErr != nil {
		intent.Status = domain.PaymentIntentStatusCanceled
		intent.LastError = declineErr.Reason
		if err := s.repo.UpdateIfStatus(ctx, intent, domain.PaymentIntentStatusRequiresPaymentMethod); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return s.lostConfirmRace(ctx, id)
			}
			return domain.PaymentIntent{}, err
		}

		s.journal.Append("payment_intent.declined", map[string]interface{}{
			"intent_id": intent.ID,
			"code":      declineErr.Code,
		})
		s.metrics.IncIntentFailed(intent.Currency, declineErr.Code)
		s.metrics.ObserveIntentAmount(float64(intent.Amount), intent.Currency, string(intent.Status))

		s.dispatcher.Dispatch(domain.WebhookEventTypePaymentIntentFailed, intent)

		s.log.Infow("Payment intent declined", "intentID", intent.ID, "code", declineErr.Code)
		return intent, declineErr
	}

	// processing виден наблюдателям на время симулированной обработки.
	// Переход условный: из двух конкурирующих подтверждений намерение
	// захватывает ровно одно, второе получает ErrIntentFinalized.
	intent.Status = domain.PaymentIntentStatusProcessing
	if err := s.repo.UpdateIfStatus(ctx, intent, domain.PaymentIntentStatusRequiresPaymentMethod); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return s.lostConfirmRace(ctx, id)
		}
		return domain.PaymentIntent{}, err
	}

	if err := s.delayer.Wait(ctx, simulator.OpConfirm); err != nil {
		return domain.PaymentIntent{}, err
	}

	intent.Status = domain.PaymentIntentStatusSucceeded
	intent.LastError = ""
	if err := s.repo.UpdateIfStatus(ctx, intent, domain.PaymentIntentStatusProcessing); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return s.lostConfirmRace(ctx, id)
		}
		return domain.PaymentIntent{}, err
	}

	s.journal.Append("payment_intent.succeeded", map[string]interface{}{
		"intent_id": intent.ID,
		"amount":    intent.Amount,
	})
	s.metrics.IncIntentSucceeded(intent.Currency)
	s.metrics.ObserveIntentAmount(float64(intent.Amount), intent.Currency, string(intent.Status))

	s.dispatcher.Dispatch(domain.WebhookEventTypePaymentIntentSucceeded, intent)

	s.log.Infow("Payment intent succeeded", "intentID", intent.ID, "amount", intent.Amount)
	return intent, nil
}

// lostConfirmRace перечитывает намерение после проигранного условного
// перехода и сообщает вызывающему, что платеж финализирован конкурентно
func (s *paymentIntentService) lostConfirmRace(ctx context.Context, id string) (domain.PaymentIntent, error) {
	intent, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.PaymentIntent{}, domain.NewNotFoundError("payment intent", id)
	}

	s.log.Warnw("Concurrent payment intent finalization", "intentID", id, "status", intent.Status)
	return intent, domain.ErrIntentFinalized
}

// SimulateFailure принудительно отменяет платеж с указанной причиной
func (s *paymentIntentService) SimulateFailure(ctx context.Context, id, reason string) (domain.PaymentIntent, error) {
	s.log.Debugw("Simulating payment failure", "intentID", id)

	intent, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.PaymentIntent{}, domain.NewNotFoundError("payment intent", id)
	}

	if intent.Terminal() {
		return intent, domain.ErrIntentFinalized
	}

	if reason == "" {
		reason = "Simulated payment failure."
	}

	expected := intent.Status
	intent.Status = domain.PaymentIntentStatusCanceled
	intent.LastError = reason
	if err := s.repo.UpdateIfStatus(ctx, intent, expected); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return s.lostConfirmRace(ctx, id)
		}
		return domain.PaymentIntent{}, err
	}

	s.journal.Append("payment_intent.failure_simulated", map[string]interface{}{
		"intent_id": intent.ID,
		"reason":    reason,
	})
	s.metrics.IncIntentFailed(intent.Currency, "simulated_failure")

	s.dispatcher.Dispatch(domain.WebhookEventTypePaymentIntentFailed, intent)

	s.log.Infow("Simulated payment failure", "intentID", intent.ID, "reason", reason)
	return intent, nil
}
