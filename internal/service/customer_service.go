package service

import (
	"context"
	"fmt"
	"time"

	"github.com/velstore/paysim/internal/domain"
	"github.com/velstore/paysim/internal/eventlog"
	"github.com/velstore/paysim/internal/repository"
	"github.com/velstore/paysim/pkg/logger"
)

// CustomerService интерфейс сервиса для работы с клиентами
type CustomerService interface {
	GetAll(ctx context.Context) ([]domain.Customer, error)
	GetByID(ctx context.Context, id string) (domain.Customer, error)
	Create(ctx context.Context, req domain.CustomerRequest) (domain.Customer, error)

	// CreateOrRetrieve ищет клиента по внешнему идентификатору пользователя,
	// затем по email; если не находит - создает нового. Повторный вызов
	// с тем же идентификатором возвращает того же клиента, даже если
	// email отличается.
	CreateOrRetrieve(ctx context.Context, userID, email, name string) (domain.Customer, error)
}

type customerService struct {
	repo    repository.CustomerRepository
	journal *eventlog.Log
	log     *logger.Logger
}

// NewCustomerService создает новый сервис для работы с клиентами
func NewCustomerService(repo repository.CustomerRepository, journal *eventlog.Log, log *logger.Logger) CustomerService {
	return &customerService{
		repo:    repo,
		journal: journal,
		log:     log,
	}
}

func (s *customerService) GetAll(ctx context.Context) ([]domain.Customer, error) {
	s.log.Debug("Getting all customers")
	return s.repo.GetAll(ctx)
}

func (s *customerService) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	s.log.Debug("Getting customer by ID: %s", id)
	return s.repo.GetByID(ctx, id)
}

func (s *customerService) Create(ctx context.Context, req domain.CustomerRequest) (domain.Customer, error) {
	s.log.Debug("Creating customer with email: %s", req.Email)

	metadata := make(map[string]string, len(req.Metadata)+1)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	if req.UserID != "" {
		metadata[domain.MetadataUserIDKey] = req.UserID
	}

	customer := domain.Customer{
		ID:       domain.NewID(domain.IDPrefixCustomer),
		Email:    req.Email,
		Name:     req.Name,
		Metadata: metadata,
	}

	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		s.log.Error("Failed to create customer: %v", err)
		return domain.Customer{}, err
	}

	s.journal.Append("customer.created", map[string]interface{}{
		"customer_id": created.ID,
		"email":       created.Email,
	})

	s.log.Info("Created customer with ID: %s", created.ID)
	return created, nil
}

func (s *customerService) CreateOrRetrieve(ctx context.Context, userID, email, name string) (domain.Customer, error) {
	s.log.Debug("Resolving customer: userID=%s email=%s", userID, email)

	// 1. Ищем по внешнему идентификатору пользователя в метаданных
	if customer, err := s.repo.FindByUserID(ctx, userID); err == nil {
		s.log.Debug("Found existing customer by user ID: %s", customer.ID)
		return customer, nil
	}

	// 2. Ищем по email
	if customer, err := s.repo.FindByEmail(ctx, email); err == nil {
		// Привязываем внешний идентификатор, если его еще нет
		if userID != "" && customer.UserID() == "" {
			if customer.Metadata == nil {
				customer.Metadata = make(map[string]string)
			}
			customer.Metadata[domain.MetadataUserIDKey] = userID
			if err := s.repo.Update(ctx, customer); err != nil {
				s.log.Warn("Failed to link user ID to customer %s: %v", customer.ID, err)
			}
		}
		s.log.Debug("Found existing customer by email: %s", customer.ID)
		return customer, nil
	}

	// 3. Клиент не найден - создаем нового
	if email == "" {
		email = fmt.Sprintf("guest_%d@paysim.local", time.Now().UnixNano())
	}

	return s.Create(ctx, domain.CustomerRequest{
		Email:  email,
		Name:   name,
		UserID: userID,
	})
}
