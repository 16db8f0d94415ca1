package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/velstore/paysim/internal/domain"
	"github.com/velstore/paysim/pkg/logger"
)

// CustomerRepository интерфейс для работы с клиентами.
// Клиенты никогда не удаляются (время жизни процесса).
type CustomerRepository interface {
	GetAll(ctx context.Context) ([]domain.Customer, error)
	GetByID(ctx context.Context, id string) (domain.Customer, error)
	FindByUserID(ctx context.Context, userID string) (domain.Customer, error)
	FindByEmail(ctx context.Context, email string) (domain.Customer, error)
	Create(ctx context.Context, customer domain.Customer) (domain.Customer, error)
	Update(ctx context.Context, customer domain.Customer) error
	Count(ctx context.Context) int
}

// InMemoryCustomerRepository реализация репозитория в памяти
type InMemoryCustomerRepository struct {
	customers map[string]domain.Customer
	mutex     sync.RWMutex
	log       *logger.Logger
}

// NewInMemoryCustomerRepository создает новый репозиторий клиентов в памяти
func NewInMemoryCustomerRepository(log *logger.Logger) *InMemoryCustomerRepository {
	return &InMemoryCustomerRepository{
		customers: make(map[string]domain.Customer),
		log:       log,
	}
}

// GetAll возвращает всех клиентов
func (r *InMemoryCustomerRepository) GetAll(ctx context.Context) ([]domain.Customer, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	customers := make([]domain.Customer, 0, len(r.customers))
	for _, customer := range r.customers {
		customers = append(customers, customer)
	}

	return customers, nil
}

// GetByID возвращает клиента по ID
func (r *InMemoryCustomerRepository) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	customer, exists := r.customers[id]
	if !exists {
		return domain.Customer{}, ErrNotFound
	}

	return customer, nil
}

// FindByUserID возвращает клиента с указанным внешним идентификатором
// пользователя в метаданных
func (r *InMemoryCustomerRepository) FindByUserID(ctx context.Context, userID string) (domain.Customer, error) {
	if userID == "" {
		return domain.Customer{}, ErrNotFound
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, customer := range r.customers {
		if customer.UserID() == userID {
			return customer, nil
		}
	}

	return domain.Customer{}, ErrNotFound
}

// FindByEmail возвращает первого клиента с указанным email.
// Линейный поиск достаточен для масштаба симулятора.
func (r *InMemoryCustomerRepository) FindByEmail(ctx context.Context, email string) (domain.Customer, error) {
	if email == "" {
		return domain.Customer{}, ErrNotFound
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, customer := range r.customers {
		if strings.EqualFold(customer.Email, email) {
			return customer, nil
		}
	}

	return domain.Customer{}, ErrNotFound
}

// Create создает нового клиента
func (r *InMemoryCustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()

	r.customers[customer.ID] = customer

	return customer, nil
}

// Update обновляет существующего клиента
func (r *InMemoryCustomerRepository) Update(ctx context.Context, customer domain.Customer) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing, exists := r.customers[customer.ID]
	if !exists {
		return ErrNotFound
	}

	customer.CreatedAt = existing.CreatedAt
	customer.UpdatedAt = time.Now()

	r.customers[customer.ID] = customer

	return nil
}

// Count возвращает число клиентов
func (r *InMemoryCustomerRepository) Count(ctx context.Context) int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.customers)
}
