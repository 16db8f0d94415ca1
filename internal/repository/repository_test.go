package repository

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velstore/paysim/internal/domain"
	"github.com/velstore/paysim/pkg/logger"
)

func newTestLogger() *logger.Logger {
	log := logger.New(logger.FATAL)
	log.SetOutput(io.Discard)
	return log
}

func TestInMemoryCustomerRepository_FindByEmailCaseInsensitive(t *testing.T) {
	repo := NewInMemoryCustomerRepository(newTestLogger())
	ctx := context.Background()

	_, err := repo.Create(ctx, domain.Customer{ID: "cus_1", Email: "User@Example.com"})
	require.NoError(t, err)

	found, err := repo.FindByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "cus_1", found.ID)

	_, err = repo.FindByEmail(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryCustomerRepository_FindByUserID(t *testing.T) {
	repo := NewInMemoryCustomerRepository(newTestLogger())
	ctx := context.Background()

	_, err := repo.Create(ctx, domain.Customer{
		ID:       "cus_2",
		Email:    "a@example.com",
		Metadata: map[string]string{domain.MetadataUserIDKey: "user-7"},
	})
	require.NoError(t, err)

	found, err := repo.FindByUserID(ctx, "user-7")
	require.NoError(t, err)
	assert.Equal(t, "cus_2", found.ID)

	_, err = repo.FindByUserID(ctx, "user-8")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindByUserID(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryCustomerRepository_UpdatePreservesCreatedAt(t *testing.T) {
	repo := NewInMemoryCustomerRepository(newTestLogger())
	ctx := context.Background()

	created, err := repo.Create(ctx, domain.Customer{ID: "cus_3", Email: "b@example.com"})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	created.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, created))

	stored, err := repo.GetByID(ctx, "cus_3")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Name)
	assert.Equal(t, created.CreatedAt.UnixNano(), stored.CreatedAt.UnixNano())
	assert.True(t, stored.UpdatedAt.After(stored.CreatedAt))
}

func TestInMemoryPaymentIntentRepository_GetByCustomerID(t *testing.T) {
	repo := NewInMemoryPaymentIntentRepository(newTestLogger())
	ctx := context.Background()

	for _, id := range []string{"pi_1", "pi_2"} {
		_, err := repo.Create(ctx, domain.PaymentIntent{ID: id, CustomerID: "cus_x", Amount: 100})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, domain.PaymentIntent{ID: "pi_3", CustomerID: "cus_y", Amount: 100})
	require.NoError(t, err)

	intents, err := repo.GetByCustomerID(ctx, "cus_x")
	require.NoError(t, err)
	assert.Len(t, intents, 2)

	assert.Equal(t, 3, repo.Count(ctx))
}

func TestInMemoryPaymentIntentRepository_UpdateIfStatus(t *testing.T) {
	repo := NewInMemoryPaymentIntentRepository(newTestLogger())
	ctx := context.Background()

	created, err := repo.Create(ctx, domain.PaymentIntent{
		ID:     "pi_cas",
		Amount: 100,
		Status: domain.PaymentIntentStatusRequiresPaymentMethod,
	})
	require.NoError(t, err)

	created.Status = domain.PaymentIntentStatusProcessing
	require.NoError(t, repo.UpdateIfStatus(ctx, created, domain.PaymentIntentStatusRequiresPaymentMethod))

	// Переход с устаревшим ожидаемым статусом отклоняется, запись не меняется
	stale := created
	stale.Status = domain.PaymentIntentStatusCanceled
	err = repo.UpdateIfStatus(ctx, stale, domain.PaymentIntentStatusRequiresPaymentMethod)
	assert.ErrorIs(t, err, ErrConflict)

	stored, err := repo.GetByID(ctx, "pi_cas")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentIntentStatusProcessing, stored.Status)

	err = repo.UpdateIfStatus(ctx, domain.PaymentIntent{ID: "pi_missing"}, domain.PaymentIntentStatusProcessing)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryPaymentIntentRepository_UpdateNotFound(t *testing.T) {
	repo := NewInMemoryPaymentIntentRepository(newTestLogger())

	err := repo.Update(context.Background(), domain.PaymentIntent{ID: "pi_missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemorySubscriptionRepository_CRUD(t *testing.T) {
	repo := NewInMemorySubscriptionRepository(newTestLogger())
	ctx := context.Background()

	created, err := repo.Create(ctx, domain.Subscription{
		ID:         "sub_1",
		CustomerID: "cus_z",
		Status:     domain.SubscriptionStatusActive,
	})
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	created.Status = domain.SubscriptionStatusCanceled
	require.NoError(t, repo.Update(ctx, created))

	stored, err := repo.GetByID(ctx, "sub_1")
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusCanceled, stored.Status)

	subs, err := repo.GetByCustomerID(ctx, "cus_z")
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	_, err = repo.GetByID(ctx, "sub_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
