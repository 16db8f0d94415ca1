package domain

import (
	"errors"
	"fmt"
)

// Application errors
var (
	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput неверные входные данные
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidOperation неверная операция
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrIntentFinalized платеж в конечном состоянии и неизменяем
	ErrIntentFinalized = errors.New("payment intent is already finalized")

	// ErrCardDeclined карта отклонена симулятором
	ErrCardDeclined = errors.New("card declined")
)

// DeclineError представляет симулированный отказ платежа.
// Reason повторяет формулировки реальных платежных провайдеров.
type DeclineError struct {
	Code   string
	Reason string
}

// Error реализует интерфейс error
func (e *DeclineError) Error() string {
	return e.Reason
}

// Is проверяет, является ли ошибка отказом карты
func (e *DeclineError) Is(target error) bool {
	return target == ErrCardDeclined
}

// NewDeclineError создает новую ошибку отказа платежа
func NewDeclineError(code, reason string) *DeclineError {
	return &DeclineError{Code: code, Reason: reason}
}

// NotFoundError представляет ошибку "не найдено" с указанием сущности
type NotFoundError struct {
	Entity string
	ID     string
}

// Error реализует интерфейс error
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Entity, e.ID)
}

// Is проверяет, является ли ошибка ошибкой типа "не найдено"
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError создает новую ошибку "не найдено"
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}
