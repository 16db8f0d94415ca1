package repository

import (
	"errors"

	"github.com/velstore/paysim/internal/domain"
)

var (
	// ErrNotFound запись не найдена. Совпадает с доменной ошибкой,
	// чтобы errors.Is работал сквозь слои без переупаковки.
	ErrNotFound = domain.ErrNotFound

	// ErrDuplicate дубликат записи
	ErrDuplicate = errors.New("duplicate record")

	// ErrConflict запись была изменена конкурентно и не совпала
	// с ожидаемым состоянием
	ErrConflict = errors.New("concurrent modification conflict")

	// ErrInvalidData неверные данные
	ErrInvalidData = errors.New("invalid data")
)
