package service

import (
	"errors"
	"fmt"

	"ReWear/internal/repo"

	"gorm.io/gorm"
)

// Ошибки валидации.
var (
	ErrValidation           = errors.New("validation failed")
	ErrConfirmationRequired = errors.New("confirmation required")
)

// Ошибки предусловий: операция отклонена до записи.
var (
	ErrItemUnavailable    = errors.New("item is no longer available")
	ErrSelfAction         = errors.New("cannot act on your own item")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrDuplicateRequest   = errors.New("swap request already pending")
	ErrItemChanged        = errors.New("item was modified concurrently")
	ErrEmailTaken         = errors.New("email already registered")
)

// Ошибки доступа.
var (
	ErrAccessDenied       = errors.New("access denied")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInconsistentState = errors.New("inconsistent state")
)

// ValidationError — ошибка конкретного поля; errors.Is(err, ErrValidation) == true.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// InsufficientPointsError несёт точную нехватку очков.
type InsufficientPointsError struct {
	Required  int64
	Available int64
	Shortfall int64
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: need %d more", e.Shortfall)
}

func (e *InsufficientPointsError) Is(target error) bool { return target == ErrInsufficientPoints }

func shortfall(required, available int64) error {
	return &InsufficientPointsError{Required: required, Available: available, Shortfall: required - available}
}

// mapRepoErr переводит ошибки хранилища в ошибки сервиса; прочие оборачивает с op.
func mapRepoErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, repo.ErrItemTaken):
		return ErrItemUnavailable
	case errors.Is(err, repo.ErrVersionConflict):
		return ErrItemChanged
	case errors.Is(err, repo.ErrSwapChanged):
		return ErrInvalidTransition
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// resultLabel — короткий код ошибки для меток метрик.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInsufficientPoints):
		return "insufficient_points"
	case errors.Is(err, ErrItemUnavailable):
		return "unavailable"
	case errors.Is(err, ErrSelfAction):
		return "self_action"
	case errors.Is(err, ErrDuplicateRequest):
		return "duplicate"
	case errors.Is(err, ErrAccessDenied):
		return "denied"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
