package errors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrUnitNotFound         = errors.New("financed unit not found")
	ErrAlreadyInitialized   = errors.New("interest periods already initialized")
	ErrDebtAlreadyActive    = errors.New("debt already initialized")
	ErrInvalidState         = errors.New("operation not allowed in current state")
	ErrAmountExceedsCeiling = errors.New("amount exceeds allowed ceiling")
	ErrConflict             = errors.New("concurrent modification detected")
)

// BusinessError represents a business logic error. Ceiling is set only for
// AMOUNT_EXCEEDS_CEILING so callers can render an actionable message.
type BusinessError struct {
	Code    string
	Message string
	Ceiling *decimal.Decimal
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeNotFound             = "UNIT_NOT_FOUND"
	ErrCodeAlreadyInitialized   = "ALREADY_INITIALIZED"
	ErrCodeDebtAlreadyActive    = "DEBT_ALREADY_ACTIVE"
	ErrCodeInvalidState         = "INVALID_STATE"
	ErrCodeAmountExceedsCeiling = "AMOUNT_EXCEEDS_CEILING"
	ErrCodeConflict             = "CONFLICT"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeCacheError           = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapUnitNotFound(unitID string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("Financed unit %s not found", unitID),
		ErrUnitNotFound,
	)
}

func WrapAlreadyInitialized(unitID string) *BusinessError {
	return NewBusinessError(
		ErrCodeAlreadyInitialized,
		fmt.Sprintf("Unit %s already has interest periods", unitID),
		ErrAlreadyInitialized,
	)
}

func WrapDebtAlreadyActive(unitID string) *BusinessError {
	return NewBusinessError(
		ErrCodeDebtAlreadyActive,
		fmt.Sprintf("Unit %s already has an active or settled debt", unitID),
		ErrDebtAlreadyActive,
	)
}

func WrapInvalidState(unitID, detail string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidState,
		fmt.Sprintf("Unit %s: %s", unitID, detail),
		ErrInvalidState,
	)
}

// WrapAmountExceedsCeiling reports a payment rejected against its policy cap.
// The ceiling rides along so the caller can say "exceeds accrued interest of X".
func WrapAmountExceedsCeiling(what string, amount, ceiling decimal.Decimal) *BusinessError {
	return &BusinessError{
		Code:    ErrCodeAmountExceedsCeiling,
		Message: fmt.Sprintf("Payment of %s exceeds %s of %s", amount.StringFixed(2), what, ceiling.StringFixed(2)),
		Ceiling: &ceiling,
		Err:     ErrAmountExceedsCeiling,
	}
}

func WrapConflict() *BusinessError {
	return NewBusinessError(
		ErrCodeConflict,
		"Concurrent modification, retry the operation",
		ErrConflict,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
