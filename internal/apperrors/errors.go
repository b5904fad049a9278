package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInsufficientFunds indicates that a debit would take an account balance below zero.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInvalidStateTransition indicates that a state-machine precondition was violated.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// ErrAlreadyProcessed indicates that the referenced entity was already handled,
// e.g. an AWB that already carries a weight discrepancy or an already-remitted shipment.
var ErrAlreadyProcessed = errors.New("already processed")

// ErrUnavailable indicates a storage-layer failure. The request may be retried;
// it must never be reported as success or turned into a fabricated result.
var ErrUnavailable = errors.New("storage unavailable")

// AppError carries an internal status code and an optional wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// InsufficientFundsError reports a rejected debit together with the current
// balance, so the caller can decide next steps without guessing.
type InsufficientFundsError struct {
	AccountID string
	Balance   decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on account %s: balance %s, requested debit %s",
		e.AccountID, e.Balance.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// StateTransitionError reports a rejected state-machine operation together with
// the entity's current state.
type StateTransitionError struct {
	Entity    string
	EntityID  string
	FromState string
	ToState   string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("%s %s cannot move from %s to %s", e.Entity, e.EntityID, e.FromState, e.ToState)
}

func (e *StateTransitionError) Unwrap() error {
	return ErrInvalidStateTransition
}
