package domain

import (
	"errors"
	"fmt"

	pkgerrors "github.com/kevin07696/hotel-payout-service/pkg/errors"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// Validation Errors (VALIDATION_*)
	ErrorCodeValidationFailed         ErrorCode = "VALIDATION_FAILED"
	ErrorCodeValidationAmountInvalid  ErrorCode = "VALIDATION_AMOUNT_INVALID"
	ErrorCodeValidationMissingField   ErrorCode = "VALIDATION_MISSING_FIELD"
	ErrorCodeValidationDateRange      ErrorCode = "VALIDATION_DATE_RANGE_INVALID"
	ErrorCodeValidationCommissionRate ErrorCode = "VALIDATION_COMMISSION_RATE_INVALID"

	// Payment Errors (PAYMENT_*)
	ErrorCodePaymentNotFound         ErrorCode = "PAYMENT_NOT_FOUND"
	ErrorCodePaymentInvalidState     ErrorCode = "PAYMENT_INVALID_STATE"
	ErrorCodePaymentDuplicateBooking ErrorCode = "PAYMENT_DUPLICATE_BOOKING"
	ErrorCodePaymentTxRefConflict    ErrorCode = "PAYMENT_TX_REF_CONFLICT"

	// Booking Errors (BOOKING_*)
	ErrorCodeBookingNotFound ErrorCode = "BOOKING_NOT_FOUND"

	// Payout precondition Errors
	ErrorCodeNoActiveContract ErrorCode = "CONTRACT_NO_ACTIVE"
	ErrorCodeNoBankAccount    ErrorCode = "BANK_ACCOUNT_MISSING"
	ErrorCodeNoRevenueForDate ErrorCode = "REVENUE_NONE_FOR_DATE"
	ErrorCodePayoutNotFound   ErrorCode = "PAYOUT_NOT_FOUND"
	ErrorCodePayoutConflict   ErrorCode = "PAYOUT_CONFLICT"

	// Payment Gateway Errors (GATEWAY_*)
	ErrorCodeGatewayError            ErrorCode = "GATEWAY_ERROR"
	ErrorCodeGatewayTimeout          ErrorCode = "GATEWAY_TIMEOUT"
	ErrorCodeGatewaySignatureInvalid ErrorCode = "GATEWAY_SIGNATURE_INVALID"

	// Concurrency Errors
	ErrorCodeBatchInProgress ErrorCode = "BATCH_IN_PROGRESS"

	// Internal Errors (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrorCodeDatabaseError ErrorCode = "INTERNAL_DATABASE_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError carrying the same code, so callers can write
// errors.Is(err, domain.ErrNoActiveContract) against an instance that was
// built with extra details.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// WithDetail returns a copy of the error with an additional detail field.
// The sentinel instances below are shared, so they are never mutated.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{
		Err:     e.Err,
		Details: details,
		Code:    e.Code,
		Message: e.Message,
	}
}

// WithMessage returns a copy of the error with a more specific message.
func (e *DomainError) WithMessage(format string, args ...interface{}) *DomainError {
	details := make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		details[k] = v
	}
	return &DomainError{
		Err:     e.Err,
		Details: details,
		Code:    e.Code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// NewValidationError builds a validation error pointing at the offending field.
func NewValidationError(code ErrorCode, field, message string) *DomainError {
	return NewDomainError(code, message).WithDetail("field", field)
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// GetErrorDetails extracts the details map from a DomainError, or nil.
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// IsNotFoundError checks if an error represents a "not found" condition
func IsNotFoundError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodePaymentNotFound ||
		code == ErrorCodeBookingNotFound ||
		code == ErrorCodePayoutNotFound
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeValidationFailed ||
		code == ErrorCodeValidationAmountInvalid ||
		code == ErrorCodeValidationMissingField ||
		code == ErrorCodeValidationDateRange ||
		code == ErrorCodeValidationCommissionRate
}

// IsPreconditionError checks if an error blocks a payout because required
// data (contract, bank account, revenue) is missing
func IsPreconditionError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeNoActiveContract ||
		code == ErrorCodeNoBankAccount ||
		code == ErrorCodeNoRevenueForDate
}

// IsConflictError checks if an error is a state or uniqueness conflict
func IsConflictError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodePaymentDuplicateBooking ||
		code == ErrorCodePaymentInvalidState ||
		code == ErrorCodePaymentTxRefConflict ||
		code == ErrorCodeBatchInProgress ||
		code == ErrorCodePayoutConflict
}

// IsGatewayError checks if an error is a payment gateway error
func IsGatewayError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeGatewayError ||
		code == ErrorCodeGatewayTimeout ||
		code == ErrorCodeGatewaySignatureInvalid
}

var (
	ErrValidationFailed        = NewDomainError(ErrorCodeValidationFailed, "validation failed")
	ErrInvalidAmount           = NewDomainError(ErrorCodeValidationAmountInvalid, "amount must be greater than zero")
	ErrValidationMissingField  = NewDomainError(ErrorCodeValidationMissingField, "required field missing")
	ErrInvalidDateRange        = NewDomainError(ErrorCodeValidationDateRange, "invalid date range")
	ErrInvalidCommissionRate   = NewDomainError(ErrorCodeValidationCommissionRate, "commission rate must be between 0 and 100")
	ErrPaymentNotFound         = NewDomainError(ErrorCodePaymentNotFound, "payment not found")
	ErrPaymentInvalidState     = NewDomainError(ErrorCodePaymentInvalidState, "payment is in invalid state for this operation")
	ErrDuplicateBookingPayment = NewDomainError(ErrorCodePaymentDuplicateBooking, "booking already has a paid payment")
	ErrTxRefConflict           = NewDomainError(ErrorCodePaymentTxRefConflict, "transaction reference already exists")
	ErrBookingNotFound         = NewDomainError(ErrorCodeBookingNotFound, "booking not found")
	ErrNoActiveContract        = NewDomainError(ErrorCodeNoActiveContract, "no active commission contract")
	ErrNoBankAccount           = NewDomainError(ErrorCodeNoBankAccount, "hotel has no active default bank account")
	ErrNoRevenueForDate        = NewDomainError(ErrorCodeNoRevenueForDate, "no paid revenue for date")
	ErrPayoutNotFound          = NewDomainError(ErrorCodePayoutNotFound, "payout not found")
	ErrPayoutConflict          = NewDomainError(ErrorCodePayoutConflict, "payout for this hotel and date is being written concurrently")
	ErrGatewayError            = NewDomainError(ErrorCodeGatewayError, "payment gateway error")
	ErrGatewayTimeout          = NewDomainError(ErrorCodeGatewayTimeout, "payment gateway timeout")
	ErrGatewaySignatureInvalid = NewDomainError(ErrorCodeGatewaySignatureInvalid, "gateway signature verification failed")
	ErrBatchInProgress         = NewDomainError(ErrorCodeBatchInProgress, "payout batch already running for this date")
	ErrInternalError           = NewDomainError(ErrorCodeInternalError, "internal server error")
	ErrDatabaseError           = NewDomainError(ErrorCodeDatabaseError, "database error")
)

// FromGatewayError classifies a provider failure as a gateway timeout or a
// generic gateway error, keeping the provider detail reachable via errors.As
func FromGatewayError(err *pkgerrors.GatewayError) error {
	if err == nil {
		return nil
	}
	code, message := ErrorCodeGatewayError, "payment gateway error"
	if err.Timeout {
		code, message = ErrorCodeGatewayTimeout, "payment gateway timeout"
	}
	return WrapError(code, message, err).
		WithDetail("provider", err.Provider).
		WithDetail("operation", err.Operation).
		WithDetail("provider_code", err.Code)
}
