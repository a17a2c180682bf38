package errors

import (
	"fmt"
)

// GatewayError describes a failed call to an external payment provider
type GatewayError struct {
	Provider    string // payos, vietqr
	Operation   string
	Code        string // provider response code, empty on transport failure
	Description string
	StatusCode  int  // HTTP status, 0 when no response arrived
	Timeout     bool // deadline exceeded before a response
	Err         error
}

func (e *GatewayError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("%s %s: timed out", e.Provider, e.Operation)
	case e.Code != "":
		return fmt.Sprintf("%s %s: code %s: %s", e.Provider, e.Operation, e.Code, e.Description)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: http %d: %s", e.Provider, e.Operation, e.StatusCode, e.Description)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Operation, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Operation, e.Description)
}

// Unwrap returns the transport error, if any
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError creates a gateway error from a provider response
func NewGatewayError(provider, operation, code, description string) *GatewayError {
	return &GatewayError{
		Provider:    provider,
		Operation:   operation,
		Code:        code,
		Description: description,
	}
}
