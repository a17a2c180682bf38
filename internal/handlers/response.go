// Package handlers holds the HTTP plumbing shared by the payment, payout
// and cron handlers: JSON responses, request validation and the mapping
// from domain errors to HTTP status codes.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kevin07696/hotel-payout-service/internal/domain"
)

// maxBodyBytes caps request bodies; gateway webhooks are a few kilobytes
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HTTPStatus maps an error returned by a service to a status code
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case domain.IsValidationError(err):
		return http.StatusBadRequest
	case domain.IsNotFoundError(err):
		return http.StatusNotFound
	case domain.IsPreconditionError(err):
		return http.StatusUnprocessableEntity
	case domain.IsConflictError(err):
		return http.StatusConflict
	case domain.IsDomainError(err, domain.ErrorCodeGatewaySignatureInvalid):
		return http.StatusUnauthorized
	case domain.IsDomainError(err, domain.ErrorCodeGatewayTimeout):
		return http.StatusGatewayTimeout
	case domain.IsGatewayError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes v with the given status
func WriteJSON(w http.ResponseWriter, logger *zap.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

// WriteError writes err as an ErrorResponse. Internal errors are logged and
// hidden from the caller.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := HTTPStatus(err)
	resp := ErrorResponse{Success: false}

	var de *domain.DomainError
	switch {
	case status == http.StatusInternalServerError:
		logger.Error("Request failed", zap.Error(err))
		resp.Error = "internal server error"
		resp.Code = string(domain.ErrorCodeInternalError)
	case errors.As(err, &de):
		resp.Error = de.Message
		resp.Code = string(de.Code)
		resp.Details = de.Details
	default:
		resp.Error = err.Error()
	}

	WriteJSON(w, logger, status, resp)
}

// WriteMessage writes a plain error message with status
func WriteMessage(w http.ResponseWriter, logger *zap.Logger, status int, message string) {
	WriteJSON(w, logger, status, ErrorResponse{Success: false, Error: message})
}

// Validator validates decoded request bodies and reports the first failing
// field by its JSON name
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that names fields by their json tag
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates s and returns a domain validation error for the first
// failing field
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.WrapError(domain.ErrorCodeValidationFailed, "invalid request", err)
	}

	fe := verrs[0]
	code := domain.ErrorCodeValidationFailed
	if fe.Tag() == "required" {
		code = domain.ErrorCodeValidationMissingField
	}
	return domain.NewValidationError(code, fe.Field(), fieldMessage(fe)).
		WithDetail("rule", fe.Tag())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must match %s", fe.Field(), fe.Param())
	case "gt", "gte", "lt", "lte", "min", "max":
		return fmt.Sprintf("%s must be %s %s", fe.Field(), fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// DecodeJSON reads a JSON body into dst and validates it. Malformed JSON is
// reported as a validation error on the body.
func (v *Validator) DecodeJSON(r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewValidationError(domain.ErrorCodeValidationMissingField, "body", "request body is required")
		}
		return domain.NewValidationError(domain.ErrorCodeValidationFailed, "body", "malformed JSON: "+err.Error())
	}
	return v.Struct(dst)
}
