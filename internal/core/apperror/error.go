// Package apperror defines the error type every layer returns to the HTTP edge.
// The error middleware renders it as {code, message, details}.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInternal   = "INTERNAL_ERROR"
	CodeValidation = "VALIDATION_ERROR"

	// 422
	CodeBusinessRule            = "BUSINESS_RULE_VIOLATION"
	CodeInsufficientStock       = "INSUFFICIENT_STOCK"
	CodeInvalidTransition       = "INVALID_STATUS_TRANSITION"
	CodePaymentRequiresApproval = "PAYMENT_REQUIRES_APPROVAL"

	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"

	// 409
	CodeConflict  = "CONFLICT"
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// AppError carries a machine-readable code, a message safe to show to the
// caller and the HTTP status it maps to. Err is logged, never rendered.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	HTTPStatus int            `json:"-"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetail sets one key of Details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause attaches the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

func newError(code string, status int, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// NewValidation is a 400 without field details.
func NewValidation(message string) *AppError {
	return newError(CodeValidation, http.StatusBadRequest, message)
}

// NewFieldErrors is a 400 whose details map each offending form field to its problem.
func NewFieldErrors(message string, fields map[string]string) *AppError {
	return NewValidation(message).WithDetail("fields", fields)
}

// NewFieldError is NewFieldErrors for a single field.
func NewFieldError(message, field, problem string) *AppError {
	return NewFieldErrors(message, map[string]string{field: problem})
}

// NewRequiredField reports a missing form field or file part.
func NewRequiredField(field string) *AppError {
	return NewFieldError(field+" is required", field, "is required").WithDetail("field", field)
}

func NewNotFound(entity string, id any) *AppError {
	return newError(CodeNotFound, http.StatusNotFound, entity+" not found").
		WithDetail("entity", entity).
		WithDetail("id", id)
}

// NewBusinessRule is a 422 with a caller-chosen code.
func NewBusinessRule(code, message string) *AppError {
	return newError(code, http.StatusUnprocessableEntity, message)
}

// NewInvalidTransition reports a status change the state machine does not allow.
func NewInvalidTransition(entity, from, to string) *AppError {
	return NewBusinessRule(CodeInvalidTransition,
		fmt.Sprintf("%s cannot move from %s to %s", entity, from, to)).
		WithDetail("from", from).
		WithDetail("to", to)
}

// NewInsufficientStock reports an issue larger than the item's current stock.
func NewInsufficientStock(itemCode string, requested, available string) *AppError {
	return NewBusinessRule(CodeInsufficientStock, "Insufficient stock").
		WithDetail("item", itemCode).
		WithDetail("requested", requested).
		WithDetail("available", available)
}

// NewInternal hides err behind a generic message.
func NewInternal(err error) *AppError {
	return newError(CodeInternal, http.StatusInternalServerError, "Internal server error").WithCause(err)
}

func NewUnauthorized(message string) *AppError {
	return newError(CodeUnauthorized, http.StatusUnauthorized, message)
}

func NewConflict(message string) *AppError {
	return newError(CodeConflict, http.StatusConflict, message)
}

// NewDuplicate reports a unique-key violation on entity.field.
func NewDuplicate(entity, field, value string) *AppError {
	return newError(CodeDuplicate, http.StatusConflict,
		fmt.Sprintf("%s with this %s already exists", entity, field)).
		WithDetail("entity", entity).
		WithDetail("field", field).
		WithDetail("value", value)
}

func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus maps any error to a status; non-AppErrors are 500.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func IsNotFound(err error) bool   { return HasCode(err, CodeNotFound) }
func IsValidation(err error) bool { return HasCode(err, CodeValidation) }

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
