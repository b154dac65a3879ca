package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_WrappedLookup(t *testing.T) {
	base := NewNotFound("registration", "42")
	wrapped := fmt.Errorf("get registration: %w", base)

	got, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Same(t, base, got)
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(wrapped))
}

func TestGetHTTPStatus_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
	assert.False(t, IsAppError(errors.New("boom")))
}

func TestNewInternal_HidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := NewInternal(cause)

	assert.Equal(t, "Internal server error", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, err.Details)
}

func TestNewInvalidTransition(t *testing.T) {
	err := NewInvalidTransition("issuance", "issued", "pending")

	assert.Equal(t, CodeInvalidTransition, err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Equal(t, "issued", err.Details["from"])
	assert.Equal(t, "pending", err.Details["to"])
	assert.True(t, HasCode(err, CodeInvalidTransition))
}

func TestNewRequiredField(t *testing.T) {
	err := NewRequiredField("email")

	assert.True(t, IsValidation(err))
	assert.Equal(t, "email is required", err.Message)
	assert.Equal(t, "email", err.Details["field"])
}

func TestNewFieldError(t *testing.T) {
	err := NewFieldError("unsupported file type", "payment_proof", "must be one of pdf, doc, docx, jpg, jpeg, png")

	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Equal(t, map[string]string{"payment_proof": "must be one of pdf, doc, docx, jpg, jpeg, png"}, err.Details["fields"])
}

func TestNewInsufficientStock(t *testing.T) {
	err := NewInsufficientStock("PEN-01", "5", "2")

	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.True(t, HasCode(err, CodeInsufficientStock))
	assert.Equal(t, "PEN-01", err.Details["item"])
	assert.False(t, HasCode(errors.New("x"), CodeInsufficientStock))
}
