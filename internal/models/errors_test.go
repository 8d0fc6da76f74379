package models

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", NewValidationError("bad input"), fiber.StatusBadRequest},
		{"invalid operation", NewInvalidOperationError("no"), fiber.StatusBadRequest},
		{"not found", NewNotFoundError("User", 7), fiber.StatusNotFound},
		{"unauthorized", NewUnauthorizedError("who"), fiber.StatusUnauthorized},
		{"forbidden", NewForbiddenError("denied"), fiber.StatusForbidden},
		{"conflict", NewConflictError("taken"), fiber.StatusConflict},
		{"internal", NewInternalError(errors.New("db down")), fiber.StatusInternalServerError},
		{"plain error", errors.New("anything"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, StatusFor(tt.err))
		})
	}
}

func TestStatusFor_WrappedAppError(t *testing.T) {
	err := fmtWrap(NewNotFoundError("Post", 3))
	assert.Equal(t, fiber.StatusNotFound, StatusFor(err))
}

func fmtWrap(err error) error {
	return errors.Join(errors.New("context"), err)
}

func TestAppError_Messages(t *testing.T) {
	assert.Equal(t, "User 42 not found", NewNotFoundError("User", 42).Error())

	wrapped := NewInternalError(errors.New("connection refused"))
	assert.Contains(t, wrapped.Error(), "connection refused")
	assert.Equal(t, "Internal server error", wrapped.Message)
	assert.ErrorContains(t, wrapped.Unwrap(), "connection refused")
}
