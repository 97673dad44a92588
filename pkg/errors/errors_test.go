package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"message not found", ErrMessageNotFound, http.StatusNotFound},
		{"event not found", ErrEventNotFound, http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"invalid credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"invalid token", ErrInvalidToken, http.StatusUnauthorized},
		{"token expired", ErrTokenExpired, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"validation", ErrValidation, http.StatusBadRequest},
		{"user already exists", ErrUserAlreadyExists, http.StatusBadRequest},
		{"invalid state transition", ErrInvalidStateTransition, http.StatusConflict},
		{"timeout", ErrTimeout, http.StatusGatewayTimeout},
		{"dispatch failure", ErrDispatchFailure, http.StatusInternalServerError},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped validation", fmt.Errorf("content: %w", ErrValidation), http.StatusBadRequest},
		{"wrapped conflict", fmt.Errorf("accept: %w", ErrInvalidStateTransition), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromError(tt.err))
		})
	}
}

func TestDispatchFailureWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("%w: %v", ErrDispatchFailure, cause)

	assert.ErrorIs(t, err, ErrDispatchFailure)
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromError(err))
}
