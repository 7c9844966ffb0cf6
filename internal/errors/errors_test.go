package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreError_Unwrap(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := NewStoreError("create_session", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "create_session")
}

func TestIsClientError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		client bool
	}{
		{"invalid input", ErrInvalidInput, true},
		{"auth failure", ErrAuthFailure, true},
		{"not found", ErrNotFound, true},
		{"conflict", ErrConflict, true},
		{"wrapped conflict", fmt.Errorf("start: %w", ErrConflict), true},
		{"unavailable", ErrUnavailable, false},
		{"store failure", NewStoreError("query", errors.New("locked")), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.client, IsClientError(tt.err))
		})
	}
}
