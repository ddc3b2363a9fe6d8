package domain_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dom/account-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_StatusCode(t *testing.T) {
	tests := []struct {
		kind domain.Kind
		want int
	}{
		{domain.KindValidation, http.StatusBadRequest},
		{domain.KindConflict, http.StatusConflict},
		{domain.KindUpload, http.StatusInternalServerError},
		{domain.KindUnauthorized, http.StatusUnauthorized},
		{domain.KindNotFound, http.StatusNotFound},
		{domain.KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.StatusCode())
			assert.Equal(t, tt.want, domain.NewError(tt.kind, "x").Status)
		})
	}
}

func TestError_WithStatus(t *testing.T) {
	err := domain.UnauthorizedError("Username or password is incorrect").WithStatus(http.StatusBadRequest)

	assert.Equal(t, domain.KindUnauthorized, err.Kind)
	assert.Equal(t, http.StatusBadRequest, err.Status)
}

func TestAsError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, domain.AsError(nil))
	})

	t.Run("structured error passes through wrapping", func(t *testing.T) {
		orig := domain.ConflictError("taken")
		wrapped := fmt.Errorf("register: %w", orig)

		got := domain.AsError(wrapped)
		require.NotNil(t, got)
		assert.Same(t, orig, got)
		assert.Equal(t, domain.KindConflict, domain.KindOf(wrapped))
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		cause := errors.New("db down")
		got := domain.AsError(cause)

		assert.Equal(t, domain.KindInternal, got.Kind)
		assert.Equal(t, "Internal server error", got.Message)
		assert.ErrorIs(t, got, cause)
	})
}

func TestUploadError_Unwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := domain.UploadError("Error uploading avatar", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "Error uploading avatar")
}
