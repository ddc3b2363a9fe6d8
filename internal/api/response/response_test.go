package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dom/account-service/internal/domain"
	"github.com/dom/account-service/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	JSON(rec, http.StatusCreated, map[string]string{"username": "alice"}, "User registered successfully")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(201), body["statusCode"])
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "User registered successfully", body["message"])
	assert.Equal(t, "alice", body["data"].(map[string]any)["username"])
}

func TestError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
		wantErrors  []any
	}{
		{
			name:        "validation with details",
			err:         domain.ValidationError("Fullname is required", "Fullname is required", "Email is required"),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Fullname is required",
			wantErrors:  []any{"Fullname is required", "Email is required"},
		},
		{
			name:        "status override",
			err:         domain.UnauthorizedError("Username or password is incorrect").WithStatus(http.StatusBadRequest),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Username or password is incorrect",
			wantErrors:  []any{},
		},
		{
			name:        "unstructured error hides cause",
			err:         errors.New("pq: connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Internal server error",
			wantErrors:  []any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			Error(rec, req, logging.Nop(), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, float64(tt.wantStatus), body["statusCode"])
			assert.Equal(t, false, body["success"])
			assert.Nil(t, body["data"])
			assert.Equal(t, tt.wantMessage, body["message"])
			assert.Equal(t, tt.wantErrors, body["errors"])
		})
	}
}
