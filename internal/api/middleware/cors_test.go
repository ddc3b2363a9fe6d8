package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dom/account-service/internal/api/middleware"
	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name          string
		origins       string
		requestOrigin string
		expectAllowed bool
	}{
		{"wildcard echoes origin", "*", "https://app.example.com", true},
		{"empty means any", "", "https://app.example.com", true},
		{"listed origin", "https://a.example.com, https://b.example.com", "https://b.example.com", true},
		{"unlisted origin", "https://a.example.com", "https://evil.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			handler := middleware.CORS(tt.origins)(next)

			req := httptest.NewRequest(http.MethodOptions, "/api/v1/users/login", nil)
			req.Header.Set("Origin", tt.requestOrigin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if tt.expectAllowed {
				assert.Equal(t, tt.requestOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}
