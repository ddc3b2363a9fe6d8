// Package response writes the JSON envelopes every endpoint answers with.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/dom/account-service/internal/domain"
	"github.com/dom/account-service/internal/logging"
)

type Success struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

type Failure struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
	Errors     []string    `json:"errors"`
}

func JSON(w http.ResponseWriter, status int, data interface{}, message string) {
	write(w, status, Success{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// Error maps err onto the error envelope. Internal failures are logged with
// their cause and reported with a generic message.
func Error(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	e := domain.AsError(err)

	if e.Kind == domain.KindInternal || e.Kind == domain.KindUpload {
		log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		log.Debug(r.Context(), "request rejected", "method", r.Method, "path", r.URL.Path, "kind", e.Kind.String(), "message", e.Message)
	}

	details := e.Details
	if details == nil {
		details = []string{}
	}

	write(w, e.Status, Failure{
		StatusCode: e.Status,
		Data:       nil,
		Message:    e.Message,
		Success:    false,
		Errors:     details,
	})
}

func write(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
