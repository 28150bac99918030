package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/baharkarakas/rentacar-backend/internal/services"
)

type APIError struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// M is a shorthand for ad-hoc success bodies.
type M map[string]interface{}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes {"success":true, ...body}.
func OK(w http.ResponseWriter, status int, body M) {
	if body == nil {
		body = M{}
	}
	body["success"] = true
	WriteJSON(w, status, body)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Message: msg,
		Code:    code,
		Details: details,
	})
}

var kindStatus = map[services.Kind]int{
	services.KindValidation:   http.StatusBadRequest,
	services.KindNotFound:     http.StatusNotFound,
	services.KindForbidden:    http.StatusForbidden,
	services.KindUpload:       http.StatusBadGateway,
	services.KindPersistence:  http.StatusInternalServerError,
	services.KindUnauthorized: http.StatusUnauthorized,
}

// StatusFor maps a service error kind to its HTTP status.
func StatusFor(k services.Kind) int {
	if s, ok := kindStatus[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// WriteServiceError renders err without leaking its cause. Server-side
// failures are logged with the cause attached.
func WriteServiceError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var se *services.Error
	if !errors.As(err, &se) {
		log.Error("unhandled error", "method", r.Method, "path", r.URL.Path, "err", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		return
	}
	status := StatusFor(se.Kind)
	if status >= 500 {
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "kind", se.Kind, "err", err)
	}
	WriteError(w, status, string(se.Kind), se.Message, se.Details)
}
