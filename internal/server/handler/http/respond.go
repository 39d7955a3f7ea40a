// Package http provides the HTTP handlers, response envelope and routing for
// the catalog API.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/aakash-sharma-github/dollop-music-backend/internal/apperr"
	"github.com/aakash-sharma-github/dollop-music-backend/internal/query"
)

// envelope is the uniform response shape: successes carry data and optional
// pagination, failures carry a message and a machine-readable code.
type envelope struct {
	Status     string          `json:"status"`
	Data       any             `json:"data,omitempty"`
	Pagination *query.PageInfo `json:"pagination,omitempty"`
	Message    string          `json:"message,omitempty"`
	Code       string          `json:"code,omitempty"`
}

// writeData writes a success envelope with the given HTTP status.
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Status: "success", Data: data})
}

// writePage writes a success envelope with pagination metadata.
func writePage(w http.ResponseWriter, data any, page query.PageInfo) {
	writeJSON(w, http.StatusOK, envelope{Status: "success", Data: data, Pagination: &page})
}

// WriteError maps an application error to its HTTP status and writes the
// error envelope. Unclassified errors become an opaque 500 so internal
// details never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	message := err.Error()
	if kind == apperr.KindInternal {
		message = "internal error"
	}
	writeJSON(w, statusFor(kind), envelope{Status: "error", Message: message, Code: codeFor(kind)})
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindInvalidCredentials, apperr.KindInvalidToken, apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound, apperr.KindNotMember:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(kind apperr.Kind) string {
	switch kind {
	case apperr.KindValidation:
		return "VALIDATION_ERROR"
	case apperr.KindInvalidCredentials:
		return "INVALID_CREDENTIALS"
	case apperr.KindInvalidToken:
		return "INVALID_TOKEN"
	case apperr.KindUnauthorized:
		return "UNAUTHORIZED"
	case apperr.KindForbidden:
		return "FORBIDDEN"
	case apperr.KindNotFound, apperr.KindNotMember:
		return "NOT_FOUND"
	case apperr.KindConflict:
		return "CONFLICT"
	case apperr.KindRateLimited:
		return "RATE_LIMITED"
	case apperr.KindUnavailable:
		return "UNAVAILABLE"
	default:
		return "INTERNAL"
	}
}
