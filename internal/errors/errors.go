// ABOUTME: Standardized JSON error responses for panel HTTP handlers.
// ABOUTME: Maps dispatcher and store errors onto status codes and machine-readable codes.

package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/2389/panel/internal/backend"
	"github.com/2389/panel/internal/store"
	"github.com/2389/panel/panel"
)

// ErrorResponse is the error body every panel endpoint returns.
//
// Usage:
//
//	WriteError(w, http.StatusBadRequest, ErrInvalidBody, "The request body is malformed")
type ErrorResponse struct {
	Code    string `json:"code"`              // Machine-readable error code (e.g., "unknown_action")
	Message string `json:"message"`           // Human-readable error message
	Status  int    `json:"status"`            // HTTP status code
	Field   string `json:"field,omitempty"`   // Field that failed validation
	Details string `json:"details,omitempty"` // Additional context
}

// WriteError writes a standardized error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeErrorResponse(w, ErrorResponse{
		Code:    code,
		Message: message,
		Status:  status,
	})
}

// WriteErrorWithField writes an error response naming the field that caused it.
func WriteErrorWithField(w http.ResponseWriter, status int, code, message, field string) {
	writeErrorResponse(w, ErrorResponse{
		Code:    code,
		Message: message,
		Status:  status,
		Field:   field,
	})
}

// WriteErrorWithDetails writes an error response with additional details.
func WriteErrorWithDetails(w http.ResponseWriter, status int, code, message, details string) {
	writeErrorResponse(w, ErrorResponse{
		Code:    code,
		Message: message,
		Status:  status,
		Details: details,
	})
}

// FromError classifies an error returned by the resolver or the store.
//
//	panel.ErrModelNotFound     -> 404 not_found
//	*panel.UnknownActionError  -> 400 unknown_action
//	panel.ErrNoHandler         -> 501 not_implemented
//	store.ErrRecordNotFound    -> 404 not_found
//	store.ErrInvalidField      -> 400 invalid_request
//	*backend.FieldError        -> 400 validation_failed
//	anything else              -> 500 internal_error
func FromError(err error) ErrorResponse {
	var unknown *panel.UnknownActionError
	var field *backend.FieldError
	switch {
	case stderrors.As(err, &unknown):
		return ErrorResponse{Code: ErrUnknownAction, Message: err.Error(), Status: http.StatusBadRequest, Field: unknown.Action}
	case stderrors.Is(err, panel.ErrModelNotFound), stderrors.Is(err, store.ErrRecordNotFound):
		return ErrorResponse{Code: ErrNotFound, Message: err.Error(), Status: http.StatusNotFound}
	case stderrors.Is(err, panel.ErrNoHandler):
		return ErrorResponse{Code: ErrNotImplemented, Message: err.Error(), Status: http.StatusNotImplemented}
	case stderrors.As(err, &field):
		return ErrorResponse{Code: ErrValidationFailed, Message: err.Error(), Status: http.StatusBadRequest, Field: field.Field}
	case stderrors.Is(err, store.ErrInvalidField):
		return ErrorResponse{Code: ErrInvalidRequest, Message: err.Error(), Status: http.StatusBadRequest}
	default:
		return ErrorResponse{Code: ErrInternal, Message: "internal server error", Status: http.StatusInternalServerError, Details: err.Error()}
	}
}

// WriteServiceError writes the response FromError picks for err.
func WriteServiceError(w http.ResponseWriter, err error) {
	writeErrorResponse(w, FromError(err))
}

func writeErrorResponse(w http.ResponseWriter, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	json.NewEncoder(w).Encode(resp)
}

// Common error codes
const (
	// Client errors (4xx)
	ErrInvalidRequest   = "invalid_request"
	ErrInvalidBody      = "invalid_request_body"
	ErrValidationFailed = "validation_failed"
	ErrNotFound         = "not_found"
	ErrUnknownAction    = "unknown_action"

	// Server errors (5xx)
	ErrInternal       = "internal_error"
	ErrNotImplemented = "not_implemented"
)
