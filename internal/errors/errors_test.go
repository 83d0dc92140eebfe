// ABOUTME: Unit tests for standardized error response helpers.
// ABOUTME: Validates response format and the mapping of dispatcher errors to status codes.

package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2389/panel/internal/backend"
	"github.com/2389/panel/internal/store"
	"github.com/2389/panel/panel"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		write   func(w http.ResponseWriter)
		status  int
		code    string
		field   string
		details string
	}{
		{
			name:   "plain error",
			write:  func(w http.ResponseWriter) { WriteError(w, http.StatusBadRequest, ErrInvalidBody, "bad body") },
			status: http.StatusBadRequest,
			code:   ErrInvalidBody,
		},
		{
			name: "with field",
			write: func(w http.ResponseWriter) {
				WriteErrorWithField(w, http.StatusBadRequest, ErrValidationFailed, "pks is required", "pks")
			},
			status: http.StatusBadRequest,
			code:   ErrValidationFailed,
			field:  "pks",
		},
		{
			name: "with details",
			write: func(w http.ResponseWriter) {
				WriteErrorWithDetails(w, http.StatusInternalServerError, ErrInternal, "failed", "disk full")
			},
			status:  http.StatusInternalServerError,
			code:    ErrInternal,
			details: "disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected Content-Type application/json, got %s", ct)
			}

			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Code != tt.code || resp.Status != tt.status {
				t.Errorf("unexpected response %+v", resp)
			}
			if resp.Field != tt.field || resp.Details != tt.details {
				t.Errorf("field/details = %q/%q, want %q/%q", resp.Field, resp.Details, tt.field, tt.details)
			}
		})
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unknown model", fmt.Errorf("%w: posts", panel.ErrModelNotFound), http.StatusNotFound, ErrNotFound},
		{"unknown action", &panel.UnknownActionError{Kind: panel.ActionRecord, Model: "posts", Action: "zap"}, http.StatusBadRequest, ErrUnknownAction},
		{"wrapped unknown action", fmt.Errorf("dispatch: %w", &panel.UnknownActionError{Kind: panel.ActionBatch, Action: "zap"}), http.StatusBadRequest, ErrUnknownAction},
		{"no handler", fmt.Errorf("%w for posts create", panel.ErrNoHandler), http.StatusNotImplemented, ErrNotImplemented},
		{"record missing", fmt.Errorf("%w: posts/1", store.ErrRecordNotFound), http.StatusNotFound, ErrNotFound},
		{"bad field", fmt.Errorf("%w: x y", store.ErrInvalidField), http.StatusBadRequest, ErrInvalidRequest},
		{"field rule", &backend.FieldError{Field: "title", Reason: "is required"}, http.StatusBadRequest, ErrValidationFailed},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError, ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := FromError(tt.err)
			if resp.Status != tt.status || resp.Code != tt.code {
				t.Errorf("FromError() = %d %s, want %d %s", resp.Status, resp.Code, tt.status, tt.code)
			}
		})
	}
}

func TestFromError_UnknownActionMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteServiceError(w, &panel.UnknownActionError{Kind: panel.ActionGlobal, Model: "posts", Action: "export"})

	var resp ErrorResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Message != "no action: export defined" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if resp.Field != "export" {
		t.Errorf("expected field to name the action, got %q", resp.Field)
	}
}
