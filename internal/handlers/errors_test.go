package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pennyjar/internal/service"
	"pennyjar/internal/validation"
)

func TestRespondWithErrorWritesJSONBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, http.StatusTeapot, "Teapot", "", nil)

	if recorder.Code != http.StatusTeapot {
		t.Fatalf("expected status 418, got %d", recorder.Code)
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["error"] != "Teapot" {
		t.Errorf("error = %q, want Teapot", body["error"])
	}
}

func TestRespondServiceErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrNotFamilyMember, http.StatusForbidden},
		{service.ErrChildNotFound, http.StatusNotFound},
		{service.ErrGoalNotFound, http.StatusNotFound},
		{service.ErrGiftLinkClosed, http.StatusGone},
		{service.ErrEmailTaken, http.StatusConflict},
		{service.ErrChallengeActive, http.StatusConflict},
		{service.ErrAlreadyPaid, http.StatusConflict},
		{service.ErrInsufficientBalance, http.StatusUnprocessableEntity},
		{service.ErrStorageDisabled, http.StatusServiceUnavailable},
		{errors.New("something broke"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondServiceError(recorder, "test", tt.err)
			if recorder.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", recorder.Code, tt.wantStatus)
			}
		})
	}
}

func TestRespondServiceErrorWrappedSentinel(t *testing.T) {
	recorder := httptest.NewRecorder()
	wrapped := fmt.Errorf("loading goal: %w", service.ErrGoalNotFound)

	respondServiceError(recorder, "test", wrapped)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", recorder.Code)
	}
}

func TestRespondServiceErrorValidation(t *testing.T) {
	recorder := httptest.NewRecorder()
	err := validation.ValidationError{Field: "amount", Message: "must be positive"}

	respondServiceError(recorder, "test", err)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["error"] != "amount: must be positive" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestInternalErrorsAreNotEchoed(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondServiceError(recorder, "test", errors.New("pq: connection refused"))

	var body map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["error"] != "Internal server error" {
		t.Errorf("internal error details leaked: %q", body["error"])
	}
}
