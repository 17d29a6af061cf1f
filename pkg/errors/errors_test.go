package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "store unreachable", http.StatusInternalServerError)

	if !errors.Is(err, cause) {
		t.Error("expected wrapped error to match cause via errors.Is")
	}
	if err.Error() == "" {
		t.Error("expected non-empty error string")
	}
}

func TestSlugExists(t *testing.T) {
	err := SlugExists("ha-long-bay")

	if err.Code != CodeSlugExists {
		t.Errorf("expected code %s, got %s", CodeSlugExists, err.Code)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, err.HTTPStatus)
	}
	if err.Details["slug"] != "ha-long-bay" {
		t.Errorf("expected slug detail, got %v", err.Details)
	}
}

func TestInvalidTransition(t *testing.T) {
	err := InvalidTransition("completed", "cancelled")

	if err.Code != CodeInvalidTransition {
		t.Errorf("expected code %s, got %s", CodeInvalidTransition, err.Code)
	}
	if err.Details["from"] != "completed" || err.Details["to"] != "cancelled" {
		t.Errorf("expected from/to details, got %v", err.Details)
	}
}

func TestAsAppError(t *testing.T) {
	plain := errors.New("boom")
	appErr := AsAppError(plain)
	if appErr.Code != CodeInternal {
		t.Errorf("expected plain errors to map to %s, got %s", CodeInternal, appErr.Code)
	}

	original := NotFound("Category")
	if AsAppError(original) != original {
		t.Error("expected AppError to pass through unchanged")
	}
}
