package errors

import (
	"fmt"
	"testing"
)

func TestRegimenError_Error(t *testing.T) {
	err := &RegimenError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "product not found",
	}

	expected := "NOT_FOUND: product not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("position must be an integer")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "position must be an integer" {
		t.Errorf("Message = %q, want %q", err.Message, "position must be an integer")
	}
}

func TestNewProductNotFound(t *testing.T) {
	err := NewProductNotFound(42)

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Message != "product not found: 42" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Details["product_id"] != 42 {
		t.Errorf("Details[product_id] = %v, want 42", err.Details["product_id"])
	}
}

func TestNewCatalogUnavailable(t *testing.T) {
	err := NewCatalogUnavailable(fmt.Errorf("connection refused"))

	if err.Code != ErrCatalogUnavailable {
		t.Errorf("Code = %q, want %q", err.Code, ErrCatalogUnavailable)
	}
	if err.Status != 502 {
		t.Errorf("Status = %d, want 502", err.Status)
	}
	if err.Details["cause"] != "connection refused" {
		t.Errorf("Details[cause] = %v", err.Details["cause"])
	}
}

func TestNewInternal(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		err := NewInternal(fmt.Errorf("database connection failed"))

		if err.Code != ErrInternal {
			t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
		}
		if err.Status != 500 {
			t.Errorf("Status = %d, want 500", err.Status)
		}
		// Message should be generic (not leak internal details)
		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want %q", err.Message, "an internal error occurred")
		}
		if err.Details["internal_error"] != "database connection failed" {
			t.Errorf("Details[internal_error] = %q, want %q", err.Details["internal_error"], "database connection failed")
		}
	})

	t.Run("with nil", func(t *testing.T) {
		err := NewInternal(nil)

		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want %q", err.Message, "an internal error occurred")
		}
		if err.Details == nil {
			t.Error("Details should not be nil")
		}
	})
}

func TestIs(t *testing.T) {
	t.Run("matching code", func(t *testing.T) {
		if !Is(NewProductNotFound(1), ErrNotFound) {
			t.Error("Is() = false, want true")
		}
	})

	t.Run("non-matching code", func(t *testing.T) {
		if Is(NewProductNotFound(1), ErrInternal) {
			t.Error("Is() = true, want false")
		}
	})

	t.Run("non-RegimenError", func(t *testing.T) {
		if Is(fmt.Errorf("plain error"), ErrNotFound) {
			t.Error("Is() = true, want false for non-RegimenError")
		}
	})

	t.Run("wrapped RegimenError", func(t *testing.T) {
		wrapped := fmt.Errorf("toggle: %w", NewProductNotFound(1))
		if !Is(wrapped, ErrNotFound) {
			t.Error("Is() = false, want true for wrapped RegimenError")
		}
		if Is(wrapped, ErrInternal) {
			t.Error("Is() = true, want false for wrong code on wrapped RegimenError")
		}
	})
}
