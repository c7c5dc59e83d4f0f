package testutil

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	apperrors "pennywise/internal/errors"
)

// AssertAppError checks that err is an *AppError with the expected code and
// returns it so callers can inspect the message or status.
func AssertAppError(t *testing.T, err error, expectedCode string) *apperrors.AppError {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError with code %q, got %T: %v", expectedCode, err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (status %d, message: %s)",
			expectedCode, appErr.Code, appErr.StatusCode, appErr.Message)
	}
	return appErr
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertAmount compares money values numerically, so "30.1" matches "30.10".
func AssertAmount(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()

	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("expected amount %s, got %s", want, got.StringFixed(2))
	}
}
