package testutil

import (
	"errors"
	"testing"

	apperrors "fintrack/internal/errors"
)

// AssertAppError fails unless err unwraps to an *AppError carrying code.
// The matched error is returned for further checks.
func AssertAppError(t *testing.T, err error, code string) *apperrors.AppError {
	t.Helper()

	var appErr *apperrors.AppError
	switch {
	case err == nil:
		t.Fatalf("want %s, got no error", code)
	case !errors.As(err, &appErr):
		t.Fatalf("want %s, got non-application error %T: %v", code, err, err)
	case appErr.Code != code:
		t.Errorf("want %s, got %s (%s)", code, appErr.Code, appErr.Message)
	}
	return appErr
}

// AssertAppErrorStatus is AssertAppError plus the HTTP status it renders as.
func AssertAppErrorStatus(t *testing.T, err error, code string, status int) {
	t.Helper()

	if appErr := AssertAppError(t, err, code); appErr != nil && appErr.StatusCode != status {
		t.Errorf("%s: want status %d, got %d", code, status, appErr.StatusCode)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
