package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNotRegistered, "platform not registered")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeNotRegistered {
		t.Errorf("expected code %s, got %s", ErrCodeNotRegistered, err.Code)
	}
	if err.Message != "platform not registered" {
		t.Errorf("expected message 'platform not registered', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeResolution, "operation failed", cause)

	if err.Code != ErrCodeResolution {
		t.Errorf("expected code %s, got %s", ErrCodeResolution, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("manifest unreadable")
	ctx := map[string]interface{}{
		"module": "mod-a",
		"source": "oci://ghcr.io/acme/mod-a:1.0.0",
	}

	err := WrapWithContext(ErrCodeResolution, "module resolution failed", cause, ctx)

	if err.Code != ErrCodeResolution {
		t.Errorf("expected code %s, got %s", ErrCodeResolution, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["module"] != "mod-a" {
		t.Errorf("expected module to be mod-a")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeNotRegistered, "not registered"),
			expected: "[NOT_REGISTERED] not registered",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeResolution, "failed", errors.New("root cause")),
			expected: "[RESOLUTION_FAILED] failed: root cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(ErrCodeInternal, "wrapped", cause)

	unwrapped := err.Unwrap()
	if !errors.Is(unwrapped, cause) {
		t.Errorf("expected unwrapped error to be original cause")
	}

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is should work with Unwrap")
	}
}

func TestCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{
			name:     "structured error",
			err:      New(ErrCodeModuleNotFound, "no such module"),
			expected: ErrCodeModuleNotFound,
		},
		{
			name:     "wrapped structured error",
			err:      Wrap(ErrCodeResolution, "resolve", New(ErrCodeModuleNotFound, "missing")),
			expected: ErrCodeResolution,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	inner := New(ErrCodeModuleNotFound, "missing")
	outer := Wrap(ErrCodeResolution, "resolve failed", inner)

	if !HasCode(outer, ErrCodeResolution) {
		t.Error("expected outer code to match")
	}
	if !HasCode(outer, ErrCodeModuleNotFound) {
		t.Error("expected inner code to match through the chain")
	}
	if HasCode(outer, ErrCodeNotLoaded) {
		t.Error("did not expect unrelated code to match")
	}
	if HasCode(errors.New("plain"), ErrCodeInternal) {
		t.Error("plain error should not carry a code")
	}
}

func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		ErrCodeInvalidArgument,
		ErrCodeNotEnabled,
		ErrCodeNotRegistered,
		ErrCodeNotLoaded,
		ErrCodeModuleNotFound,
		ErrCodeResolution,
		ErrCodeConfigMissing,
		ErrCodeNotFound,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeInvalidRequest,
		ErrCodeUnavailable,
	}

	for _, code := range codes {
		if string(code) == "" {
			t.Errorf("error code should not be empty: %v", code)
		}
	}
}
