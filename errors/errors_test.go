package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found")
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "not found" {
		t.Errorf("expected message 'not found', got %q", err.Message)
	}
	if err.Category() != CategoryResolution {
		t.Errorf("expected resolution category, got %s", err.Category())
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NotFound("file", "in.txt").WithCause(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set via WithCause")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := NotFound("file", "a").WithDetails(map[string]any{"extra": "info"})
	if err.Details["extra"] != "info" {
		t.Errorf("expected extra=info in details")
	}
	if err.Details["resource"] != "file" {
		t.Error("expected original details to be preserved")
	}

	err.WithDetail("extra", "other")
	if err.Details["extra"] != "other" {
		t.Error("expected extra to be overwritten")
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     ErrorCode
		category Category
	}{
		{"AlreadyBound", AlreadyBound("output", "Fragment[cat]"), ErrCodeAlreadyBound, CategoryConstruction},
		{"FilledJunction", FilledJunction("a", "b"), ErrCodeFilledJunction, CategoryConstruction},
		{"AttributeConflict", AttributeConflict("stderr", "x", "y"), ErrCodeAttributeConflict, CategoryConstruction},
		{"AlreadyParallel", AlreadyParallel("Fragment[cat]"), ErrCodeAlreadyParallel, CategoryConstruction},
		{"Misuse", Misuse("append", "not a command"), ErrCodeMisuse, CategoryMisuse},
		{"InvalidEndpoint", InvalidEndpoint(42, "unsupported"), ErrCodeInvalidEndpoint, CategoryMisuse},
		{"Validation", Validation("bad"), ErrCodeInvalidInput, CategoryMisuse},
		{"NotFound", NotFound("executable", "nope"), ErrCodeNotFound, CategoryResolution},
		{"PermissionDenied", PermissionDenied("/root/x", "read"), ErrCodePermissionDenied, CategoryResolution},
		{"EndpointUnavailable", EndpointUnavailable("x", nil), ErrCodeEndpointUnavailable, CategoryResolution},
		{"InvalidCommand", InvalidCommand("echo 'x", nil), ErrCodeInvalidCommand, CategoryResolution},
		{"ExecutionFailed", ExecutionFailed(nil), ErrCodeExecutionFailed, CategoryExecution},
		{"Internal", Internal(nil), ErrCodeInternal, CategoryInternal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.Category() != tc.category {
				t.Errorf("expected category %s, got %s", tc.category, tc.err.Category())
			}
		})
	}
}

func TestCategoryOf_Unknown(t *testing.T) {
	if CategoryOf("SOMETHING_ELSE") != CategoryInternal {
		t.Error("unknown codes should map to the internal category")
	}
}

func TestExecutionFailed_Message(t *testing.T) {
	err := ExecutionFailed([]Failure{
		{Identity: "false", Code: 1},
		{Identity: "sh -c 'exit 3'", Code: 3},
	})
	want := "the following members failed: false with return code 1, sh -c 'exit 3' with return code 3"
	if err.Message != want {
		t.Errorf("got %q, want %q", err.Message, want)
	}
}

func TestExecutionFailed_CauseIsFirstMemberError(t *testing.T) {
	boom := fmt.Errorf("boom")
	err := ExecutionFailed([]Failure{
		{Identity: "a", Code: 1},
		{Identity: "b", Code: 1, Err: boom},
	})
	if !stderrors.Is(err, boom) {
		t.Error("expected aggregate to unwrap to the first member error")
	}
}

func TestFailuresOf(t *testing.T) {
	failures := []Failure{{Identity: "x", Code: 2}}
	wrapped := fmt.Errorf("outer: %w", ExecutionFailed(failures))

	got := FailuresOf(wrapped)
	if len(got) != 1 || got[0].Identity != "x" || got[0].Code != 2 {
		t.Errorf("unexpected failures: %v", got)
	}
	if FailuresOf(NotFound("file", "a")) != nil {
		t.Error("expected nil failures for non-execution errors")
	}
	if FailuresOf(fmt.Errorf("plain")) != nil {
		t.Error("expected nil failures for plain errors")
	}
}

func TestAppError_IsAppError_Success(t *testing.T) {
	appErr := NotFound("x", "")
	if !IsAppError(fmt.Errorf("wrapped: %w", appErr)) {
		t.Error("expected IsAppError to return true for wrapped AppError")
	}
	if IsAppError(fmt.Errorf("plain error")) {
		t.Error("expected IsAppError to return false for plain error")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", Misuse("format", "bad"))
	if !HasCode(err, ErrCodeMisuse) {
		t.Error("expected HasCode to find MISUSE")
	}
	if HasCode(err, ErrCodeNotFound) {
		t.Error("expected HasCode to reject NOT_FOUND")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}
	orig := NotFound("item", "1")
	if Wrap(orig) != orig {
		t.Error("Wrap should return the original AppError unchanged")
	}
	plain := fmt.Errorf("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal || got.Cause != plain {
		t.Errorf("unexpected wrap result: %v", got)
	}
}
