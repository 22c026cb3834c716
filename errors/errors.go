package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type of the library.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Category returns the category of the error code.
func (e *AppError) Category() Category { return CategoryOf(e.Code) }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Construction ---

// AlreadyBound reports a second bind of the input or output end of a fragment.
func AlreadyBound(end, fragment string) *AppError {
	return &AppError{
		Code:    ErrCodeAlreadyBound,
		Message: fmt.Sprintf("trying to set %s twice for %s", end, fragment),
		Details: map[string]any{"end": end, "fragment": fragment},
	}
}

// FilledJunction reports chaining two fragments whose adjoining ends are not both unset.
func FilledJunction(left, right string) *AppError {
	return &AppError{
		Code:    ErrCodeFilledJunction,
		Message: fmt.Sprintf("cannot chain %s into %s: an adjoining end is already filled", left, right),
		Details: map[string]any{"left": left, "right": right},
	}
}

// AttributeConflict reports two different values supplied for one attribute.
func AttributeConflict(name string, a, b any) *AppError {
	return &AppError{
		Code:    ErrCodeAttributeConflict,
		Message: fmt.Sprintf("cannot give two separate values for %q (%v and %v)", name, a, b),
		Details: map[string]any{"attribute": name},
	}
}

// AlreadyParallel reports tagging a fragment that already belongs to another group.
func AlreadyParallel(fragment string) *AppError {
	return &AppError{
		Code:    ErrCodeAlreadyParallel,
		Message: fmt.Sprintf("trying to set parallel group twice for %s", fragment),
		Details: map[string]any{"fragment": fragment},
	}
}

// --- Misuse ---

// Misuse reports an operation applied to a value that does not support it.
func Misuse(operation, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeMisuse,
		Message: fmt.Sprintf("%s: %s", operation, reason),
		Details: map[string]any{"operation": operation},
	}
}

// InvalidEndpoint reports a value that cannot serve as an endpoint.
func InvalidEndpoint(value any, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidEndpoint,
		Message: fmt.Sprintf("invalid endpoint %T: %s", value, reason),
		Details: map[string]any{"type": fmt.Sprintf("%T", value)},
	}
}

// Validation creates a new AppError for invalid configuration.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// --- Resolution ---

// NotFound reports a missing file or executable.
func NotFound(resource, name string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s %q not found", resource, name),
		Details: map[string]any{"resource": resource, "name": name},
	}
}

// PermissionDenied reports an endpoint that cannot be opened in the requested mode.
func PermissionDenied(path, mode string) *AppError {
	return &AppError{
		Code:    ErrCodePermissionDenied,
		Message: fmt.Sprintf("permission denied opening %q for %s", path, mode),
		Details: map[string]any{"path": path, "mode": mode},
	}
}

// EndpointUnavailable reports any other failure to open an endpoint.
func EndpointUnavailable(path string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeEndpointUnavailable,
		Message: fmt.Sprintf("cannot open endpoint %q", path),
		Details: map[string]any{"path": path},
		Cause:   cause,
	}
}

// InvalidCommand reports a command line that cannot be tokenized.
func InvalidCommand(line string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidCommand,
		Message: fmt.Sprintf("cannot parse command line %q", line),
		Details: map[string]any{"command": line},
		Cause:   cause,
	}
}

// Internal creates a new AppError for an unexpected error.
func Internal(cause error) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: "an unexpected error occurred", Cause: cause}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// Wrap converts any error into an AppError. AppErrors pass through unchanged.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}
