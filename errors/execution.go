package errors

import (
	"fmt"
	"strings"
)

// Failure describes one member of an execution that did not succeed.
type Failure struct {
	// Identity is the command line of a process or the transform names of a native run.
	Identity string `json:"identity"`
	// Code is the exit code. Native runs that fail report 1.
	Code int `json:"code"`
	// Err is the underlying error, if any.
	Err error `json:"-"`
}

func (f Failure) String() string {
	return fmt.Sprintf("%s with return code %d", f.Identity, f.Code)
}

// ExecutionFailed builds the aggregate error for a set of failed members.
// The failures keep the order in which the members were joined.
func ExecutionFailed(failures []Failure) *AppError {
	parts := make([]string, len(failures))
	for i, f := range failures {
		parts[i] = f.String()
	}
	var cause error
	for _, f := range failures {
		if f.Err != nil {
			cause = f.Err
			break
		}
	}
	return &AppError{
		Code:    ErrCodeExecutionFailed,
		Message: "the following members failed: " + strings.Join(parts, ", "),
		Details: map[string]any{"failures": failures},
		Cause:   cause,
	}
}

// FailuresOf returns the failed members carried by an aggregate execution error.
func FailuresOf(err error) []Failure {
	appErr, ok := AsAppError(err)
	if !ok || appErr.Code != ErrCodeExecutionFailed {
		return nil
	}
	failures, _ := appErr.Details["failures"].([]Failure)
	return failures
}
