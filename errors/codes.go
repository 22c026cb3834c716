package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Category groups error codes by the phase that raises them.
type Category string

const (
	// CategoryConstruction covers errors raised while composing fragments.
	CategoryConstruction Category = "construction"
	// CategoryMisuse covers API misuse, such as editing a multi-stage fragment as a command.
	CategoryMisuse Category = "misuse"
	// CategoryResolution covers endpoints and commands that cannot be prepared.
	CategoryResolution Category = "resolution"
	// CategoryExecution covers failed members of a running pipeline.
	CategoryExecution Category = "execution"
	// CategoryInternal covers everything else.
	CategoryInternal Category = "internal"
)

// Construction errors
const (
	// ErrCodeAlreadyBound indicates an endpoint was bound twice.
	ErrCodeAlreadyBound ErrorCode = "ALREADY_BOUND"
	// ErrCodeFilledJunction indicates chaining onto an end that is already filled.
	ErrCodeFilledJunction ErrorCode = "FILLED_JUNCTION"
	// ErrCodeAttributeConflict indicates two fragments supply different values for one attribute.
	ErrCodeAttributeConflict ErrorCode = "ATTRIBUTE_CONFLICT"
	// ErrCodeAlreadyParallel indicates a fragment is already tagged with another parallel group.
	ErrCodeAlreadyParallel ErrorCode = "ALREADY_PARALLEL"
)

// Misuse errors
const (
	// ErrCodeMisuse indicates an operation was applied to the wrong kind of value.
	ErrCodeMisuse ErrorCode = "MISUSE"
	// ErrCodeInvalidEndpoint indicates a value cannot be used as an endpoint.
	ErrCodeInvalidEndpoint ErrorCode = "INVALID_ENDPOINT"
	// ErrCodeInvalidInput indicates invalid configuration or arguments.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Resolution errors
const (
	// ErrCodeNotFound indicates a file or executable does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodePermissionDenied indicates a file cannot be opened with the requested mode.
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	// ErrCodeEndpointUnavailable indicates an endpoint cannot be opened for another reason.
	ErrCodeEndpointUnavailable ErrorCode = "ENDPOINT_UNAVAILABLE"
	// ErrCodeInvalidCommand indicates a command line cannot be tokenized.
	ErrCodeInvalidCommand ErrorCode = "INVALID_COMMAND"
)

// Execution errors
const (
	// ErrCodeExecutionFailed indicates one or more members of an execution failed.
	ErrCodeExecutionFailed ErrorCode = "EXECUTION_FAILED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var categories = map[ErrorCode]Category{
	ErrCodeAlreadyBound:        CategoryConstruction,
	ErrCodeFilledJunction:      CategoryConstruction,
	ErrCodeAttributeConflict:   CategoryConstruction,
	ErrCodeAlreadyParallel:     CategoryConstruction,
	ErrCodeMisuse:              CategoryMisuse,
	ErrCodeInvalidEndpoint:     CategoryMisuse,
	ErrCodeInvalidInput:        CategoryMisuse,
	ErrCodeNotFound:            CategoryResolution,
	ErrCodePermissionDenied:    CategoryResolution,
	ErrCodeEndpointUnavailable: CategoryResolution,
	ErrCodeInvalidCommand:      CategoryResolution,
	ErrCodeExecutionFailed:     CategoryExecution,
	ErrCodeInternal:            CategoryInternal,
}

// CategoryOf returns the category an error code belongs to.
func CategoryOf(code ErrorCode) Category {
	if c, ok := categories[code]; ok {
		return c
	}
	return CategoryInternal
}
