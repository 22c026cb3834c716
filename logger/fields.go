package logger

// Field keys shared by every component.
const (
	FieldComponent   = "component"
	FieldExecutionID = "execution_id"
	FieldGroupID     = "group_id"
	FieldStage       = "stage"
	FieldRun         = "run"
	FieldKind        = "kind"
	FieldExitCode    = "exit_code"
	FieldMembers     = "members"
	FieldPath        = "path"
	FieldMode        = "mode"
	FieldOperation   = "operation"
	FieldStatus      = "status"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
)

// Fields builds a field map from alternating key-value pairs. Non-string keys
// and a trailing key without a value are skipped.
//
//	logger.Info("done", logger.Fields(logger.FieldStage, "sort -r", logger.FieldExitCode, 0))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields tags err with the operation that produced it.
func ErrorFields(op string, err error) map[string]any {
	return WithErr(map[string]any{FieldOperation: op}, err)
}

// MemberFields describes one joined pipeline member.
func MemberFields(identity, kind string, code int) map[string]any {
	return map[string]any{
		FieldStage:    identity,
		FieldKind:     kind,
		FieldExitCode: code,
	}
}

// WithErr sets the error field on fields, allocating the map when nil.
// A nil err leaves fields untouched.
func WithErr(fields map[string]any, err error) map[string]any {
	if fields == nil {
		fields = make(map[string]any, 1)
	}
	if err != nil {
		fields[FieldError] = err.Error()
	}
	return fields
}
