package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/kbukum/pypeline/errors"
)

// FieldError names one offending configuration key.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string { return e.Field + ": " + e.Message }

// Validator accumulates field errors from checks that struct tags cannot
// express. Checks are chainable; Err reports everything at once.
type Validator struct {
	fields []FieldError
}

// New returns an empty Validator.
func New() *Validator { return &Validator{} }

// Add records a failure for field.
func (v *Validator) Add(field, message string) *Validator {
	v.fields = append(v.fields, FieldError{Field: field, Message: message})
	return v
}

// Check records message for field unless ok holds.
func (v *Validator) Check(ok bool, field, message string) *Validator {
	if !ok {
		v.Add(field, message)
	}
	return v
}

// NonNegative rejects negative durations.
func (v *Validator) NonNegative(field string, d time.Duration) *Validator {
	return v.Check(d >= 0, field, "must not be negative")
}

// EnvPairs requires every entry to have the form KEY=value with a non-empty KEY.
func (v *Validator) EnvPairs(field string, env []string) *Validator {
	for i, kv := range env {
		key, _, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			v.Add(fmt.Sprintf("%s[%d]", field, i), "must have the form KEY=value")
		}
	}
	return v
}

// WritableTarget accepts one of keywords, a relative path, or an absolute
// path whose parent directory exists. Relative paths depend on the working
// directory of the run and are checked when the stream is opened.
func (v *Validator) WritableTarget(field, target string, keywords ...string) *Validator {
	if slices.Contains(keywords, target) || !filepath.IsAbs(target) {
		return v
	}
	dir := filepath.Dir(target)
	st, err := os.Stat(dir)
	return v.Check(err == nil && st.IsDir(), field, "directory "+dir+" does not exist")
}

// Fields returns the collected failures.
func (v *Validator) Fields() []FieldError { return v.fields }

// Err returns nil when every check passed, otherwise an INVALID_INPUT
// AppError listing every failure with the fields attached as details.
func (v *Validator) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	parts := make([]string, len(v.fields))
	for i, f := range v.fields {
		parts[i] = f.String()
	}
	return errors.Validation(strings.Join(parts, "; ")).WithDetail("fields", v.fields)
}
