// Package validation validates pypeline configuration.
//
// It supports struct tag validation (using the validator library) and
// programmatic validation with error collection. Both report a single
// errors.AppError with code INVALID_INPUT listing every offending field.
//
// # Struct Tag Validation
//
//	type EngineConfig struct {
//	    OutputMode string `mapstructure:"output_mode" validate:"oneof=truncate append"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	err := validation.New().
//	    NonNegative("grace_period", cfg.GracePeriod).
//	    EnvPairs("env", cfg.Env).
//	    Err()
package validation
