// Package logger provides structured logging for pypeline using zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("pipeline")
//	log.Debug("launching process", logger.Fields(logger.FieldStage, "sort -r"))
package logger
