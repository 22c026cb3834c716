// Package errors provides the error taxonomy of pypeline.
// Every failure carries a machine-readable ErrorCode that belongs to one of
// four categories: construction, misuse, resolution, or execution.
package errors
