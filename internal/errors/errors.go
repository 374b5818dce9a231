// Package errors defines stable error codes and the warning records attached
// to an analysis run.
package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// CompilerStartFailed indicates the compiler process could not be started at all.
	// This is distinct from the compiler exiting nonzero, which is the normal
	// outcome of compiling a codebase that has diagnostics.
	CompilerStartFailed ErrorCode = "COMPILER_START_FAILED"
	// StorageUnavailable indicates the storage collaborator could not be reached
	StorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"
	// FileUnreadable indicates a source file could not be read
	FileUnreadable ErrorCode = "FILE_UNREADABLE"
	// PatternInvalid indicates a derived or catalog regex failed to compile
	PatternInvalid ErrorCode = "PATTERN_INVALID"
	// ParseFailed indicates a source file could not be parsed into a syntax tree
	ParseFailed ErrorCode = "PARSE_FAILED"
	// ScanCancelled indicates the run was aborted by the caller
	ScanCancelled ErrorCode = "SCAN_CANCELLED"
	// ConfigInvalid indicates the configuration could not be loaded
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// AnalyzerError represents a tserr failure with a stable code and message
type AnalyzerError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error
}

// New creates a new AnalyzerError
func New(code ErrorCode, message string, cause error) *AnalyzerError {
	return &AnalyzerError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Newf creates a new AnalyzerError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *AnalyzerError {
	return &AnalyzerError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface
func (e *AnalyzerError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AnalyzerError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *AnalyzerError) WithDetails(details interface{}) *AnalyzerError {
	e.Details = details
	return e
}

// HasCode reports whether err is an AnalyzerError carrying the given code
func HasCode(err error, code ErrorCode) bool {
	ae, ok := AsAnalyzerError(err)
	return ok && ae.Code == code
}

// AsAnalyzerError extracts an AnalyzerError from an error chain
func AsAnalyzerError(err error) (*AnalyzerError, bool) {
	for err != nil {
		if ae, ok := err.(*AnalyzerError); ok {
			return ae, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// WarningStage identifies which part of a run produced a warning
type WarningStage string

const (
	StageContext     WarningStage = "context"
	StageGraph       WarningStage = "graph"
	StageCluster     WarningStage = "cluster"
	StageRisk        WarningStage = "risk"
	StagePersistence WarningStage = "persistence"
)

// RunWarning is a non-fatal problem recorded against a run. File-level and
// pattern-level failures are reported this way instead of aborting analysis.
type RunWarning struct {
	Stage   WarningStage `json:"stage"`
	Path    string       `json:"path,omitempty"`
	Code    ErrorCode    `json:"code"`
	Message string       `json:"message"`
}

// Warn builds a RunWarning from an error, preserving its code when it has one
func Warn(stage WarningStage, path string, err error) RunWarning {
	code := InternalError
	if ae, ok := AsAnalyzerError(err); ok {
		code = ae.Code
	}
	return RunWarning{
		Stage:   stage,
		Path:    path,
		Code:    code,
		Message: err.Error(),
	}
}
