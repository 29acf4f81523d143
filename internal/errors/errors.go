package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// CompilerUnavailable indicates the trace compiler could not be spawned
	CompilerUnavailable ErrorCode = "COMPILER_UNAVAILABLE"
	// HeaderDirMissing indicates the library's installed header root was not found
	HeaderDirMissing ErrorCode = "HEADER_DIR_MISSING"
	// LibraryNotPrepared indicates the library's data or build artifacts are missing
	LibraryNotPrepared ErrorCode = "LIBRARY_NOT_PREPARED"
	// TraceMalformed indicates a compiler trace line could not be parsed
	TraceMalformed ErrorCode = "TRACE_MALFORMED"
	// LLMUnavailable indicates the text-generation service is not configured or reachable
	LLMUnavailable ErrorCode = "LLM_UNAVAILABLE"
	// RetryExhausted indicates all retries against the text-generation service failed
	RetryExhausted ErrorCode = "RETRY_EXHAUSTED"
	// CacheError indicates the persistent result cache failed
	CacheError ErrorCode = "CACHE_ERROR"
	// ConfigInvalid indicates an invalid tool or library configuration
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// InstallTool suggests installing a tool
	InstallTool FixActionType = "install-tool"
	// SetEnvVar suggests setting an environment variable
	SetEnvVar FixActionType = "set-env-var"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	Tool        string        `json:"tool,omitempty"`
	EnvVar      string        `json:"envVar,omitempty"`
}

// FdgError represents a tool error with code, message, and suggestions
type FdgError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new FdgError
func New(code ErrorCode, message string, cause error) *FdgError {
	return &FdgError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *FdgError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *FdgError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *FdgError) WithDetails(details interface{}) *FdgError {
	e.Details = details
	return e
}

// CodeOf returns the error code of err if it is an FdgError, or InternalError otherwise
func CodeOf(err error) ErrorCode {
	if fe, ok := err.(*FdgError); ok {
		return fe.Code
	}
	return InternalError
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	CompilerUnavailable: {
		{
			Type:        InstallTool,
			Tool:        "clang++",
			Description: "Install clang; the header resolver needs its include trace",
		},
	},
	HeaderDirMissing: {
		{
			Type:        RunCommand,
			Command:     "./build.sh ${library}",
			Safe:        false,
			Description: "Build and install the library so its headers exist under output/<library>/build/include",
		},
	},
	LibraryNotPrepared: {
		{
			Type:        RunCommand,
			Command:     "ls data/${library}",
			Safe:        true,
			Description: "Verify the library's data directory is prepared",
		},
	},
	LLMUnavailable: {
		{
			Type:        SetEnvVar,
			EnvVar:      "OPENAI_API_KEY",
			Description: "Set the API key for the text-generation service",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
