package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/GlaceYT/E-Canteen/internal/catalog"
	"github.com/GlaceYT/E-Canteen/internal/config"
	"github.com/GlaceYT/E-Canteen/internal/model"
	"github.com/GlaceYT/E-Canteen/internal/ordering"
	"github.com/GlaceYT/E-Canteen/internal/session"
	"github.com/GlaceYT/E-Canteen/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Domain failure (empty cart, unknown order, failed scenario, etc.)
	ExitCommandError = 2 // Command error (bad flags, config, storage failure, etc.)
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric           = "E001" // Generic/unknown error
	ErrCodeStorage           = "E002" // Database read/write failure
	ErrCodeConfig            = "E003" // Invalid configuration
	ErrCodeBadArgs           = "E004" // Malformed command arguments
	ErrCodeNotLoggedIn       = "E010" // No session
	ErrCodeForbidden         = "E011" // Wrong role for command
	ErrCodeInvalidLogin      = "E012" // Unknown role or malformed email
	ErrCodeItemNotFound      = "E020" // Menu item id not found
	ErrCodeValidation        = "E021" // Menu item failed validation
	ErrCodeMenuLoad          = "E022" // CUE menu could not be loaded
	ErrCodeEmptyCart         = "E030" // Checkout with no lines
	ErrCodeOrderNotFound     = "E031" // Order id not found
	ErrCodeInvalidTransition = "E032" // Status change not allowed
	ErrCodeScenarioFailed    = "E040" // One or more scenarios failed
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// classify maps a component error to its error code and exit code.
func classify(err error) (code string, exit int) {
	var (
		ve *model.ValidationError
		le *catalog.LoadError
		ae *argError
		ee *ExitError
	)
	switch {
	case errors.As(err, &ae):
		return ErrCodeBadArgs, ExitCommandError
	case errors.Is(err, ordering.ErrEmptyCart):
		return ErrCodeEmptyCart, ExitFailure
	case ordering.IsOrderNotFound(err):
		return ErrCodeOrderNotFound, ExitFailure
	case ordering.IsTransitionError(err):
		return ErrCodeInvalidTransition, ExitFailure
	case errors.Is(err, catalog.ErrItemNotFound):
		return ErrCodeItemNotFound, ExitFailure
	case errors.As(err, &ve):
		return ErrCodeValidation, ExitFailure
	case errors.As(err, &le):
		return ErrCodeMenuLoad, ExitCommandError
	case errors.Is(err, session.ErrNotLoggedIn):
		return ErrCodeNotLoggedIn, ExitFailure
	case errors.Is(err, session.ErrForbidden):
		return ErrCodeForbidden, ExitFailure
	case errors.Is(err, session.ErrInvalidLogin):
		return ErrCodeInvalidLogin, ExitFailure
	case errors.Is(err, config.ErrInvalidConfiguration):
		return ErrCodeConfig, ExitCommandError
	case store.IsStorageError(err):
		return ErrCodeStorage, ExitCommandError
	case errors.As(err, &ee):
		return ErrCodeGeneric, ee.Code
	default:
		return ErrCodeGeneric, ExitFailure
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E002", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result. JSON output wraps data in a
// CLIResponse; text output prints text, or data itself when text is empty.
func (f *OutputFormatter) Success(data interface{}, text string) error {
	if f.Format == "json" {
		encoder := json.NewEncoder(f.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	if text == "" {
		fmt.Fprintln(f.Writer, data)
		return nil
	}
	fmt.Fprint(f.Writer, text)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err in the configured format and returns the ExitError the
// command should return.
func (f *OutputFormatter) Fail(err error) error {
	code, exit := classify(err)
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(exit, code, err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
