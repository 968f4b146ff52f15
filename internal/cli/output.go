package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/aqlwizard/internal/entry"
	"github.com/roach88/aqlwizard/internal/wizerr"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Test failure (scenarios failed or golden mismatch)
	ExitCommandError = 2 // Command error (bad input, compile error, missing catalog, etc.)
)

// Error codes for CLI responses.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeReadFailed   = "E002" // Input read error
	ErrCodeNoInput      = "E003" // No entries given
	ErrCodeCatalog      = "E004" // Catalog or lookups load failed
	ErrCodeNotFound     = "E005" // Path or saved query not found
	ErrCodeStoreFailed  = "E006" // Store open/read/write error
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeTestFailed   = "E008" // Scenario failures
	ErrCodeUnknownTopic = "E009" // Unknown profile or data source

	// Compilation errors, one per wizerr category.
	ErrCodeMalformedEntry    = "E101"
	ErrCodeFieldNotFound     = "E102"
	ErrCodeReservedField     = "E103"
	ErrCodeNotComplex        = "E104"
	ErrCodeSubFieldNotFound  = "E105"
	ErrCodeUnmappedFieldType = "E106"
	ErrCodeInvalidOperator   = "E107"
	ErrCodeInvalidValue      = "E108"
	ErrCodeInvalidChoice     = "E109"
	ErrCodeNoCandidates      = "E110"
	ErrCodeEmptyComplex      = "E111"
	ErrCodeInvalidInput      = "E112"
)

var wizardErrorCodes = map[wizerr.Code]string{
	wizerr.CodeMalformedEntry:    ErrCodeMalformedEntry,
	wizerr.CodeFieldNotFound:     ErrCodeFieldNotFound,
	wizerr.CodeReservedField:     ErrCodeReservedField,
	wizerr.CodeNotComplex:        ErrCodeNotComplex,
	wizerr.CodeSubFieldNotFound:  ErrCodeSubFieldNotFound,
	wizerr.CodeUnmappedFieldType: ErrCodeUnmappedFieldType,
	wizerr.CodeInvalidOperator:   ErrCodeInvalidOperator,
	wizerr.CodeInvalidValue:      ErrCodeInvalidValue,
	wizerr.CodeInvalidChoice:     ErrCodeInvalidChoice,
	wizerr.CodeNoCandidates:      ErrCodeNoCandidates,
	wizerr.CodeEmptyComplex:      ErrCodeEmptyComplex,
	wizerr.CodeInvalidInput:      ErrCodeInvalidInput,
}

// MapWizardError maps a wizard error category to its CLI error code.
func MapWizardError(code wizerr.Code) string {
	if c, ok := wizardErrorCodes[code]; ok {
		return c
	}
	return ErrCodeGeneric
}

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

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E101", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// WizardErrorDetails is the Details payload for compilation errors.
type WizardErrorDetails struct {
	Category string   `json:"category"`
	Source   string   `json:"source,omitempty"`
	Group    string   `json:"group,omitempty"`
	Hints    []string `json:"hints,omitempty"`
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// CommandError reports err and returns the ExitError the command should
// return. Wizard errors keep their category, locator and hints; in text
// mode the usage example for surface follows them.
func (f *OutputFormatter) CommandError(code string, err error, surface entry.Surface) error {
	we, ok := wizerr.As(err)
	if !ok {
		_ = f.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, code, err)
	}

	code = MapWizardError(we.Code)
	if f.Format == "json" {
		_ = f.Error(code, we.Message, WizardErrorDetails{
			Category: string(we.Code),
			Source:   we.Source,
			Group:    we.Group,
			Hints:    we.Hints,
		})
		return WrapExitError(ExitCommandError, code, err)
	}

	msg := error(we)
	if surface != "" {
		msg = entry.WithExample(we, surface)
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, msg)
	return WrapExitError(ExitCommandError, code, err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
