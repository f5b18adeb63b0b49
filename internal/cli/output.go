package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Everything in sync, or transfers applied
	ExitFailure      = 1 // Out of sync under --check, aborted, or transfer failure
	ExitCommandError = 2 // Command error (bad flags, unreadable files, bad vault target)
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

// errAborted is returned by confirm when the user declines.
var errAborted = NewExitError(ExitFailure, "aborted")

// confirm asks the user for a yes/no confirmation, re-asking on any other
// input. Declining returns errAborted.
func confirm(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Confirm (yes/no)? ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return WrapExitError(ExitCommandError, "read confirmation", err)
			}
			return errAborted
		}
		switch strings.TrimSpace(scanner.Text()) {
		case "y", "yes":
			return nil
		case "n", "no":
			return errAborted
		default:
			// Ask again
		}
	}
}
