package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ExitCode represents CLI exit codes
type ExitCode int

const (
	// ExitSuccess indicates successful execution
	ExitSuccess ExitCode = 0
	// ExitError indicates a general error
	ExitError ExitCode = 1
	// ExitUsageError indicates invalid command usage
	ExitUsageError ExitCode = 2
	// ExitAuthError indicates an authentication error
	ExitAuthError ExitCode = 3
	// ExitNetworkError indicates a network error
	ExitNetworkError ExitCode = 4
)

// Error kinds raised at component boundaries. Match them with errors.Is.
var (
	// ErrAuthProtocol indicates a malformed or unexpected authorization response
	ErrAuthProtocol = errors.New("unexpected authorization response")
	// ErrTokenExchange indicates the authorization code could not be exchanged
	ErrTokenExchange = errors.New("authorization code exchange failed")
	// ErrRefreshExchange indicates the refresh token could not be exchanged
	ErrRefreshExchange = errors.New("refresh token exchange failed")
	// ErrNoToken indicates a refresh was attempted with no stored grant
	ErrNoToken = errors.New("no stored authorization grant")
	// ErrAPIRequest indicates a transport failure or exhausted retries
	ErrAPIRequest = errors.New("api request failed")
	// ErrSessionExpired indicates the session could not produce a usable token
	ErrSessionExpired = errors.New("session expired, please sign in again")
)

// Error is a taxonomy error carrying the original cause
type Error struct {
	// Kind is one of the Err* sentinels above
	Kind error
	// Op names the operation that failed (e.g. "exchange code")
	Op string
	// StatusCode is the last HTTP status seen, 0 when the cause is unknown
	StatusCode int
	// Err is the underlying cause
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Kind.Error())
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, " (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Is reports whether target is the kind of this error
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a taxonomy error of the given kind
func New(kind error, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// NewWithStatus creates a taxonomy error that records the HTTP status received
func NewWithStatus(kind error, op string, status int, cause error) *Error {
	return &Error{Kind: kind, Op: op, StatusCode: status, Err: cause}
}

// CLIError represents a CLI error with user-friendly message and exit code
type CLIError struct {
	// TechnicalError is the underlying technical error (for logging)
	TechnicalError error
	// UserMsg is the user-friendly error message
	UserMsg string
	// ExitCode is the exit code to return
	ExitCode ExitCode
}

// Error implements the error interface
func (e *CLIError) Error() string {
	if e.TechnicalError != nil {
		return fmt.Sprintf("%s: %v", e.UserMsg, e.TechnicalError)
	}
	return e.UserMsg
}

// Unwrap returns the underlying error
func (e *CLIError) Unwrap() error {
	return e.TechnicalError
}

// NewCLIError creates a new CLIError
func NewCLIError(technicalErr error, userMsg string, exitCode ExitCode) *CLIError {
	return &CLIError{
		TechnicalError: technicalErr,
		UserMsg:        userMsg,
		ExitCode:       exitCode,
	}
}

// NewError creates a CLIError with ExitError code
func NewError(technicalErr error, userMsg string) *CLIError {
	return NewCLIError(technicalErr, userMsg, ExitError)
}

// NewUsageError creates a CLIError with ExitUsageError code
func NewUsageError(userMsg string) *CLIError {
	return NewCLIError(nil, userMsg, ExitUsageError)
}

// NewAuthError creates a CLIError for authentication failures
func NewAuthError(technicalErr error, userMsg string) *CLIError {
	return NewCLIError(technicalErr, userMsg, ExitAuthError)
}

// NewNetworkError creates a CLIError for network failures
func NewNetworkError(technicalErr error, userMsg string) *CLIError {
	return NewCLIError(technicalErr, userMsg, ExitNetworkError)
}

// ExitCodeFor picks the exit code for an error returned by a command
func ExitCodeFor(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.ExitCode
	}

	switch {
	case errors.Is(err, ErrAuthProtocol),
		errors.Is(err, ErrTokenExchange),
		errors.Is(err, ErrRefreshExchange),
		errors.Is(err, ErrNoToken),
		errors.Is(err, ErrSessionExpired):
		return ExitAuthError
	case errors.Is(err, ErrAPIRequest):
		return ExitNetworkError
	default:
		return ExitError
	}
}

// FormatError formats an error for display, adding the technical cause in debug mode
func FormatError(err error, debug bool) string {
	var sb strings.Builder

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		sb.WriteString(cliErr.UserMsg)
		if cliErr.TechnicalError != nil && debug {
			sb.WriteString("\n\nTechnical details:\n  ")
			sb.WriteString(cliErr.TechnicalError.Error())
		}
	} else {
		sb.WriteString(err.Error())
	}

	return sb.String()
}
