// Package resilience classifies pipeline failures and retries transient ones.
package resilience

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// Error types reported on not-found entries.
const (
	ErrorTypeTransient     = "transient"
	ErrorTypeTerminal      = "terminal"
	ErrorTypeRedirectLoop  = "redirect_loop"
	ErrorTypeAlignment     = "alignment_mismatch"
	ErrorTypeConfiguration = "configuration"
	ErrorTypeUnknown       = "unknown"
)

// TransientError wraps an error that is safe to retry (e.g., 429, 5xx, network timeout).
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps an error as transient with an optional HTTP status code.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// TerminalContentError means the fetched content can never resolve the
// identifier: a deleted entry, an empty page, or markup that does not match.
// It is never retried.
type TerminalContentError struct {
	ID     string
	Reason string
}

func (e *TerminalContentError) Error() string {
	return fmt.Sprintf("%s: %s", e.ID, e.Reason)
}

// NewTerminalContentError builds a TerminalContentError for id.
func NewTerminalContentError(id, reason string) *TerminalContentError {
	return &TerminalContentError{ID: id, Reason: reason}
}

// RedirectionLoopError is returned when following transferred entries would
// revisit a code or exceed the hop limit. ID is always the original identifier.
type RedirectionLoopError struct {
	ID    string
	Chain []string
	Limit int
}

func (e *RedirectionLoopError) Error() string {
	return fmt.Sprintf("%s: redirection chain %s exceeds limit %d or cycles",
		e.ID, strings.Join(e.Chain, " -> "), e.Limit)
}

// AlignmentMismatchError means an equation and its structure tokens could not
// be aligned. It only nulls the structure of one equation, never a record.
type AlignmentMismatchError struct {
	Equation string
	Tokens   int
	Expected int
	Reason   string
}

func (e *AlignmentMismatchError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("align %q: %s", e.Equation, e.Reason)
	}
	return fmt.Sprintf("align %q: %d tokens for %d participants", e.Equation, e.Tokens, e.Expected)
}

// ConfigurationError aborts a pipeline run: a stage's expected input is absent.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s (key %q)", e.Reason, e.Key)
}

// transient is implemented by errors that know whether they can be retried,
// such as fetcher.FetchError.
type transient interface {
	Transient() bool
}

// IsTransient returns true if the error (or any error in its chain) is a
// TransientError, reports itself as transient, or matches common transient
// error patterns (network timeouts, connection resets, DNS failures).
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var tr transient
	if errors.As(err, &tr) {
		return tr.Transient()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
		"transport connection broken",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsTransientHTTPStatus returns true if the HTTP status code indicates a
// transient server-side issue that is safe to retry.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, // Request Timeout
		429, // Too Many Requests
		500, // Internal Server Error
		502, // Bad Gateway
		503, // Service Unavailable
		504: // Gateway Timeout
		return true
	default:
		return false
	}
}

// ClassifyError maps an error onto one of the ErrorType constants.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	var (
		loop   *RedirectionLoopError
		term   *TerminalContentError
		align  *AlignmentMismatchError
		config *ConfigurationError
	)
	switch {
	case errors.As(err, &loop):
		return ErrorTypeRedirectLoop
	case errors.As(err, &term):
		return ErrorTypeTerminal
	case errors.As(err, &align):
		return ErrorTypeAlignment
	case errors.As(err, &config):
		return ErrorTypeConfiguration
	case IsTransient(err):
		return ErrorTypeTransient
	default:
		return ErrorTypeUnknown
	}
}

// IsFatal reports whether err must abort the whole pipeline run.
func IsFatal(err error) bool {
	var config *ConfigurationError
	return errors.As(err, &config)
}
