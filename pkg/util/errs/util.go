// Package errs contains error types shared across the proxy and helpers
// to choose a log verbosity per error.
package errs

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/go-logr/logr"
)

var (
	ErrMissingConfig = errors.New("config is missing")
)

// SilentError is an error wrapper type that silences an
// error and only logs them in the debug log.
//
// It is usually used to prevent spamming the default
// log when Minecraft clients send invalid packets which cannot be read.
type SilentError struct{ error }

func (e *SilentError) Error() string {
	return e.error.Error()
}

func NewSilentErr(format string, a ...any) error {
	return &SilentError{fmt.Errorf(format, a...)}
}

func WrapSilent(wrappedErr error) error {
	return &SilentError{wrappedErr}
}

func (e *SilentError) Unwrap() error { return e.error }

// VerbosityError is an error that should be logged at a given verbosity.
type VerbosityError struct {
	Verbosity int
	Err       error
}

func (e *VerbosityError) Error() string { return e.Err.Error() }
func (e *VerbosityError) Unwrap() error { return e.Err }

// V returns log at the verbosity suited to err.
//
// Silent errors, closed connections and VerbosityErrors
// are moved to a higher verbosity level.
func V(log logr.Logger, err error) logr.Logger {
	var verr *VerbosityError
	if errors.As(err, &verr) {
		return log.V(verr.Verbosity)
	}
	var serr *SilentError
	if errors.As(err, &serr) || IsConnClosedErr(err) {
		return log.V(1)
	}
	return log
}

// IsConnClosedErr reports whether err indicates the peer or we closed the connection.
// see https://github.com/golang/go/issues/4373 for details
func IsConnClosedErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	return err.Error() == "use of closed network connection" ||
		err.Error() == "read: connection reset by peer"
}
