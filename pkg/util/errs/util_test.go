package errs

import (
	"errors"
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
)

func TestV(t *testing.T) {
	var lines []string
	log := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{Verbosity: 0})

	V(log, errors.New("loud")).Info("loud")
	V(log, NewSilentErr("quiet %d", 1)).Info("silent")
	V(log, fmt.Errorf("wrapped: %w", io.EOF)).Info("eof")
	V(log, &VerbosityError{Verbosity: 2, Err: errors.New("x")}).Info("verbose")
	V(log, &VerbosityError{Verbosity: 0, Err: errors.New("x")}).Info("forced")

	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "loud")
	assert.Contains(t, lines[1], "forced")
}

func TestIsConnClosedErr(t *testing.T) {
	assert.False(t, IsConnClosedErr(nil))
	assert.True(t, IsConnClosedErr(net.ErrClosed))
	assert.True(t, IsConnClosedErr(fmt.Errorf("read: %w", io.ErrUnexpectedEOF)))
	assert.False(t, IsConnClosedErr(errors.New("boom")))
}

func TestSilentError_unwrap(t *testing.T) {
	err := WrapSilent(io.EOF)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "EOF", err.Error())
}
