package interrupt

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyContext(t *testing.T) {
	ctx, cancel := notifyContext(context.Background(), syscall.SIGUSR1)
	defer cancel()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))
	select {
	case <-ctx.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("context not canceled")
	}

	var sigErr *SignalError
	require.True(t, errors.As(context.Cause(ctx), &sigErr))
	assert.Equal(t, syscall.SIGUSR1, sigErr.Signal)
	assert.Equal(t, "received signal: user defined signal 1", sigErr.Error())
}

func TestNotifyContext_cancel(t *testing.T) {
	ctx, cancel := notifyContext(context.Background(), syscall.SIGUSR2)
	cancel()
	<-ctx.Done()
	assert.ErrorIs(t, context.Cause(ctx), context.Canceled)
}
