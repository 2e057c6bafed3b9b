// Package interrupt cancels contexts on OS termination signals.
package interrupt

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// from https://github.com/kubernetes/kubernetes/blob/c285e781331a3785a7f436042c65c5641ce8a9e9/pkg/util/interrupt/interrupt.go#L28
var terminationSignals = []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}

// SignalError is the cause of a context canceled by TerminationContext.
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("received signal: %s", e.Signal)
}

// TerminationContext returns a context that is canceled when a termination signal is received.
// The received signal is available through context.Cause as *SignalError.
func TerminationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return notifyContext(ctx, terminationSignals...)
}

func notifyContext(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, signals...)
	go func() {
		select {
		case s := <-sig:
			cancel(&SignalError{Signal: s})
		case <-ctx.Done():
		}
		signal.Stop(sig)
	}()
	return ctx, func() { cancel(context.Canceled) }
}
