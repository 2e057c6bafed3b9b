package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/go-logr/logr"

	"go.minekube.com/enforcedomain/pkg/proto"
	"go.minekube.com/enforcedomain/pkg/util/errs"
	"go.minekube.com/enforcedomain/pkg/util/netutil"
)

// dialError is returned when the backend could not be reached.
type dialError struct{ error }

func (e *dialError) Unwrap() error { return e.error }

func isDialErr(err error) bool {
	var de *dialError
	return errors.As(err, &de)
}

// IsConnectionRefused returns true if err indicates a connection refused error.
// These errors are common when backends are down and should use debug logging.
func IsConnectionRefused(err error) bool {
	return err != nil && (errors.Is(err, syscall.ECONNREFUSED) ||
		strings.Contains(strings.ToLower(err.Error()), "connection refused"))
}

// forward dials the backend, replays the packets read so far
// and pipes both connections until one side closes.
func (s *session) forward(ctx context.Context, in *inbound, username string, pcs ...*proto.PacketContext) error {
	dst, err := s.dialBackend(ctx)
	if err != nil {
		s.proxy.event.Fire(&ForwardEndedEvent{
			Conn:     in,
			Username: username,
			EndedAt:  time.Now(),
			Reason:   BackendConnectFailed,
		})
		return err
	}
	defer func() { _ = dst.Close() }()

	if err = s.replay(dst, pcs); err != nil {
		return err
	}

	log := s.log.WithValues("backendAddr", dst.RemoteAddr().String())
	log.Info("forwarding connection")
	startedAt := time.Now()
	reason, endedAt := pipe(ctx, log, s.conn, dst)
	s.proxy.event.Fire(&ForwardEndedEvent{
		Conn:        in,
		Username:    username,
		BackendAddr: dst.RemoteAddr(),
		StartedAt:   startedAt,
		EndedAt:     endedAt,
		Reason:      reason,
	})
	log.V(1).Info("forward ended", "reason", reason, "duration", endedAt.Sub(startedAt).Round(time.Millisecond).String())
	return nil
}

func (s *session) dialBackend(ctx context.Context) (net.Conn, error) {
	backendAddr, err := netutil.WithDefaultPort(s.cfg.Backend)
	if err != nil {
		return nil, &dialError{fmt.Errorf("invalid backend address %q: %w", s.cfg.Backend, err)}
	}

	dialCtx, cancel := context.WithTimeout(ctx, s.cfg.ConnectionTimeout.D())
	defer cancel()

	var dialer net.Dialer
	dst, err := dialer.DialContext(dialCtx, "tcp", backendAddr)
	if err != nil {
		v := 0
		// Treat connection refused and canceled dials as debug level to reduce spam
		if IsConnectionRefused(err) || ctx.Err() != nil {
			v = 1
		}
		return nil, &errs.VerbosityError{
			Verbosity: v,
			Err:       &dialError{fmt.Errorf("failed to connect to backend %s: %w", backendAddr, err)},
		}
	}

	if s.cfg.BackendProxyProtocol {
		header, err := proxyHeader(s.conn.RemoteAddr(), dst.RemoteAddr())
		if err == nil {
			_, err = header.WriteTo(dst)
		}
		if err != nil {
			_ = dst.Close()
			return nil, &dialError{fmt.Errorf("failed to write proxy protocol header to backend: %w", err)}
		}
	}
	return dst, nil
}

// replay writes the frames read from the client and any
// read-ahead bytes to the backend, unmodified.
func (s *session) replay(dst net.Conn, pcs []*proto.PacketContext) error {
	var n int
	for _, pc := range pcs {
		n += len(pc.Frame)
	}
	buffered := s.dec.Buffered()
	b := make([]byte, 0, n+len(buffered))
	for _, pc := range pcs {
		b = append(b, pc.Frame...)
	}
	b = append(b, buffered...)
	if _, err := dst.Write(b); err != nil {
		return fmt.Errorf("failed to write buffered packets to backend: %w", err)
	}
	return nil
}

type pipeDirection int

const (
	pipeClientToBackend pipeDirection = iota
	pipeBackendToClient
)

type copyResult struct {
	dir   pipeDirection
	bytes int64
	err   error
}

func pipe(ctx context.Context, log logr.Logger, src, dst net.Conn) (ForwardEndReason, time.Time) {
	// disable deadlines
	var zero time.Time
	_ = src.SetDeadline(zero)
	_ = dst.SetDeadline(zero)

	results := make(chan copyResult, 2)

	go func() {
		i, err := io.Copy(src, dst)
		log.V(1).Info("done copying backend -> client", "bytes", i, "error", err)
		results <- copyResult{dir: pipeBackendToClient, bytes: i, err: err}
	}()

	go func() {
		i, err := io.Copy(dst, src)
		log.V(1).Info("done copying client -> backend", "bytes", i, "error", err)
		results <- copyResult{dir: pipeClientToBackend, bytes: i, err: err}
	}()

	first := <-results
	endedAt := time.Now()

	_ = src.Close()
	_ = dst.Close()
	<-results

	return classifyForwardEnd(ctx, first), endedAt
}

func classifyForwardEnd(ctx context.Context, result copyResult) ForwardEndReason {
	if ctx != nil && ctx.Err() != nil {
		return Shutdown
	}
	if result.err != nil {
		var netErr net.Error
		if errors.As(result.err, &netErr) && netErr.Timeout() {
			return Timeout
		}
		return Error
	}
	if result.dir == pipeBackendToClient {
		return BackendClosed
	}
	return ClientClosed
}
