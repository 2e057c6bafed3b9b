// Package proxy is a minimal Minecraft Java edition front proxy.
//
// It reads the client's handshake and login start packets, fires
// events that plugins use to admit or deny the connection and then
// forwards admitted connections byte-for-byte to a single backend.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/go-logr/logr"
	"github.com/pires/go-proxyproto"
	"github.com/robinbraemer/event"
	"go.uber.org/atomic"

	"go.minekube.com/enforcedomain/pkg/config"
	"go.minekube.com/enforcedomain/pkg/internal/addrquota"
	"go.minekube.com/enforcedomain/pkg/util/errs"
)

// Options are proxy options.
type Options struct {
	// Config requires a valid proxy configuration.
	Config *config.Config
	// Event is the event manager plugins subscribe to.
	// If not set, a new one is created.
	Event event.Manager
	// Logger is the logger used by the proxy.
	Logger logr.Logger
}

// Proxy accepts Minecraft connections and forwards admitted ones to the backend.
type Proxy struct {
	log   logr.Logger
	event event.Manager

	mu     sync.RWMutex // protects below fields
	cfg    *config.Config
	quotas quotas

	ready   atomic.Bool
	started atomic.Bool
	conns   sync.WaitGroup
}

type quotas struct {
	connections *addrquota.Quota
	logins      *addrquota.Quota
}

// New returns a new Proxy.
func New(options Options) (*Proxy, error) {
	if options.Config == nil {
		return nil, errs.ErrMissingConfig
	}
	if options.Event == nil {
		options.Event = event.New()
	}
	log := options.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	p := &Proxy{
		log:   log,
		event: options.Event,
	}
	p.SetConfig(options.Config)
	return p, nil
}

// Event returns the event manager.
func (p *Proxy) Event() event.Manager { return p.event }

// Config returns the current config.
func (p *Proxy) Config() *config.Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// SetConfig replaces the config used for new connections.
// The listener address only changes on restart.
// Rate limit state is kept for quotas whose settings did not change.
func (p *Proxy) SetConfig(c *config.Config) {
	p.mu.Lock()
	defer p.mu.Unlock()
	q := p.quotas
	if p.cfg == nil || p.cfg.Quota.Connections != c.Quota.Connections {
		q.connections = newQuota(c.Quota.Connections)
	}
	if p.cfg == nil || p.cfg.Quota.Logins != c.Quota.Logins {
		q.logins = newQuota(c.Quota.Logins)
	}
	p.cfg = c
	p.quotas = q
}

func newQuota(s config.QuotaSettings) *addrquota.Quota {
	if !s.Enabled {
		return nil
	}
	return addrquota.New(s.OPS, s.Burst, s.MaxEntries)
}

func (p *Proxy) settings() (*config.Config, quotas) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg, p.quotas
}

// Ready reports whether the proxy is listening for connections.
func (p *Proxy) Ready() bool { return p.ready.Load() }

// ErrProxyAlreadyRun is returned by Start if the proxy instance was already run.
var ErrProxyAlreadyRun = errors.New("proxy was already run, create a new one")

// Start listens on the configured bind address and serves
// connections until ctx is canceled.
func (p *Proxy) Start(ctx context.Context) error {
	bind := p.Config().Bind
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", bind)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("error listening on %s: %w", bind, err)
	}
	return p.Serve(ctx, ln)
}

// Serve serves connections from ln until ctx is canceled.
// It closes ln and waits for active connections to end before returning.
func (p *Proxy) Serve(ctx context.Context, ln net.Listener) error {
	if !p.started.CompareAndSwap(false, true) {
		_ = ln.Close()
		return ErrProxyAlreadyRun
	}
	defer p.conns.Wait()

	cfg := p.Config()
	if cfg.ProxyProtocol {
		ln = &proxyproto.Listener{
			Listener:          ln,
			ReadHeaderTimeout: cfg.ReadTimeout.D(),
		}
	}
	defer func() { _ = ln.Close() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	p.ready.Store(true)
	defer p.ready.Store(false)
	p.event.Fire(&ReadyEvent{addr: ln.Addr().String()})
	p.log.Info("listening for connections", "addr", ln.Addr().String(), "proxyProtocol", cfg.ProxyProtocol)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				// Listener was closed
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				p.log.V(1).Info("temporary error accepting connection", "error", err)
				continue
			}
			return fmt.Errorf("error accepting new connection: %w", err)
		}
		p.conns.Add(1)
		go func() {
			defer p.conns.Done()
			p.HandleConn(ctx, conn)
		}()
	}
}
