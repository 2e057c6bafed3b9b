// Package gate wires the proxy, the domain enforcer and
// their supporting services into a runnable process.
package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/robinbraemer/event"
	"golang.org/x/sync/errgroup"
	rpc "google.golang.org/grpc/health/grpc_health_v1"

	"go.minekube.com/enforcedomain/internal/health"
	"go.minekube.com/enforcedomain/pkg/config"
	"go.minekube.com/enforcedomain/pkg/enforce"
	"go.minekube.com/enforcedomain/pkg/internal/reload"
	"go.minekube.com/enforcedomain/pkg/proxy"
	"go.minekube.com/enforcedomain/pkg/util/errs"
)

// Options are Gate options.
type Options struct {
	// Config requires a valid configuration.
	Config *config.Config
	// ConfigFile is reloaded on changes if AutoConfigReload is set.
	ConfigFile       string
	AutoConfigReload bool
	// Logger is the logger used for Gate and its components.
	// If not set, the logger from the Start context is used.
	Logger logr.Logger
}

// Gate runs the proxy with the domain enforcer.
type Gate struct {
	log      logr.Logger
	opts     Options
	event    event.Manager
	proxy    *proxy.Proxy
	enforcer *enforce.Enforcer

	mu  sync.Mutex // protects cfg
	cfg *config.Config
}

// New returns a new Gate.
// The given Options requires a validated Config.
func New(options Options) (*Gate, error) {
	if options.Config == nil {
		return nil, errs.ErrMissingConfig
	}
	log := options.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	mgr := event.New()
	enforcer, err := enforce.FromConfig(options.Config, log.WithName("enforce"))
	if err != nil {
		return nil, err
	}
	enforcer.Init(mgr)

	p, err := proxy.New(proxy.Options{
		Config: options.Config,
		Event:  mgr,
		Logger: log.WithName("proxy"),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating proxy: %w", err)
	}

	return &Gate{
		log:      log,
		opts:     options,
		event:    mgr,
		proxy:    p,
		enforcer: enforcer,
		cfg:      options.Config,
	}, nil
}

// Event returns the event manager shared by the proxy and the enforcer.
func (g *Gate) Event() event.Manager { return g.event }

// Proxy returns the proxy.
func (g *Gate) Proxy() *proxy.Proxy { return g.proxy }

// Enforcer returns the domain enforcer.
func (g *Gate) Enforcer() *enforce.Enforcer { return g.enforcer }

// Start runs the Gate until ctx is canceled or a component fails.
func (g *Gate) Start(ctx context.Context) error {
	var runHealth func(context.Context, health.CheckFn) error
	if hc := g.opts.Config.HealthService; hc.Enabled {
		var err error
		runHealth, err = health.New(hc.Bind)
		if err != nil {
			return fmt.Errorf("error creating health probe service: %w", err)
		}
		g.log.Info("health probe service running", "addr", hc.Bind)
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error { return g.proxy.Start(ctx) })

	if runHealth != nil {
		eg.Go(func() error {
			return runHealth(ctx, func(context.Context) rpc.HealthCheckResponse_ServingStatus {
				if g.proxy.Ready() {
					return rpc.HealthCheckResponse_SERVING
				}
				return rpc.HealthCheckResponse_NOT_SERVING
			})
		})
	}

	if g.opts.AutoConfigReload && g.opts.ConfigFile != "" {
		eg.Go(func() error {
			ctx := logr.NewContext(ctx, g.log.WithName("reload"))
			return reload.Watch(ctx, g.opts.ConfigFile, g.reloadConfig)
		})
	}

	return eg.Wait()
}

func (g *Gate) reloadConfig() error {
	c, err := config.LoadFile(g.opts.ConfigFile)
	if err != nil {
		return err
	}
	if err = validate(g.log, c); err != nil {
		return err
	}

	g.mu.Lock()
	prev := g.cfg
	g.cfg = c
	g.mu.Unlock()

	if c.Bind != prev.Bind {
		g.log.Info("bind address changes apply after restart", "bind", prev.Bind, "newBind", c.Bind)
	}
	g.proxy.SetConfig(c)
	reload.FireConfigUpdate(g.event, c, prev)
	return nil
}

// Start validates the config and runs a new Gate until ctx is canceled.
func Start(ctx context.Context, opts ...StartOption) error {
	var o startOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.config == nil {
		return errs.ErrMissingConfig
	}
	log := o.logger
	if log.GetSink() == nil {
		log = logr.FromContextOrDiscard(ctx)
	}
	if err := validate(log, o.config); err != nil {
		return err
	}

	g, err := New(Options{
		Config:           o.config,
		ConfigFile:       o.configFile,
		AutoConfigReload: o.configFile != "",
		Logger:           log,
	})
	if err != nil {
		return err
	}
	return g.Start(ctx)
}

// StartOption is an option for Start.
type StartOption func(o *startOptions)

type startOptions struct {
	config     *config.Config
	configFile string
	logger     logr.Logger
}

// WithConfig sets the config to use.
func WithConfig(c config.Config) StartOption {
	return func(o *startOptions) { o.config = &c }
}

// WithAutoConfigReload reloads the config when the file at path changes.
func WithAutoConfigReload(path string) StartOption {
	return func(o *startOptions) { o.configFile = path }
}

// WithLogger sets the logger to use.
func WithLogger(log logr.Logger) StartOption {
	return func(o *startOptions) { o.logger = log }
}

// validate logs warnings and returns all errors of c joined.
func validate(log logr.Logger, c *config.Config) error {
	warns, errList := c.Validate()
	for _, w := range warns {
		log.Info("config validation warning", "warn", w.Error())
	}
	if len(errList) != 0 {
		return fmt.Errorf("config validation error: %w", errors.Join(errList...))
	}
	return nil
}
