// Package enforce is the proxy plugin that disconnects players
// joining with a host other than the configured domain.
package enforce

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/robinbraemer/event"
	"go.minekube.com/common/minecraft/component"
	"go.uber.org/atomic"

	"go.minekube.com/enforcedomain/pkg/admission"
	"go.minekube.com/enforcedomain/pkg/config"
	"go.minekube.com/enforcedomain/pkg/internal/reload"
	"go.minekube.com/enforcedomain/pkg/proxy"
	"go.minekube.com/enforcedomain/pkg/util/componentutil"
	"go.minekube.com/enforcedomain/pkg/util/netutil"
)

// Options are Enforcer options.
type Options struct {
	// Message is sent to denied players.
	// If nil, the proxy's configured disconnect message is used.
	Message component.Component
	// EnforceStatus also denies server list pings for foreign hosts.
	EnforceStatus bool
	// AuditLogInterval logs repeated denials of the same
	// ip and host within the interval at V(1) only.
	AuditLogInterval time.Duration
	Logger           logr.Logger
}

// Enforcer admits or denies logins by their virtual host.
//
// The active settings are swapped atomically so that
// in-flight evaluations keep using the policy they loaded.
type Enforcer struct {
	log      logr.Logger
	settings atomic.Pointer[settings]
}

type settings struct {
	filter        *admission.Filter
	message       component.Component
	enforceStatus bool
	audit         *auditLimiter
}

// New returns a new Enforcer using policy.
func New(policy admission.Policy, opts Options) *Enforcer {
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	e := &Enforcer{log: log}
	e.settings.Store(&settings{
		filter:        admission.NewFilter(policy),
		message:       opts.Message,
		enforceStatus: opts.EnforceStatus,
		audit:         newAuditLimiter(opts.AuditLogInterval),
	})
	return e
}

// FromConfig returns a new Enforcer configured by c.
func FromConfig(c *config.Config, log logr.Logger) (*Enforcer, error) {
	s, err := settingsFromConfig(c)
	if err != nil {
		return nil, err
	}
	e := New(c.Policy(), Options{Logger: log})
	e.settings.Store(s)
	return e, nil
}

func settingsFromConfig(c *config.Config) (*settings, error) {
	msg, err := componentutil.ParseTextComponent(c.DisconnectMessage)
	if err != nil {
		return nil, fmt.Errorf("error parsing disconnect message: %w", err)
	}
	return &settings{
		filter:        admission.NewFilter(c.Policy()),
		message:       msg,
		enforceStatus: c.EnforceStatus,
		audit:         newAuditLimiter(c.AuditLogInterval.D()),
	}, nil
}

// Init subscribes the Enforcer to proxy and config update events.
// The returned func unsubscribes all handlers.
func (e *Enforcer) Init(mgr event.Manager) (unsubscribe func()) {
	unsubs := []func(){
		event.Subscribe(mgr, 0, e.onLogin),
		event.Subscribe(mgr, 0, e.onStatus),
		reload.Subscribe(mgr, e.onConfigUpdate),
	}
	return func() {
		for _, fn := range unsubs {
			fn()
		}
	}
}

// Policy returns the active policy.
func (e *Enforcer) Policy() admission.Policy {
	return e.settings.Load().filter.Policy()
}

// SetPolicy replaces the active policy.
// Other settings stay untouched.
func (e *Enforcer) SetPolicy(policy admission.Policy) {
	for {
		old := e.settings.Load()
		s := *old
		s.filter = admission.NewFilter(policy)
		if e.settings.CompareAndSwap(old, &s) {
			break
		}
	}
	e.log.Info("updated domain policy", "policy", policy.String())
}

// SetConfig replaces the active settings with those of c.
// The previous settings stay active if c is invalid.
func (e *Enforcer) SetConfig(c *config.Config) error {
	s, err := settingsFromConfig(c)
	if err != nil {
		return err
	}
	e.settings.Store(s)
	e.log.Info("updated domain policy", "policy", s.filter.Policy().String(), "enforceStatus", s.enforceStatus)
	return nil
}

func (e *Enforcer) onConfigUpdate(u *reload.ConfigUpdateEvent[config.Config]) {
	if err := e.SetConfig(u.Config); err != nil {
		e.log.Error(err, "keeping previous domain policy")
	}
}

func (e *Enforcer) onLogin(ev *proxy.LoginEvent) {
	if !ev.Allowed() {
		return
	}
	s := e.settings.Load()
	in := ev.Conn()
	d := s.filter.Evaluate(admission.ConnectionAttempt{
		VirtualHost:    in.VirtualHost(),
		PlayerIdentity: ev.Username(),
	})
	if d.Admit() {
		return
	}
	ev.Deny(s.message)
	log := e.log
	if !s.audit.first(netutil.Host(in.RemoteAddr()), in.VirtualHost()) {
		log = log.V(1)
	}
	log.Info(fmt.Sprintf("Player %s tried to connect with invalid domain/ip: %s", ev.Username(), in.VirtualHost()),
		"reason", d.Reason(),
		"remoteAddr", in.RemoteAddr().String(),
		"connID", in.ID(),
	)
}

func (e *Enforcer) onStatus(ev *proxy.StatusEvent) {
	s := e.settings.Load()
	if !s.enforceStatus || !ev.Allowed() {
		return
	}
	in := ev.Conn()
	d := admission.Evaluate(s.filter.Policy(), in.VirtualHost())
	if d.Admit() {
		return
	}
	ev.Deny()
	e.log.V(1).Info("denied status request",
		"virtualHost", in.VirtualHost(),
		"reason", d.Reason(),
		"remoteAddr", in.RemoteAddr().String(),
	)
}
