// Package config contains the enforcedomain configuration
// read with Viper from files and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"go.minekube.com/enforcedomain/pkg/admission"
	"go.minekube.com/enforcedomain/pkg/util/componentutil"
	"go.minekube.com/enforcedomain/pkg/util/configutil"
	"go.minekube.com/enforcedomain/pkg/util/netutil"
	"go.minekube.com/enforcedomain/pkg/util/validation"
)

// DefaultDisconnectMessage is shown to players connecting with a foreign host.
const DefaultDisconnectMessage = "Direct connections to this server are not allowed."

// Config is the configuration of the proxy.
type Config struct {
	Bind string `yaml:"bind" toml:"bind"` // The address to listen for connections.

	// Domain clients must use to connect.
	Domain string `yaml:"domain" toml:"domain"`
	// AllowSubdomains also admits any subdomain of Domain.
	AllowSubdomains bool `yaml:"allowSubdomains" toml:"allowSubdomains"`
	// DisconnectMessage is sent to denied players.
	// Legacy '§' codes and JSON text components are supported.
	DisconnectMessage string `yaml:"disconnectMessage" toml:"disconnectMessage"`
	// EnforceStatus also closes server list pings for foreign hosts.
	EnforceStatus bool `yaml:"enforceStatus" toml:"enforceStatus"`
	// AuditLogInterval logs repeated denials of the same ip and host
	// within the interval at debug level. Zero logs every denial.
	AuditLogInterval configutil.Duration `yaml:"auditLogInterval" toml:"auditLogInterval"`

	// Backend is the server admitted players are forwarded to.
	Backend              string `yaml:"backend" toml:"backend"`
	ProxyProtocol        bool   `yaml:"proxyProtocol" toml:"proxyProtocol"`               // accept ha-proxy headers
	BackendProxyProtocol bool   `yaml:"backendProxyProtocol" toml:"backendProxyProtocol"` // send ha-proxy headers

	ConnectionTimeout configutil.Duration `yaml:"connectionTimeout" toml:"connectionTimeout"` // Backend dial timeout
	ReadTimeout       configutil.Duration `yaml:"readTimeout" toml:"readTimeout"`             // Handshake read timeout

	Quota Quota `yaml:"quota" toml:"quota"`

	// GRPC health probe service for use with Kubernetes pods.
	// (https://github.com/grpc-ecosystem/grpc-health-probe)
	HealthService HealthService `yaml:"healthService" toml:"healthService"`

	Debug bool `yaml:"debug" toml:"debug"`
}

type (
	// Quota is the config for rate limiting.
	Quota struct {
		Connections QuotaSettings `yaml:"connections" toml:"connections"` // Limits new connections per second, per IP block.
		Logins      QuotaSettings `yaml:"logins" toml:"logins"`           // Limits logins per second, per IP block.
	}
	QuotaSettings struct {
		Enabled    bool    `yaml:"enabled" toml:"enabled"`       // If false, there is no such limiting.
		OPS        float32 `yaml:"ops" toml:"ops"`               // Allowed operations/events per second, per IP block
		Burst      int     `yaml:"burst" toml:"burst"`           // The maximum events per second, per block; the size of the token bucket
		MaxEntries int     `yaml:"maxEntries" toml:"maxEntries"` // Maximum number of IP blocks to keep track of in cache
	}
	HealthService struct {
		Enabled bool   `yaml:"enabled" toml:"enabled"`
		Bind    string `yaml:"bind" toml:"bind"`
	}
)

// SetDefaults sets Config defaults used with Viper.
func SetDefaults(i configutil.SetDefault) {
	i.SetDefault("bind", "0.0.0.0:25565")
	i.SetDefault("domain", "example.com")
	i.SetDefault("allowSubdomains", true)
	i.SetDefault("disconnectMessage", DefaultDisconnectMessage)
	i.SetDefault("enforceStatus", false)
	i.SetDefault("auditLogInterval", "0s")

	i.SetDefault("backend", "localhost:25566")
	i.SetDefault("connectionTimeout", "5s")
	i.SetDefault("readTimeout", "30s")

	// Default quotas should never affect legitimate operations,
	// but rate limits aggressive behaviours.
	i.SetDefault("quota.connections.enabled", true)
	i.SetDefault("quota.connections.ops", 5)
	i.SetDefault("quota.connections.burst", 10)
	i.SetDefault("quota.connections.maxEntries", 1000)

	i.SetDefault("quota.logins.enabled", true)
	i.SetDefault("quota.logins.ops", 0.4)
	i.SetDefault("quota.logins.burst", 3)
	i.SetDefault("quota.logins.maxEntries", 1000)

	i.SetDefault("healthService.bind", "0.0.0.0:9090")
}

// Default returns the config with all defaults applied.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	c, err := Load(v)
	if err != nil {
		panic(fmt.Sprintf("invalid default config: %v", err))
	}
	return c
}

// Load unmarshals the Config from v.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	err := v.Unmarshal(&c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		configutil.DurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &c, nil
}

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. ENFORCEDOMAIN_DOMAIN or ENFORCEDOMAIN_QUOTA_LOGINS_ENABLED.
const EnvPrefix = "ENFORCEDOMAIN"

// NewViper returns a Viper instance with defaults and environment
// variables set up to read the config file at path.
func NewViper(path string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
	}
	return v
}

// LoadFile reads the config file at path.
// Environment variables take precedence over file values.
func LoadFile(path string) (*Config, error) {
	v := NewViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %q: %w", path, err)
	}
	return Load(v)
}

// Policy returns the admission policy configured by Domain and AllowSubdomains.
func (c *Config) Policy() admission.Policy {
	return admission.NewPolicy(c.Domain, c.AllowSubdomains)
}

func (c *Config) Validate() (warns []error, errs []error) {
	e := func(m string, args ...any) { errs = append(errs, fmt.Errorf(m, args...)) }
	w := func(m string, args ...any) { warns = append(warns, fmt.Errorf(m, args...)) }
	if c == nil {
		e("config must not be nil")
		return
	}

	if len(c.Bind) == 0 {
		e("bind is empty")
	} else if err := validation.ValidHostPort(c.Bind); err != nil {
		e("invalid bind %q: %v", c.Bind, err)
	}

	domain := admission.NormalizeDomain(c.Domain)
	if err := validation.ValidDomain(domain); err != nil {
		e("invalid domain %q: %v", c.Domain, err)
	} else if domain != c.Domain {
		w("domain %q is used as %q", c.Domain, domain)
	}
	if domain == "example.com" {
		w("domain is still the default %q, all other hosts will be denied", domain)
	}

	if len(c.Backend) == 0 {
		e("backend is empty")
	} else if _, err := netutil.WithDefaultPort(c.Backend); err != nil {
		e("invalid backend %q: %v", c.Backend, err)
	}

	if _, err := componentutil.ParseTextComponent(c.DisconnectMessage); err != nil {
		e("invalid disconnect message %q: %v", c.DisconnectMessage, err)
	}

	if c.AuditLogInterval.D() < 0 {
		e("audit log interval %s must not be negative", c.AuditLogInterval.D())
	}

	if c.ConnectionTimeout.D() < time.Millisecond*100 {
		e("connection timeout %s is too low, use at least 100ms", c.ConnectionTimeout.D())
	}
	if c.ReadTimeout.D() < time.Millisecond*100 {
		e("read timeout %s is too low, use at least 100ms", c.ReadTimeout.D())
	}

	for name, quota := range map[string]QuotaSettings{
		"connections": c.Quota.Connections,
		"logins":      c.Quota.Logins,
	} {
		if !quota.Enabled {
			continue
		}
		if quota.OPS <= 0 {
			e("invalid %s quota ops %v, use a number > 0", name, quota.OPS)
		}
		if quota.Burst < 1 {
			e("invalid %s quota burst %d, use a number >= 1", name, quota.Burst)
		}
		if quota.MaxEntries < 1 {
			e("invalid %s quota max entries %d, use a number >= 1", name, quota.MaxEntries)
		}
	}

	if c.HealthService.Enabled {
		if err := validation.ValidHostPort(c.HealthService.Bind); err != nil {
			e("invalid health probe bind address %q: %v", c.HealthService.Bind, err)
		}
	}

	return
}
