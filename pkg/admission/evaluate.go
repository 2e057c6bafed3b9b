package admission

import (
	"fmt"
	"strings"
)

// Deny reasons.
const (
	ReasonMissingVirtualHost = "missing virtual host"
	ReasonEmptyPolicy        = "no domain configured"
)

// ConnectionAttempt is a single login attempt observed at the proxy.
type ConnectionAttempt struct {
	// VirtualHost is the hostname the client dialed. Empty if absent.
	VirtualHost string
	// PlayerIdentity names the connecting player, for audit logging.
	PlayerIdentity string
}

// Evaluate decides whether a client that dialed virtualHost is admitted by policy.
//
// Both sides are lower-cased (ASCII only) and a single trailing dot is removed
// before comparing. With AllowSubdomains a host must equal the domain or end
// with "." + domain, so "evilexample.com" does not match "example.com".
func Evaluate(policy Policy, virtualHost string) Decision {
	host := lowerASCII(strings.TrimSuffix(virtualHost, "."))
	if host == "" {
		return Denied(ReasonMissingVirtualHost)
	}
	domain := lowerASCII(trimDots(policy.RequiredDomain))
	if domain == "" {
		return Denied(ReasonEmptyPolicy)
	}
	if host == domain {
		return Admitted
	}
	if policy.AllowSubdomains && isSubdomain(host, domain) {
		return Admitted
	}
	return Denied(fmt.Sprintf("hostname mismatch: %s vs policy %s", virtualHost, domain))
}

// isSubdomain reports whether host ends with "." + domain.
// An empty leading label (".example.com") is rejected on purpose.
func isSubdomain(host, domain string) bool {
	n := len(host) - len(domain)
	if n < 2 {
		return false
	}
	return host[n-1] == '.' && host[n:] == domain
}

// lowerASCII lower-cases the ASCII letters of s.
// Other bytes are kept so that non-ASCII look-alikes never equal a domain.
func lowerASCII(s string) string {
	i := 0
	for i < len(s) && (s[i] < 'A' || s[i] > 'Z') {
		i++
	}
	if i == len(s) {
		return s
	}
	b := []byte(s)
	for ; i < len(b); i++ {
		if 'A' <= b[i] && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// Filter evaluates connection attempts against a fixed Policy.
// It is safe for concurrent use.
type Filter struct {
	policy Policy
}

// NewFilter returns a Filter for the given policy.
func NewFilter(policy Policy) *Filter {
	return &Filter{policy: policy}
}

// Policy returns the policy the filter evaluates against.
func (f *Filter) Policy() Policy { return f.policy }

// Evaluate evaluates the attempt's virtual host against the filter's policy.
func (f *Filter) Evaluate(attempt ConnectionAttempt) Decision {
	return Evaluate(f.policy, attempt.VirtualHost)
}
