package admission

import "strings"

// Policy is the domain matching rule connections are admitted by.
//
// A Policy is a plain value and is never mutated once built.
// Use NewPolicy to get a normalized one.
type Policy struct {
	// RequiredDomain is the domain clients must connect with.
	// An empty domain denies every connection.
	RequiredDomain string
	// AllowSubdomains also admits any subdomain of RequiredDomain.
	AllowSubdomains bool
}

// NewPolicy returns a normalized Policy for the given domain.
func NewPolicy(domain string, allowSubdomains bool) Policy {
	return Policy{
		RequiredDomain:  NormalizeDomain(domain),
		AllowSubdomains: allowSubdomains,
	}
}

// NormalizeDomain lower-cases domain and strips surrounding
// whitespace as well as leading and trailing dots.
func NormalizeDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	domain = strings.Trim(domain, ".")
	return strings.ToLower(domain)
}

// Valid reports whether the policy can admit anything at all.
func (p Policy) Valid() bool {
	return trimDots(p.RequiredDomain) != ""
}

func (p Policy) String() string {
	if p.AllowSubdomains {
		return "*." + p.RequiredDomain
	}
	return p.RequiredDomain
}

func trimDots(s string) string {
	return strings.Trim(strings.TrimSpace(s), ".")
}
