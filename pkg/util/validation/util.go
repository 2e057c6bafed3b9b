package validation

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

func ValidHostPort(hostAndPort string) error {
	_, _, err := net.SplitHostPort(hostAndPort)
	return err
}

// Constants obtained from https://github.com/kubernetes/apimachinery/blob/master/pkg/util/validation/validation.go
const (
	dns1123LabelFmt           = "[a-z0-9]([-a-z0-9]*[a-z0-9])?"
	dns1123SubdomainFmt       = dns1123LabelFmt + "(\\." + dns1123LabelFmt + ")*"
	DNS1123LabelMaxLength     = 63
	DNS1123SubdomainMaxLength = 253
)

var dns1123SubdomainRegexp = regexp.MustCompile("^" + dns1123SubdomainFmt + "$")

// ValidDomain checks that domain is a lower-case RFC 1123 subdomain,
// e.g. "example.com" or "play.example.com".
func ValidDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("must not be empty")
	}
	if len(domain) > DNS1123SubdomainMaxLength {
		return fmt.Errorf("must be no more than %d characters", DNS1123SubdomainMaxLength)
	}
	if !dns1123SubdomainRegexp.MatchString(domain) {
		return fmt.Errorf("must consist of lower case alphanumeric characters, '-' or '.', " +
			"and must start and end with an alphanumeric character")
	}
	for _, label := range strings.Split(domain, ".") {
		if len(label) > DNS1123LabelMaxLength {
			return fmt.Errorf("label %q must be no more than %d characters", label, DNS1123LabelMaxLength)
		}
	}
	return nil
}
