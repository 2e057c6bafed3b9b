package version

import (
	"runtime/debug"
	"strings"
)

// version is the current version of enforcedomain.
// Set using -ldflags "-X go.minekube.com/enforcedomain/pkg/version.version=v1.2.3"
var version string = "unknown"

// String returns the version, falling back to the
// module version when built with go install.
func String() string {
	if version != "unknown" && version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}

// UserAgent identifies enforcedomain in logs and the version command.
func UserAgent() string {
	s := strings.Builder{}
	s.WriteString("Minekube-EnforceDomain/")
	if v := String(); v != "" {
		s.WriteString(v)
	} else {
		s.WriteString("Dirty")
	}
	return s.String()
}
