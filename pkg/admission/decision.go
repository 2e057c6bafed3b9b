package admission

// Decision is the outcome of evaluating a connection attempt.
//
// The zero value is a denial without a reason.
type Decision struct {
	admit  bool
	reason string
}

// Admitted is the Decision letting a connection proceed.
var Admitted = Decision{admit: true}

// Denied returns a Decision rejecting a connection for the given reason.
func Denied(reason string) Decision {
	return Decision{reason: reason}
}

// Admit reports whether the connection may proceed.
func (d Decision) Admit() bool { return d.admit }

// Reason returns the human-readable denial reason.
// It is empty for admitted connections.
func (d Decision) Reason() string { return d.reason }

func (d Decision) String() string {
	if d.admit {
		return "admit"
	}
	if d.reason == "" {
		return "deny"
	}
	return "deny: " + d.reason
}
