// Package admission decides whether an inbound connection may proceed based
// on the virtual host the client dialed.
//
// The decision is a pure function of a Policy and the observed virtual host.
// It never returns an error: every input shape, including a missing host or
// an empty policy domain, maps to a Decision, and ambiguous input is denied.
package admission
