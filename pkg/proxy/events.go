package proxy

import (
	"net"
	"time"

	"github.com/google/uuid"
	"go.minekube.com/common/minecraft/component"
)

// ReadyEvent is fired once the proxy listens for connections.
type ReadyEvent struct {
	addr string
}

// Addr returns the address the proxy is listening on.
func (e *ReadyEvent) Addr() string { return e.addr }

// StatusEvent is fired when a client requests the server list status.
// Denying it closes the connection without a response.
type StatusEvent struct {
	inbound Inbound
	denied  bool
}

// NewStatusEvent returns a new allowed StatusEvent.
func NewStatusEvent(inbound Inbound) *StatusEvent {
	return &StatusEvent{inbound: inbound}
}

// Conn returns the inbound connection.
func (e *StatusEvent) Conn() Inbound { return e.inbound }

// Allowed reports whether the status request is forwarded to the backend.
func (e *StatusEvent) Allowed() bool { return !e.denied }

// Deny closes the connection without a status response.
func (e *StatusEvent) Deny() { e.denied = true }

// Allow forwards the status request to the backend.
func (e *StatusEvent) Allow() { e.denied = false }

// LoginEvent is fired when a player sent its login start packet,
// before the connection is forwarded to the backend server.
//
// Subscribers run synchronously. A denied login is disconnected
// with the event's reason.
type LoginEvent struct {
	inbound  Inbound
	username string
	id       uuid.UUID

	denied bool
	reason component.Component
}

// NewLoginEvent returns a new allowed LoginEvent.
func NewLoginEvent(inbound Inbound, username string, id uuid.UUID) *LoginEvent {
	return &LoginEvent{
		inbound:  inbound,
		username: username,
		id:       id,
	}
}

// Conn returns the inbound connection that is connecting to the proxy.
func (e *LoginEvent) Conn() Inbound { return e.inbound }

// Username returns the username the player logs in with.
func (e *LoginEvent) Username() string { return e.username }

// ID returns the UUID of the connecting player. May be uuid.Nil!
// This value is nil on 1.19 and lower,
// up to 1.20.1 it is optional and from 1.20.2 it will always be available.
func (e *LoginEvent) ID() (uuid.UUID, bool) { return e.id, e.id != uuid.Nil }

// Allowed reports whether the login may proceed.
func (e *LoginEvent) Allowed() bool { return !e.denied }

// Reason returns the deny reason to disconnect the player with.
// May be nil!
func (e *LoginEvent) Reason() component.Component { return e.reason }

// Deny denies the login with the given reason.
// A nil reason uses the configured disconnect message.
func (e *LoginEvent) Deny(reason component.Component) {
	e.denied = true
	e.reason = reason
}

// Allow allows the login.
func (e *LoginEvent) Allow() {
	e.denied = false
	e.reason = nil
}

// ForwardEndReason describes why a forward terminated.
type ForwardEndReason string

const (
	ClientClosed         ForwardEndReason = "ClientClosed"
	BackendClosed        ForwardEndReason = "BackendClosed"
	BackendConnectFailed ForwardEndReason = "BackendConnectFailed"
	Timeout              ForwardEndReason = "Timeout"
	Shutdown             ForwardEndReason = "Shutdown"
	Error                ForwardEndReason = "Error"
)

// ForwardEndedEvent is fired when an admitted connection to the backend ends.
type ForwardEndedEvent struct {
	Conn        Inbound
	Username    string // empty for status requests
	BackendAddr net.Addr
	StartedAt   time.Time
	EndedAt     time.Time
	Reason      ForwardEndReason
}
