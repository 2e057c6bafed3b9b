package proxy

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/go-logr/logr"
	"github.com/rs/xid"
	"go.minekube.com/common/minecraft/component"

	"go.minekube.com/enforcedomain/pkg/config"
	"go.minekube.com/enforcedomain/pkg/internal/connwrap"
	"go.minekube.com/enforcedomain/pkg/proto"
	"go.minekube.com/enforcedomain/pkg/proto/packet"
	"go.minekube.com/enforcedomain/pkg/util/componentutil"
	"go.minekube.com/enforcedomain/pkg/util/errs"
	"go.minekube.com/enforcedomain/pkg/util/netutil"
)

// writeTimeout bounds writing a disconnect packet to a client.
const writeTimeout = 5 * time.Second

var (
	loginQuotaExceededReason = &component.Text{
		Content: "You are logging in too fast, please calm down and retry.",
	}
	backendUnavailableReason = &component.Text{
		Content: "Unable to connect to the server, please try again later.",
	}
)

// HandleConn handles a just-accepted connection that
// has not had any I/O performed on it yet.
// It returns when the connection is closed.
func (p *Proxy) HandleConn(ctx context.Context, raw net.Conn) {
	conn := &connwrap.Conn{Conn: raw}
	defer func() { _ = conn.Close() }()

	cfg, q := p.settings()
	if q.connections != nil && q.connections.Blocked(raw.RemoteAddr()) {
		p.log.V(1).Info("connection exceeded rate limit", "remoteAddr", raw.RemoteAddr().String())
		return
	}

	// Close the client on shutdown, unblocking reads and the pipe.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	id := xid.New().String()
	s := &session{
		proxy: p,
		cfg:   cfg,
		id:    id,
		log:   p.log.WithValues("connID", id, "remoteAddr", netutil.Host(raw.RemoteAddr())),
		conn:  conn,
		dec:   proto.NewDecoder(conn),
	}
	if err := s.handle(ctx, q); err != nil {
		errs.V(s.log, err).Info("closing connection", "error", err)
	}
}

type session struct {
	proxy *Proxy
	cfg   *config.Config
	id    string
	log   logr.Logger
	conn  *connwrap.Conn
	dec   *proto.Decoder
}

func (s *session) handle(ctx context.Context, q quotas) error {
	_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout.D()))

	handshake := new(packet.Handshake)
	handshakeCtx, err := s.dec.Decode(packet.HandshakeID, handshake)
	if err != nil {
		return fmt.Errorf("error reading handshake: %w", err)
	}
	s.dec.SetProtocol(proto.Protocol(handshake.ProtocolVersion))

	in := newInbound(s.id, s.conn, handshake)
	s.log = s.log.WithValues(
		"virtualHost", in.VirtualHost(),
		"protocol", in.Protocol().String(),
	)

	switch handshake.Intent() {
	case proto.StatusState:
		return s.handleStatus(ctx, in, handshakeCtx)
	case proto.LoginState, proto.TransferState:
		if q.logins != nil && q.logins.Blocked(s.conn.RemoteAddr()) {
			s.log.Info("login exceeded rate limit")
			return s.disconnect(loginQuotaExceededReason)
		}
		return s.handleLogin(ctx, in, handshakeCtx)
	default:
		return errs.NewSilentErr("invalid handshake intent %d", handshake.NextStatus)
	}
}

func (s *session) handleStatus(ctx context.Context, in *inbound, handshakeCtx *proto.PacketContext) error {
	e := NewStatusEvent(in)
	s.proxy.event.Fire(e)
	if !e.Allowed() {
		s.log.V(1).Info("status request denied")
		return nil
	}
	return s.forward(ctx, in, "", handshakeCtx)
}

func (s *session) handleLogin(ctx context.Context, in *inbound, handshakeCtx *proto.PacketContext) error {
	login := new(packet.ServerLogin)
	loginCtx, err := s.dec.Decode(packet.ServerLoginID, login)
	if err != nil {
		return fmt.Errorf("error reading login start: %w", err)
	}
	s.log = s.log.WithValues("username", login.Username)

	e := NewLoginEvent(in, login.Username, login.ID)
	s.proxy.event.Fire(e)
	if !e.Allowed() {
		reason := e.Reason()
		if reason == nil {
			reason = s.defaultDisconnectReason()
		}
		s.log.V(1).Info("login denied")
		return s.disconnect(reason)
	}

	err = s.forward(ctx, in, login.Username, handshakeCtx, loginCtx)
	if isDialErr(err) && !s.conn.Closed() {
		_ = s.disconnect(backendUnavailableReason)
	}
	return err
}

func (s *session) defaultDisconnectReason() component.Component {
	text, err := componentutil.ParseTextComponent(s.cfg.DisconnectMessage)
	if err != nil {
		return &component.Text{Content: config.DefaultDisconnectMessage}
	}
	return text
}

// disconnect sends a login disconnect packet with reason to the client.
func (s *session) disconnect(reason component.Component) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	c := &proto.PacketContext{Protocol: proto.Protocol(0)}
	if err := proto.Encode(s.conn, c, packet.LoginDisconnectID, packet.NewDisconnect(reason)); err != nil {
		return fmt.Errorf("error writing disconnect: %w", err)
	}
	return nil
}
