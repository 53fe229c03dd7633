package cs104

import (
	"crypto/tls"
	"fmt"
	"net"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tjeske/go-iec60870/asdu"
	"github.com/tjeske/go-iec60870/internal/clog"
	"github.com/tjeske/go-iec60870/transport"
)

// Server is the CS104 controlled station (outstation) endpoint. It
// accepts connections, answers STARTDT/STOPDT/TESTFR activations and
// hands every received ASDU to the configured handler. Each accepted
// connection is a *Conn implementing asdu.Connect, so telemetry
// responses are built with the asdu package builders against the very
// connection the request arrived on.
type Server struct {
	cfg    Config
	params *asdu.Params

	onReceive ASDUHandler
	onEvent   EventHandler

	tlsCfg *tls.Config
	clock  transport.Clock
	lg     *logrus.Logger
	log    clog.Log

	mu       sync.Mutex
	listener net.Listener
	sessions map[*Conn]struct{}
	closed   bool
}

// ServerOption adjusts optional server behaviour.
type ServerOption func(*Server)

// WithServerTLS serves over TLS (IEC 62351 profile via NewTLSConfig).
func WithServerTLS(tc *tls.Config) ServerOption {
	return func(s *Server) { s.tlsCfg = tc }
}

// WithServerLogger routes the server's logging through lg.
func WithServerLogger(lg *logrus.Logger) ServerOption {
	return func(s *Server) { s.lg = lg }
}

// WithServerClock substitutes the timeout clock (used by tests).
func WithServerClock(clock transport.Clock) ServerOption {
	return func(s *Server) { s.clock = clock }
}

// NewServer prepares a controlled station.
func NewServer(cfg Config, params *asdu.Params,
	onReceive ASDUHandler, onEvent EventHandler, opts ...ServerOption) *Server {

	s := &Server{
		cfg:       cfg,
		params:    params,
		onReceive: onReceive,
		onEvent:   onEvent,
		sessions:  make(map[*Conn]struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = clog.New("cs104.listener", s.lg)
	return s
}

// ListenAndServe accepts connections on address (":2404" for the
// registered plain port, ":19998" for TLS) until Close is called.
func (s *Server) ListenAndServe(address string) error {
	if err := s.cfg.Valid(); err != nil {
		return err
	}
	if err := s.params.Valid(); err != nil {
		return err
	}

	var (
		l   net.Listener
		err error
	)
	if s.tlsCfg != nil {
		l, err = tls.Listen("tcp", address, s.tlsCfg)
	} else {
		l, err = net.Listen("tcp", address)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		l.Close()
		return ErrConnClosed
	}
	s.listener = l
	s.mu.Unlock()

	s.log.Infof("listening on %s", address)
	for {
		sock, err := l.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return fmt.Errorf("cs104: accept: %w", err)
		}
		s.serve(sock)
	}
}

func (s *Server) serve(sock net.Conn) {
	conn := newConn(sock, true, s.cfg, s.params, s.onReceive, s.trackEvents, s.clock, s.lg)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sock.Close()
		return
	}
	s.sessions[conn] = struct{}{}
	s.mu.Unlock()

	s.log.Infof("connection from %s", sock.RemoteAddr())
	conn.Start()
	if s.onEvent != nil {
		s.onEvent(conn, EventOpened)
	}
}

// trackEvents drops finished sessions from the registry before
// forwarding the event.
func (s *Server) trackEvents(c *Conn, e Event) {
	if e == EventClosed {
		s.mu.Lock()
		delete(s.sessions, c)
		s.mu.Unlock()
	}
	if s.onEvent != nil {
		s.onEvent(c, e)
	}
}

// Close stops accepting and tears down every live session.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	l := s.listener
	conns := make([]*Conn, 0, len(s.sessions))
	for c := range s.sessions {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	if l != nil {
		l.Close()
	}
	for _, c := range conns {
		c.Close()
	}
}
