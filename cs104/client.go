package cs104

import (
	"crypto/tls"
	"net"

	"github.com/sirupsen/logrus"
	"github.com/tjeske/go-iec60870/asdu"
	"github.com/tjeske/go-iec60870/transport"
)

// Client is the CS104 controlling station (master) endpoint: it dials
// the controlled station, activates data transfer with STARTDT and
// exposes the live connection's asdu.Connect surface, so commands and
// interrogations are issued through the builders in package asdu:
//
//	cli := cs104.NewClient("substation:2404", cs104.DefaultConfig(),
//		asdu.ParamsWide104(), handler, events)
//	if err := cli.Connect(); err != nil { ... }
//	cli.SendStartDt()
//	asdu.InterrogationCmd(cli, asdu.CauseOfTransmission{Cause: asdu.CotAct},
//		1, asdu.QOIStation)
type Client struct {
	address string
	cfg     Config
	params  *asdu.Params

	onReceive ASDUHandler
	onEvent   EventHandler

	tlsCfg *tls.Config
	clock  transport.Clock
	lg     *logrus.Logger

	conn *Conn
}

// ClientOption adjusts optional client behaviour.
type ClientOption func(*Client)

// WithClientTLS dials through TLS; pair it with NewTLSConfig to apply
// the IEC 62351-4 profile.
func WithClientTLS(tc *tls.Config) ClientOption {
	return func(c *Client) { c.tlsCfg = tc }
}

// WithClientLogger routes the client's logging through lg.
func WithClientLogger(lg *logrus.Logger) ClientOption {
	return func(c *Client) { c.lg = lg }
}

// WithClientClock substitutes the timeout clock (used by tests).
func WithClientClock(clock transport.Clock) ClientOption {
	return func(c *Client) { c.clock = clock }
}

// NewClient prepares a client for address ("host:port"). cfg is
// normalized with Valid; a broken cfg surfaces from Connect.
func NewClient(address string, cfg Config, params *asdu.Params,
	onReceive ASDUHandler, onEvent EventHandler, opts ...ClientOption) *Client {

	c := &Client{
		address:   address,
		cfg:       cfg,
		params:    params,
		onReceive: onReceive,
		onEvent:   onEvent,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Connect dials the server within t0 and launches the connection's
// background loop. Data transfer still needs SendStartDt.
func (c *Client) Connect() error {
	if c.conn != nil && !c.conn.isClosed() {
		return ErrUseConnected
	}
	if err := c.cfg.Valid(); err != nil {
		return err
	}
	if err := c.params.Valid(); err != nil {
		return err
	}

	dialer := net.Dialer{Timeout: c.cfg.ConnectTimeout0}
	var (
		sock net.Conn
		err  error
	)
	if c.tlsCfg != nil {
		sock, err = tls.DialWithDialer(&dialer, "tcp", c.address, c.tlsCfg)
	} else {
		sock, err = dialer.Dial("tcp", c.address)
	}
	if err != nil {
		return err
	}

	c.conn = newConn(sock, false, c.cfg, c.params, c.onReceive, c.onEvent, c.clock, c.lg)
	c.conn.Start()
	if c.onEvent != nil {
		c.onEvent(c.conn, EventOpened)
	}
	return nil
}

// SendStartDt activates data transfer; EventStartDtConReceived reports
// the confirmation, the t1 regime enforces it.
func (c *Client) SendStartDt() error {
	if c.conn == nil {
		return ErrConnClosed
	}
	return c.conn.SendStartDt()
}

// SendStopDt deactivates data transfer.
func (c *Client) SendStopDt() error {
	if c.conn == nil {
		return ErrConnClosed
	}
	return c.conn.SendStopDt()
}

// Params implements asdu.Connect.
func (c *Client) Params() *asdu.Params { return c.params }

// Send implements asdu.Connect over the live connection.
func (c *Client) Send(u *asdu.ASDU) error {
	if c.conn == nil {
		return ErrConnClosed
	}
	return c.conn.Send(u)
}

// IsActive reports whether the connection is up with data transfer
// started.
func (c *Client) IsActive() bool {
	return c.conn != nil && c.conn.IsActive()
}

// Close tears the connection down; EventClosed fires once the
// background loop has released the socket.
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
