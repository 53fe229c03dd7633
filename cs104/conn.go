package cs104

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tjeske/go-iec60870/asdu"
	"github.com/tjeske/go-iec60870/internal/clog"
	"github.com/tjeske/go-iec60870/transport"
)

// Event is a connection lifecycle notification delivered through the
// EventHandler.
type Event int

const (
	EventOpened Event = iota
	EventClosed
	EventStartDtConReceived
	EventStopDtConReceived
)

func (e Event) String() string {
	switch e {
	case EventOpened:
		return "OPENED"
	case EventClosed:
		return "CLOSED"
	case EventStartDtConReceived:
		return "STARTDT_CON_RCVD"
	case EventStopDtConReceived:
		return "STOPDT_CON_RCVD"
	default:
		return "UNKNOWN"
	}
}

// ASDUHandler receives every application ASDU carried by an I-frame.
// Returning false drops that ASDU; the connection stays up either way.
type ASDUHandler func(c *Conn, u *asdu.ASDU) bool

// EventHandler receives connection lifecycle events. It is called from
// the connection's background goroutine and must not block on a lock
// the send path holds.
type EventHandler func(c *Conn, e Event)

// readPollDeadline bounds one socket read inside the background loop
// so timeout housekeeping runs even on a silent line.
const readPollDeadline = 100 * time.Millisecond

// Conn is one CS104 connection in either role: the client (controlling
// station) dials and activates it with STARTDT, the server (controlled
// station) accepts it and answers the activations. One background
// goroutine owns the socket's read side and the t1/t2/t3 housekeeping;
// Send may be called from any goroutine and is serialized against the
// receive and timeout paths by the connection mutex.
//
// Conn implements asdu.Connect, so every builder in package asdu sends
// through it directly.
type Conn struct {
	sock     net.Conn
	cfg      Config
	params   *asdu.Params
	isServer bool
	clock    transport.Clock
	log      clog.Log

	onReceive ASDUHandler
	onEvent   EventHandler

	mu        sync.Mutex
	sendCount uint16 // N(S) of the next outgoing I-frame
	recvCount uint16 // expected N(S) of the next incoming I-frame
	sbuf      *sendBuffer

	unconfirmedRecv int
	firstIReceived  bool
	lastConfirm     uint64 // monotonic ms of the last sent confirmation

	nextT3             uint64
	outstandingTestCon int
	uMsgTimeout        uint64 // 0 = no U activation pending

	started bool // data transfer activated by STARTDT
	closing bool
	closed  bool

	done chan struct{}
}

func newConn(sock net.Conn, isServer bool, cfg Config, params *asdu.Params,
	onReceive ASDUHandler, onEvent EventHandler, clock transport.Clock, lg *logrus.Logger) *Conn {

	if clock == nil {
		clock = transport.SystemClock{}
	}
	component := "cs104.client"
	if isServer {
		component = "cs104.server"
	}
	c := &Conn{
		sock:      sock,
		cfg:       cfg,
		params:    params,
		isServer:  isServer,
		clock:     clock,
		log:       clog.New(component, lg),
		onReceive: onReceive,
		onEvent:   onEvent,
		sbuf:      newSendBuffer(cfg.SendUnAckLimitK),
		done:      make(chan struct{}),
	}
	c.nextT3 = clock.NowMonotonicMs() + uint64(cfg.IdleTimeout3.Milliseconds())
	return c
}

// Params returns the application-layer sizing parameters of this
// connection (part of asdu.Connect).
func (c *Conn) Params() *asdu.Params { return c.params }

// RemoteAddr reports the peer's network address.
func (c *Conn) RemoteAddr() net.Addr { return c.sock.RemoteAddr() }

// Send encodes u into an I-frame and transmits it (part of
// asdu.Connect). It fails when data transfer has not been started,
// when k I-frames are already outstanding, or when the connection is
// down.
func (c *Conn) Send(u *asdu.ASDU) error {
	data, err := u.MarshalBinary()
	if err != nil {
		return err
	}
	return c.sendASDUBytes(data)
}

func (c *Conn) sendASDUBytes(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.closing {
		return ErrConnClosed
	}
	if !c.started {
		return ErrNotActive
	}
	if c.sbuf.full() {
		return ErrBufferFull
	}
	apdu, err := newIFrame(c.sendCount, c.recvCount, data)
	if err != nil {
		return err
	}
	c.log.Debugf("TX I[N(S)=%d N(R)=%d] %d bytes", c.sendCount, c.recvCount, len(apdu))
	if _, err := c.sock.Write(apdu); err != nil {
		return err
	}
	now := c.clock.NowMonotonicMs()
	c.sendCount = (c.sendCount + 1) % seqMod
	c.sbuf.push(c.sendCount, now)
	// The embedded N(R) confirms everything received so far.
	c.unconfirmedRecv = 0
	c.lastConfirm = now
	return nil
}

// SendStartDt transmits STARTDT act (client role). The confirmation
// is awaited by the t1 regime; EventStartDtConReceived reports it.
func (c *Conn) SendStartDt() error { return c.sendUActivation(uStartDtActive) }

// SendStopDt transmits STOPDT act (client role).
func (c *Conn) SendStopDt() error { return c.sendUActivation(uStopDtActive) }

// SendTestFr transmits TESTFR act out of band; the background loop
// also raises these by itself when t3 expires.
func (c *Conn) SendTestFr() error { return c.sendUActivation(uTestFrActive) }

func (c *Conn) sendUActivation(function byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.closing {
		return ErrConnClosed
	}
	if _, err := c.sock.Write(newUFrame(function)); err != nil {
		return err
	}
	c.uMsgTimeout = c.clock.NowMonotonicMs() + uint64(c.cfg.SendUnAckTimeout1.Milliseconds())
	return nil
}

// Start launches the background loop. The owner calls it exactly once
// after construction.
func (c *Conn) Start() {
	go c.run()
}

// Close asks the background loop to terminate and waits for it to
// release the socket.
func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed || c.closing {
		c.mu.Unlock()
		<-c.done
		return
	}
	c.closing = true
	c.mu.Unlock()
	<-c.done
}

// IsActive reports whether data transfer is currently started.
func (c *Conn) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started && !c.closed && !c.closing
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Conn) isClosing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closing
}

// run is the per-connection background task: read at most one APDU
// with a short poll deadline, feed it to the state machine, run the
// timeout pass, observe the close flag, loop.
func (c *Conn) run() {
	defer func() {
		c.sock.Close()
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		if c.onEvent != nil {
			c.onEvent(c, EventClosed)
		}
		close(c.done)
	}()

	buf := make([]byte, APDUSizeMax)
	for {
		if c.isClosing() {
			return
		}
		n, err := c.readAPDU(buf)
		if err != nil {
			c.log.Errorf("read: %v", err)
			return
		}
		if n > 0 {
			if err := c.handleAPDU(buf[:n]); err != nil {
				c.log.Errorf("protocol: %v", err)
				return
			}
		}
		if err := c.handleTimeouts(); err != nil {
			c.log.Errorf("timeout: %v", err)
			return
		}
	}
}

// readAPDU reads one whole APDU, returning (0, nil) when nothing
// arrived within the poll deadline. A partial frame that stalls is a
// transport failure, not a poll miss.
func (c *Conn) readAPDU(buf []byte) (int, error) {
	if err := c.sock.SetReadDeadline(time.Now().Add(readPollDeadline)); err != nil {
		return 0, err
	}
	if _, err := io.ReadFull(c.sock, buf[:1]); err != nil {
		if isTimeout(err) {
			return 0, nil
		}
		return 0, err
	}
	if buf[0] != startByte {
		return 0, ErrStartByte
	}
	// The rest of the frame is already in flight; allow it five poll
	// periods rather than failing on a boundary.
	if err := c.sock.SetReadDeadline(time.Now().Add(5 * readPollDeadline)); err != nil {
		return 0, err
	}
	if _, err := io.ReadFull(c.sock, buf[1:2]); err != nil {
		return 0, err
	}
	length := int(buf[1])
	if length < apciCtlSize {
		return 0, ErrAPDUTooShort
	}
	if length > APDUSizeMax-2 {
		return 0, ErrAPDUTooLarge
	}
	if _, err := io.ReadFull(c.sock, buf[2:2+length]); err != nil {
		return 0, err
	}
	return length + 2, nil
}

func isTimeout(err error) bool {
	nerr, ok := err.(net.Error)
	return ok && nerr.Timeout()
}

// handleAPDU is the receive path of spec 60870-5-104: sequence
// validation, window trimming, w-triggered confirmation and the U
// handshakes. Every valid message resets the t3 idle timer.
func (c *Conn) handleAPDU(apdu []byte) error {
	frame, asduBytes, err := parseAPCI(apdu)
	if err != nil {
		return err
	}

	c.mu.Lock()
	switch f := frame.(type) {
	case iAPCI:
		c.log.Debugf("RX %v", f)
		if !c.firstIReceived {
			c.firstIReceived = true
			c.lastConfirm = c.clock.NowMonotonicMs()
		}
		if f.sendSN != c.recvCount {
			c.mu.Unlock()
			return ErrSeqNumber
		}
		if !c.sbuf.confirm(f.rcvSN, c.sendCount) {
			c.mu.Unlock()
			return ErrSeqNumber
		}
		c.recvCount = (c.recvCount + 1) % seqMod
		c.unconfirmedRecv++
		if c.unconfirmedRecv >= int(c.cfg.RecvUnAckLimitW) {
			if err := c.writeSFrameLocked(); err != nil {
				c.mu.Unlock()
				return err
			}
		}
		c.resetT3Locked()
		c.mu.Unlock()

		u, err := asdu.ParseASDU(c.params, append([]byte(nil), asduBytes...))
		if err != nil {
			c.log.Warnf("bad ASDU dropped: %v", err)
			return nil
		}
		if c.onReceive != nil && !c.onReceive(c, u) {
			c.log.Debugf("ASDU %v rejected by handler", u)
		}
		return nil

	case sAPCI:
		c.log.Debugf("RX %v (send count %d)", f, c.sendCount)
		if !c.sbuf.confirm(f.rcvSN, c.sendCount) {
			c.mu.Unlock()
			return ErrSeqNumber
		}
		c.resetT3Locked()
		c.mu.Unlock()
		return nil

	case uAPCI:
		c.log.Debugf("RX %v", f)
		c.uMsgTimeout = 0
		var event Event = -1
		switch f.function {
		case uTestFrActive:
			_, err = c.sock.Write(newUFrame(uTestFrConfirm))
		case uTestFrConfirm:
			c.outstandingTestCon = 0
		case uStartDtActive:
			// Controlled station: confirm and open the data channel.
			c.started = true
			_, err = c.sock.Write(newUFrame(uStartDtConfirm))
		case uStartDtConfirm:
			c.started = true
			event = EventStartDtConReceived
		case uStopDtActive:
			c.started = false
			_, err = c.sock.Write(newUFrame(uStopDtConfirm))
		case uStopDtConfirm:
			c.started = false
			event = EventStopDtConReceived
		}
		c.resetT3Locked()
		c.mu.Unlock()
		if err != nil {
			return err
		}
		if event >= 0 && c.onEvent != nil {
			c.onEvent(c, event)
		}
		return nil

	default:
		c.mu.Unlock()
		return ErrAPDUTooShort
	}
}

// handleTimeouts is the periodic t1/t2/t3 pass; a non-nil return
// terminates the connection.
func (c *Conn) handleTimeouts() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.NowMonotonicMs()

	if now >= c.nextT3 {
		if c.outstandingTestCon > 2 {
			return ErrIdleTimeout
		}
		if _, err := c.sock.Write(newUFrame(uTestFrActive)); err != nil {
			return err
		}
		c.uMsgTimeout = now + uint64(c.cfg.SendUnAckTimeout1.Milliseconds())
		c.outstandingTestCon++
		c.resetT3Locked()
	}

	if c.unconfirmedRecv > 0 && now >= c.lastConfirm &&
		now-c.lastConfirm >= uint64(c.cfg.RecvUnAckTimeout2.Milliseconds()) {
		if err := c.writeSFrameLocked(); err != nil {
			return err
		}
	}

	if c.uMsgTimeout != 0 && now > c.uMsgTimeout {
		return ErrConfirmTimeout
	}

	if sent, ok := c.sbuf.oldestSentTime(); ok && now >= sent &&
		now-sent >= uint64(c.cfg.SendUnAckTimeout1.Milliseconds()) {
		return ErrConfirmTimeout
	}
	return nil
}

func (c *Conn) writeSFrameLocked() error {
	c.log.Debugf("TX S[N(R)=%d]", c.recvCount)
	if _, err := c.sock.Write(newSFrame(c.recvCount)); err != nil {
		return err
	}
	c.unconfirmedRecv = 0
	c.lastConfirm = c.clock.NowMonotonicMs()
	return nil
}

func (c *Conn) resetT3Locked() {
	c.nextT3 = c.clock.NowMonotonicMs() + uint64(c.cfg.IdleTimeout3.Milliseconds())
}
