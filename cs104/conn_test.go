package cs104

import (
	"io"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjeske/go-iec60870/asdu"
)

// atomicClock is a transport.Clock tests can jump forward while the
// connection's background loop is running.
type atomicClock struct {
	nowMs uint64
}

func (c *atomicClock) NowMonotonicMs() uint64 { return atomic.LoadUint64(&c.nowMs) }
func (c *atomicClock) NowUTCMs() uint64       { return atomic.LoadUint64(&c.nowMs) }
func (c *atomicClock) advance(d time.Duration) {
	atomic.AddUint64(&c.nowMs, uint64(d.Milliseconds()))
}

// readAPDUFrom pulls one whole APDU off the test's end of the pipe.
func readAPDUFrom(t *testing.T, c net.Conn) []byte {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	head := make([]byte, 2)
	_, err := io.ReadFull(c, head)
	require.NoError(t, err)
	require.Equal(t, byte(0x68), head[0])
	body := make([]byte, head[1])
	_, err = io.ReadFull(c, body)
	require.NoError(t, err)
	return append(head, body...)
}

func writeAPDUTo(t *testing.T, c net.Conn, apdu []byte) {
	t.Helper()
	require.NoError(t, c.SetWriteDeadline(time.Now().Add(2*time.Second)))
	_, err := c.Write(apdu)
	require.NoError(t, err)
}

type testConnSetup struct {
	conn   *Conn
	peer   net.Conn
	events chan Event
	asdus  chan *asdu.ASDU
	clock  *atomicClock
}

func newTestConn(t *testing.T, isServer bool, cfg Config, onReceive ASDUHandler) *testConnSetup {
	t.Helper()
	require.NoError(t, cfg.Valid())
	local, peer := net.Pipe()

	s := &testConnSetup{
		peer:   peer,
		events: make(chan Event, 16),
		asdus:  make(chan *asdu.ASDU, 16),
		clock:  &atomicClock{nowMs: 1},
	}
	if onReceive == nil {
		onReceive = func(_ *Conn, u *asdu.ASDU) bool {
			s.asdus <- u
			return true
		}
	}
	s.conn = newConn(local, isServer, cfg, asdu.ParamsWide104(), onReceive,
		func(_ *Conn, e Event) { s.events <- e }, s.clock, nil)
	s.conn.Start()
	t.Cleanup(func() {
		peer.Close()
		s.conn.Close()
	})
	return s
}

func (s *testConnSetup) expectEvent(t *testing.T, want Event) {
	t.Helper()
	select {
	case e := <-s.events:
		require.Equal(t, want, e)
	case <-time.After(2 * time.Second):
		t.Fatalf("no %v event within deadline", want)
	}
}

func TestServerAnswersStartDtAct(t *testing.T) {
	// Scenario: client sends 68 04 07 00 00 00, the server must answer
	// 68 04 0B 00 00 00 and open the data channel.
	s := newTestConn(t, true, DefaultConfig(), nil)

	writeAPDUTo(t, s.peer, []byte{0x68, 0x04, 0x07, 0x00, 0x00, 0x00})
	reply := readAPDUFrom(t, s.peer)
	assert.Equal(t, []byte{0x68, 0x04, 0x0b, 0x00, 0x00, 0x00}, reply)

	require.Eventually(t, s.conn.IsActive, time.Second, 10*time.Millisecond)
}

func TestClientRaisesStartDtConEvent(t *testing.T) {
	s := newTestConn(t, false, DefaultConfig(), nil)

	sendErr := make(chan error, 1)
	go func() { sendErr <- s.conn.SendStartDt() }()
	act := readAPDUFrom(t, s.peer)
	require.NoError(t, <-sendErr)
	assert.Equal(t, []byte{0x68, 0x04, 0x07, 0x00, 0x00, 0x00}, act)

	writeAPDUTo(t, s.peer, newUFrame(uStartDtConfirm))
	s.expectEvent(t, EventStartDtConReceived)
	require.Eventually(t, s.conn.IsActive, time.Second, 10*time.Millisecond)
}

func TestConnAnswersTestFr(t *testing.T) {
	s := newTestConn(t, true, DefaultConfig(), nil)
	writeAPDUTo(t, s.peer, newUFrame(uTestFrActive))
	assert.Equal(t, newUFrame(uTestFrConfirm), readAPDUFrom(t, s.peer))
}

// buildGIRequest encodes the scenario's general interrogation ASDU:
// type 100, VSQ 1, COT act, CA 1, IOA 0, QOI 20.
func buildGIRequest(t *testing.T) []byte {
	t.Helper()
	u := asdu.NewASDU(asdu.ParamsWide104(), asdu.Identifier{
		Type:       asdu.CIcNa1,
		Cause:      asdu.CauseOfTransmission{Cause: asdu.CotAct},
		CommonAddr: 1,
	})
	require.NoError(t, u.SetVariableNumber(1))
	require.NoError(t, u.AppendInfoObjAddr(0))
	u.AppendBytes(byte(asdu.QOIStation))
	raw, err := u.MarshalBinary()
	require.NoError(t, err)
	return raw
}

func TestGeneralInterrogationExchange(t *testing.T) {
	// After STARTDT, an interrogation at N(S)=0/N(R)=0 is answered
	// with ACTIVATION_CON and ACTIVATION_TERMINATION, both carrying
	// N(R)=1.
	handler := func(c *Conn, u *asdu.ASDU) bool {
		if u.Type != asdu.CIcNa1 {
			return false
		}
		if err := u.SendReplyMirror(c, asdu.CotActCon); err != nil {
			t.Errorf("send act con: %v", err)
		}
		if err := u.SendReplyMirror(c, asdu.CotActTerm); err != nil {
			t.Errorf("send act term: %v", err)
		}
		return true
	}
	s := newTestConn(t, true, DefaultConfig(), handler)

	writeAPDUTo(t, s.peer, []byte{0x68, 0x04, 0x07, 0x00, 0x00, 0x00})
	readAPDUFrom(t, s.peer) // STARTDT con

	iframe, err := newIFrame(0, 0, buildGIRequest(t))
	require.NoError(t, err)
	writeAPDUTo(t, s.peer, iframe)

	wantCauses := []asdu.COT{asdu.CotActCon, asdu.CotActTerm}
	for i, wantCause := range wantCauses {
		apdu := readAPDUFrom(t, s.peer)
		frame, raw, err := parseAPCI(apdu)
		require.NoError(t, err)
		if_, ok := frame.(iAPCI)
		require.True(t, ok, "reply %d is not an I-frame", i)
		assert.Equal(t, uint16(i), if_.sendSN)
		assert.Equal(t, uint16(1), if_.rcvSN, "replies must confirm the received I-frame")

		u, err := asdu.ParseASDU(asdu.ParamsWide104(), raw)
		require.NoError(t, err)
		assert.Equal(t, asdu.CIcNa1, u.Type)
		assert.Equal(t, wantCause, u.Cause.Cause)
		assert.Equal(t, asdu.QOIStation, u.GetInterrogationCmd())
	}
}

func TestSequenceErrorClosesConnection(t *testing.T) {
	s := newTestConn(t, true, DefaultConfig(), nil)

	// N(S)=5 when 0 is expected is terminal.
	iframe, err := newIFrame(5, 0, buildGIRequest(t))
	require.NoError(t, err)
	writeAPDUTo(t, s.peer, iframe)

	s.expectEvent(t, EventClosed)
}

func TestInvalidNRClosesConnection(t *testing.T) {
	s := newTestConn(t, true, DefaultConfig(), nil)

	// N(R)=7 with nothing outstanding is outside every window.
	iframe, err := newIFrame(0, 7, buildGIRequest(t))
	require.NoError(t, err)
	writeAPDUTo(t, s.peer, iframe)

	s.expectEvent(t, EventClosed)
}

func TestWUnconfirmedTriggersSFrame(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RecvUnAckLimitW = 2
	s := newTestConn(t, true, cfg, nil)

	gi := buildGIRequest(t)
	for ns := uint16(0); ns < 2; ns++ {
		iframe, err := newIFrame(ns, 0, gi)
		require.NoError(t, err)
		writeAPDUTo(t, s.peer, iframe)
	}

	apdu := readAPDUFrom(t, s.peer)
	frame, _, err := parseAPCI(apdu)
	require.NoError(t, err)
	sf, ok := frame.(sAPCI)
	require.True(t, ok, "expected an S-frame, got %v", frame)
	assert.Equal(t, uint16(2), sf.rcvSN)
}

func TestSendRequiresStartDt(t *testing.T) {
	s := newTestConn(t, true, DefaultConfig(), nil)
	err := asdu.Single(s.conn, false, asdu.CauseOfTransmission{Cause: asdu.CotSpt}, 1,
		asdu.SinglePointInfo{Ioa: 1, Value: true})
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestT3IdleSendsTestFrAndT1ClosesUnanswered(t *testing.T) {
	s := newTestConn(t, true, DefaultConfig(), nil)

	// Jump past t3: the connection must probe with TESTFR act.
	s.clock.advance(21 * time.Second)
	apdu := readAPDUFrom(t, s.peer)
	assert.Equal(t, newUFrame(uTestFrActive), apdu)

	// No confirmation within t1 tears the connection down.
	s.clock.advance(16 * time.Second)
	s.expectEvent(t, EventClosed)
}

func TestTestFrConfirmKeepsConnection(t *testing.T) {
	s := newTestConn(t, true, DefaultConfig(), nil)

	s.clock.advance(21 * time.Second)
	assert.Equal(t, newUFrame(uTestFrActive), readAPDUFrom(t, s.peer))
	writeAPDUTo(t, s.peer, newUFrame(uTestFrConfirm))

	// Give the loop a moment; no close event may arrive.
	select {
	case e := <-s.events:
		t.Fatalf("unexpected event %v", e)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestT2ConfirmsReceivedIFrames(t *testing.T) {
	s := newTestConn(t, true, DefaultConfig(), nil)

	iframe, err := newIFrame(0, 0, buildGIRequest(t))
	require.NoError(t, err)
	writeAPDUTo(t, s.peer, iframe)
	<-s.asdus

	// One I-frame is below w; only the t2 expiry forces the S-frame.
	s.clock.advance(11 * time.Second)
	apdu := readAPDUFrom(t, s.peer)
	frame, _, err := parseAPCI(apdu)
	require.NoError(t, err)
	sf, ok := frame.(sAPCI)
	require.True(t, ok, "expected an S-frame, got %v", frame)
	assert.Equal(t, uint16(1), sf.rcvSN)
}

func TestSendBufferLimitsOutstandingIFrames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SendUnAckLimitK = 2
	s := newTestConn(t, true, cfg, nil)

	writeAPDUTo(t, s.peer, []byte{0x68, 0x04, 0x07, 0x00, 0x00, 0x00})
	readAPDUFrom(t, s.peer) // STARTDT con
	require.Eventually(t, s.conn.IsActive, time.Second, 10*time.Millisecond)

	send := func() error {
		return asdu.Single(s.conn, false, asdu.CauseOfTransmission{Cause: asdu.CotSpt}, 1,
			asdu.SinglePointInfo{Ioa: 1, Value: true})
	}

	done := make(chan error, 2)
	go func() {
		done <- send()
		done <- send()
	}()
	readAPDUFrom(t, s.peer)
	readAPDUFrom(t, s.peer)
	require.NoError(t, <-done)
	require.NoError(t, <-done)

	// k I-frames outstanding: the next send is refused until the peer
	// confirms.
	assert.ErrorIs(t, send(), ErrBufferFull)

	writeAPDUTo(t, s.peer, newSFrame(2))
	require.Eventually(t, func() bool {
		s.conn.mu.Lock()
		defer s.conn.mu.Unlock()
		return s.conn.sbuf.empty()
	}, time.Second, 10*time.Millisecond)

	go func() { done <- send() }()
	readAPDUFrom(t, s.peer)
	require.NoError(t, <-done)
}

func TestCloseRaisesClosedEvent(t *testing.T) {
	s := newTestConn(t, true, DefaultConfig(), nil)
	go s.conn.Close()
	s.expectEvent(t, EventClosed)
}

func TestConnRoundTripTelemetry(t *testing.T) {
	// Client and server conns wired back to back exchange a measured
	// value end to end.
	serverSock, clientSock := net.Pipe()
	events := make(chan Event, 16)
	received := make(chan *asdu.ASDU, 16)

	server := newConn(serverSock, true, DefaultConfig(), asdu.ParamsWide104(),
		nil, nil, nil, nil)
	client := newConn(clientSock, false, DefaultConfig(), asdu.ParamsWide104(),
		func(_ *Conn, u *asdu.ASDU) bool { received <- u; return true },
		func(_ *Conn, e Event) { events <- e }, nil, nil)
	server.Start()
	client.Start()
	defer server.Close()
	defer client.Close()

	require.NoError(t, client.SendStartDt())
	select {
	case e := <-events:
		require.Equal(t, EventStartDtConReceived, e)
	case <-time.After(2 * time.Second):
		t.Fatal("no STARTDT con")
	}

	require.Eventually(t, server.IsActive, time.Second, 10*time.Millisecond)
	err := asdu.MeasuredValueFloat(server, false, asdu.CauseOfTransmission{Cause: asdu.CotSpt}, 1,
		asdu.MeasuredValueFloatInfo{Ioa: 42, Value: 230.5})
	require.NoError(t, err)

	select {
	case u := <-received:
		require.Equal(t, asdu.MMeNc1, u.Type)
		info := u.GetMeasuredValueFloat()[0]
		assert.Equal(t, asdu.IOA(42), info.Ioa)
		assert.Equal(t, float32(230.5), info.Value)
	case <-time.After(2 * time.Second):
		t.Fatal("telemetry not delivered")
	}
}
