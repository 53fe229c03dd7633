package cs101

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a hand-cranked transport.Clock.
type fakeClock struct {
	nowMs uint64
}

func (c *fakeClock) NowMonotonicMs() uint64 { return c.nowMs }
func (c *fakeClock) NowUTCMs() uint64       { return c.nowMs }

// frameLog captures every frame a Primary writes.
type frameLog struct {
	frames [][]byte
}

func (w *frameLog) SendMessage(frame []byte) error {
	w.frames = append(w.frames, append([]byte(nil), frame...))
	return nil
}

func (w *frameLog) last(t *testing.T, addrSize LinkAddrSize) Frame {
	t.Helper()
	require.NotEmpty(t, w.frames)
	f, _, err := ParseFrame(w.frames[len(w.frames)-1], addrSize)
	require.NoError(t, err)
	return f
}

func secondaryReply(t *testing.T, fc byte, acd, dfc bool) Frame {
	t.Helper()
	f, _, err := ParseFrame(EncodeFixed(NewSecondaryControl(fc, acd, dfc), 7, LinkAddrSizeOne), LinkAddrSizeOne)
	require.NoError(t, err)
	return f
}

func startPrimary(t *testing.T) (*Primary, *frameLog, *fakeClock) {
	t.Helper()
	w := &frameLog{}
	clock := &fakeClock{nowMs: 1000}
	p := NewPrimary(DefaultParams(), 7, w, clock, nil, nil)

	require.NoError(t, p.Start())
	assert.Equal(t, PrimaryRequestStatusOfLink, p.State())
	assert.Equal(t, FCRequestLinkStatus, w.last(t, LinkAddrSizeOne).Control.FunctionCode())

	p.HandleFrame(secondaryReply(t, FCRespStatusOfLink, false, false))
	assert.Equal(t, PrimaryResetRemoteLink, p.State())
	assert.Equal(t, FCResetRemoteLink, w.last(t, LinkAddrSizeOne).Control.FunctionCode())

	p.HandleFrame(secondaryReply(t, FCAck, false, false))
	require.Equal(t, PrimaryLinkLayersAvailable, p.State())
	return p, w, clock
}

func TestPrimaryBringUp(t *testing.T) {
	startPrimary(t)
}

func TestPrimarySendUserDataConfirm(t *testing.T) {
	p, w, _ := startPrimary(t)

	require.NoError(t, p.SendUserData([]byte{1, 2, 3}))
	assert.Equal(t, PrimaryServiceSendConfirm, p.State())
	sent := w.last(t, LinkAddrSizeOne)
	assert.Equal(t, FCUserData, sent.Control.FunctionCode())
	assert.True(t, sent.Control.FCV())
	assert.True(t, sent.Control.FCB(), "first FCV frame after reset carries FCB=1")

	p.HandleFrame(secondaryReply(t, FCAck, false, false))
	assert.Equal(t, PrimaryLinkLayersAvailable, p.State())

	// The next confirmed send toggles FCB.
	require.NoError(t, p.SendUserData([]byte{4}))
	assert.False(t, w.last(t, LinkAddrSizeOne).Control.FCB())
}

func TestPrimaryRetransmitKeepsFCB(t *testing.T) {
	p, w, clock := startPrimary(t)
	require.NoError(t, p.SendUserData([]byte{1}))
	sent := append([]byte(nil), w.frames[len(w.frames)-1]...)

	// No reply within the ack timeout: the frame is repeated verbatim,
	// FCB unadvanced.
	clock.nowMs += 250
	p.Tick()
	assert.Equal(t, sent, w.frames[len(w.frames)-1])
	assert.Equal(t, PrimaryServiceSendConfirm, p.State())

	p.HandleFrame(secondaryReply(t, FCAck, false, false))
	assert.Equal(t, PrimaryLinkLayersAvailable, p.State())
}

func TestPrimaryFailsAfterRepeatCount(t *testing.T) {
	var states []LinkState
	w := &frameLog{}
	clock := &fakeClock{nowMs: 1000}
	p := NewPrimary(DefaultParams(), 7, w, clock, nil, func(addr int, s LinkState) {
		states = append(states, s)
	})
	require.NoError(t, p.Start())
	p.HandleFrame(secondaryReply(t, FCRespStatusOfLink, false, false))
	p.HandleFrame(secondaryReply(t, FCAck, false, false))
	require.NoError(t, p.SendUserData([]byte{1}))

	sends := len(w.frames)
	for i := 0; i < 3; i++ { // RepeatCount retries
		clock.nowMs += 250
		p.Tick()
	}
	assert.Equal(t, sends+3, len(w.frames))
	clock.nowMs += 250
	p.Tick()
	assert.Equal(t, PrimaryLinkFailed, p.State())
	assert.Contains(t, states, LinkStateError)
}

func TestPrimaryRequestRespond(t *testing.T) {
	var received [][]byte
	w := &frameLog{}
	clock := &fakeClock{nowMs: 1000}
	p := NewPrimary(DefaultParams(), 7, w, clock, func(ud []byte) {
		received = append(received, append([]byte(nil), ud...))
	}, nil)
	require.NoError(t, p.Start())
	p.HandleFrame(secondaryReply(t, FCRespStatusOfLink, false, false))
	p.HandleFrame(secondaryReply(t, FCAck, false, false))

	require.NoError(t, p.PollClass2())
	assert.Equal(t, PrimaryServiceRequestRespond, p.State())

	reply, _, err := ParseFrame(EncodeVariable(NewSecondaryControl(FCRespUserData, false, false), 7, LinkAddrSizeOne, []byte{9, 9}), LinkAddrSizeOne)
	require.NoError(t, err)
	p.HandleFrame(reply)
	assert.Equal(t, PrimaryLinkLayersAvailable, p.State())
	require.Len(t, received, 1)
	assert.Equal(t, []byte{9, 9}, received[0])

	// "No data" is benign: the link stays available.
	require.NoError(t, p.PollClass1())
	p.HandleFrame(secondaryReply(t, FCRespNackNoData, false, false))
	assert.Equal(t, PrimaryLinkLayersAvailable, p.State())
}

func TestPrimaryACDSchedulesClass1(t *testing.T) {
	p, _, _ := startPrimary(t)
	assert.False(t, p.NeedsClass1())

	require.NoError(t, p.PollClass2())
	reply, _, err := ParseFrame(EncodeVariable(NewSecondaryControl(FCRespUserData, true, false), 7, LinkAddrSizeOne, []byte{1}), LinkAddrSizeOne)
	require.NoError(t, err)
	p.HandleFrame(reply)
	assert.True(t, p.NeedsClass1(), "ACD latches a class 1 request")

	require.NoError(t, p.PollClass1())
	p.HandleFrame(secondaryReply(t, FCRespNackNoData, false, false))
	assert.False(t, p.NeedsClass1(), "a clean class 1 response clears the demand")
}

func TestPrimaryNackHoldsThenRetries(t *testing.T) {
	p, w, clock := startPrimary(t)
	require.NoError(t, p.SendUserData([]byte{1}))
	sent := append([]byte(nil), w.frames[len(w.frames)-1]...)

	p.HandleFrame(secondaryReply(t, FCNack, false, false))
	assert.Equal(t, PrimarySecondaryBusy, p.State())

	clock.nowMs += 250
	p.Tick()
	assert.Equal(t, PrimaryServiceSendConfirm, p.State())
	assert.Equal(t, sent, w.frames[len(w.frames)-1], "the held frame is resent unchanged")
}

func TestPrimaryBringUpTimeoutFallsBackToIdle(t *testing.T) {
	w := &frameLog{}
	clock := &fakeClock{nowMs: 1000}
	p := NewPrimary(DefaultParams(), 7, w, clock, nil, nil)
	require.NoError(t, p.Start())

	clock.nowMs += 250
	p.Tick()
	assert.Equal(t, PrimaryIdle, p.State())
}

func TestUnbalancedMasterRotation(t *testing.T) {
	w := &frameLog{}
	clock := &fakeClock{nowMs: 1000}
	a := NewPrimary(DefaultParams(), 1, w, clock, nil, nil)
	b := NewPrimary(DefaultParams(), 2, w, clock, nil, nil)
	m := NewUnbalancedMaster([]*Primary{a, b})

	// First pass starts both links.
	s1, err := m.PollNext()
	require.NoError(t, err)
	assert.Same(t, a, s1)
	assert.Equal(t, PrimaryRequestStatusOfLink, a.State())

	s2, err := m.PollNext()
	require.NoError(t, err)
	assert.Same(t, b, s2)

	// Bring slave 1 up; the rotation then polls it for class 2.
	a.HandleFrame(func() Frame {
		f, _, _ := ParseFrame(EncodeFixed(NewSecondaryControl(FCRespStatusOfLink, false, false), 1, LinkAddrSizeOne), LinkAddrSizeOne)
		return f
	}())
	a.HandleFrame(func() Frame {
		f, _, _ := ParseFrame(EncodeFixed(NewSecondaryControl(FCAck, false, false), 1, LinkAddrSizeOne), LinkAddrSizeOne)
		return f
	}())
	require.Equal(t, PrimaryLinkLayersAvailable, a.State())

	s3, err := m.PollNext()
	require.NoError(t, err)
	assert.Same(t, a, s3)
	assert.Equal(t, PrimaryServiceRequestRespond, a.State())
}

func TestSendBroadcast(t *testing.T) {
	w := &frameLog{}
	require.NoError(t, SendBroadcast(w, DefaultParams(), []byte{1, 2}))
	f := w.last(t, LinkAddrSizeOne)
	assert.Equal(t, FCUnconfirmedUserData, f.Control.FunctionCode())
	assert.Equal(t, uint16(255), f.Addr)
	assert.Equal(t, []byte{1, 2}, f.UserData)
}
