package cs101

import (
	"sync"

	"github.com/tjeske/go-iec60870/internal/clog"
	"github.com/tjeske/go-iec60870/transport"
)

// PrimaryState names the internal state of a primary (controlling)
// station's per-slave link layer. See companion standard 101,
// subclause 5.4 and its state diagrams.
type PrimaryState int

const (
	PrimaryIdle PrimaryState = iota
	PrimaryRequestStatusOfLink
	PrimaryResetRemoteLink
	PrimaryLinkLayersAvailable
	PrimaryServiceSendConfirm
	PrimaryServiceRequestRespond
	PrimarySecondaryBusy
	PrimaryLinkFailed
)

func (s PrimaryState) String() string {
	switch s {
	case PrimaryIdle:
		return "IDLE"
	case PrimaryRequestStatusOfLink:
		return "REQUEST_STATUS_OF_LINK"
	case PrimaryResetRemoteLink:
		return "RESET_REMOTE_LINK"
	case PrimaryLinkLayersAvailable:
		return "LINK_LAYERS_AVAILABLE"
	case PrimaryServiceSendConfirm:
		return "SERVICE_SEND_CONFIRM"
	case PrimaryServiceRequestRespond:
		return "SERVICE_REQUEST_RESPOND"
	case PrimarySecondaryBusy:
		return "SECONDARY_BUSY"
	case PrimaryLinkFailed:
		return "LINK_FAILED"
	default:
		return "UNKNOWN"
	}
}

// Writer is the minimal transport a Primary sends frames through. A
// transport.SerialTransceiver satisfies it directly.
type Writer interface {
	SendMessage(frame []byte) error
}

// Primary drives one primary-station link layer against a single
// slave address: the status-of-link/reset bring-up, the FCB toggle on
// confirmed sends, timeout-driven retransmission with an unadvanced
// FCB, and the class 1/2 request services. For an unbalanced master
// polling several slaves, construct one Primary per address and let
// an UnbalancedMaster rotate over them; for a balanced line construct
// exactly one against the peer's address.
type Primary struct {
	mu     sync.Mutex
	params *Params
	addr   uint16
	w      Writer
	clock  transport.Clock
	log    clog.Log

	state      PrimaryState
	nextFCB    bool
	pending    []byte // frame bytes awaiting ack/response, resent verbatim on timeout
	attempt    int
	deadlineMs uint64

	// requestClass1 latches the ACD bit from the secondary: class 1
	// data is waiting and should be fetched before routine class 2
	// polling.
	requestClass1 bool
	secondaryBusy bool // latches the DFC bit

	onUserData    UserDataHandler
	onStateChange StateChangedHandler
}

// NewPrimary constructs a primary-station link layer addressing addr.
// onStateChange may be nil.
func NewPrimary(params *Params, addr uint16, w Writer, clock transport.Clock, onUserData UserDataHandler, onStateChange StateChangedHandler) *Primary {
	return &Primary{
		params:        params,
		addr:          addr,
		w:             w,
		clock:         clock,
		log:           clog.New("cs101.primary", nil),
		state:         PrimaryIdle,
		onUserData:    onUserData,
		onStateChange: onStateChange,
	}
}

func (p *Primary) State() PrimaryState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Addr reports the slave address this session talks to.
func (p *Primary) Addr() uint16 { return p.addr }

// NeedsClass1 reports whether the secondary has signalled waiting
// class 1 data via ACD.
func (p *Primary) NeedsClass1() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requestClass1
}

func (p *Primary) notify(state LinkState) {
	if p.onStateChange != nil {
		p.onStateChange(int(p.addr), state)
	}
}

// Start begins the link bring-up: request status of link (FC 9),
// then reset remote link (FC 0) once the secondary answers. The
// standard requires both before user data may flow.
func (p *Primary) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sendAndArm(PrimaryRequestStatusOfLink,
		EncodeFixed(NewPrimaryControl(FCRequestLinkStatus, false, false), p.addr, p.params.LinkAddrSize))
}

// SendUserData transmits ud with the send/confirm service (FC 3),
// toggling FCB per the standard's duplicate-detection discipline. It
// fails if the link has not yet completed its reset handshake.
func (p *Primary) SendUserData(ud []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != PrimaryLinkLayersAvailable {
		return ErrLinkNotReady
	}
	frame := EncodeVariable(NewPrimaryControl(FCUserData, p.nextFCB, true), p.addr, p.params.LinkAddrSize, ud)
	p.nextFCB = !p.nextFCB
	return p.sendAndArm(PrimaryServiceSendConfirm, frame)
}

// SendTestFunction issues the link test service (FC 2), which follows
// the same FCB/confirm discipline as user data.
func (p *Primary) SendTestFunction() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != PrimaryLinkLayersAvailable {
		return ErrLinkNotReady
	}
	frame := EncodeFixed(NewPrimaryControl(FCTestFunctionForLink, p.nextFCB, true), p.addr, p.params.LinkAddrSize)
	p.nextFCB = !p.nextFCB
	return p.sendAndArm(PrimaryServiceSendConfirm, frame)
}

// PollClass1 issues FC 10 (request class 1 user data).
func (p *Primary) PollClass1() error { return p.poll(FCRequestUserData1) }

// PollClass2 issues FC 11 (request class 2 user data).
func (p *Primary) PollClass2() error { return p.poll(FCRequestUserData2) }

func (p *Primary) poll(fc byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != PrimaryLinkLayersAvailable {
		return ErrLinkNotReady
	}
	frame := EncodeFixed(NewPrimaryControl(fc, p.nextFCB, true), p.addr, p.params.LinkAddrSize)
	p.nextFCB = !p.nextFCB
	return p.sendAndArm(PrimaryServiceRequestRespond, frame)
}

func (p *Primary) sendAndArm(next PrimaryState, frame []byte) error {
	if err := p.w.SendMessage(frame); err != nil {
		return err
	}
	p.state = next
	p.pending = frame
	p.attempt = 0
	p.deadlineMs = p.clock.NowMonotonicMs() + uint64(p.params.TimeoutAck.Milliseconds())
	return nil
}

// HandleFrame feeds one reply frame from this station's slave into the
// state machine.
func (p *Primary) HandleFrame(f Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// The access-demand and data-flow-control bits ride on every
	// secondary reply, independent of the service in progress.
	if f.Control.ACD() {
		p.requestClass1 = true
	}
	if busy := f.Control.DFC(); busy != p.secondaryBusy {
		p.secondaryBusy = busy
		if busy {
			p.notify(LinkStateBusy)
		} else if p.state == PrimaryLinkLayersAvailable {
			p.notify(LinkStateAvailable)
		}
	}

	fc := f.Control.FunctionCode()
	switch p.state {
	case PrimaryRequestStatusOfLink:
		switch fc {
		case FCRespStatusOfLink, FCAck:
			p.log.Debugf("link %d status received, resetting remote link", p.addr)
			if err := p.sendAndArm(PrimaryResetRemoteLink,
				EncodeFixed(NewPrimaryControl(FCResetRemoteLink, false, false), p.addr, p.params.LinkAddrSize)); err != nil {
				p.fail()
			}
		default:
			p.fail()
		}

	case PrimaryResetRemoteLink:
		if fc == FCAck {
			p.state = PrimaryLinkLayersAvailable
			p.pending = nil
			// The secondary now expects FCB=1 on the first FCV frame.
			p.nextFCB = true
			p.log.Debugf("link %d available", p.addr)
			p.notify(LinkStateAvailable)
		} else {
			p.fail()
		}

	case PrimaryServiceSendConfirm:
		switch fc {
		case FCAck:
			p.state = PrimaryLinkLayersAvailable
			p.pending = nil
		case FCNack:
			p.log.Warnf("link %d cannot accept user data (NACK), holding", p.addr)
			p.state = PrimarySecondaryBusy
			p.deadlineMs = p.clock.NowMonotonicMs() + uint64(p.params.TimeoutAck.Milliseconds())
			p.notify(LinkStateBusy)
		default:
			p.fail()
		}

	case PrimaryServiceRequestRespond:
		switch fc {
		case FCRespUserData:
			p.state = PrimaryLinkLayersAvailable
			p.pending = nil
			p.requestClass1 = f.Control.ACD()
			if p.onUserData != nil {
				p.onUserData(f.UserData)
			}
		case FCRespNackNoData, FCRespStatusOfLink:
			// "No data" is not treated as a link failure; see
			// DESIGN.md on the FC 9 divergence from lib60870.
			p.state = PrimaryLinkLayersAvailable
			p.pending = nil
			if fc == FCRespNackNoData {
				p.requestClass1 = f.Control.ACD()
			}
		default:
			p.fail()
		}

	default:
		p.log.Debugf("unexpected frame fc=%d in state %s", fc, p.state)
	}
}

// Tick drives retry/failure timeout housekeeping and must be called
// periodically (e.g. from the owning station's run loop). A timed-out
// exchange is retransmitted verbatim - same frame, same FCB, so the
// secondary can tell the repeat from a fresh send - up to
// Params.RepeatCount times before the link is declared failed.
func (p *Primary) Tick() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return
	}
	if p.clock.NowMonotonicMs() < p.deadlineMs {
		return
	}

	switch p.state {
	case PrimaryRequestStatusOfLink:
		// Bring-up got no answer; fall back to IDLE so the owner can
		// retry the whole sequence.
		p.log.Warnf("link %d status request unanswered", p.addr)
		p.state = PrimaryIdle
		p.pending = nil
		p.notify(LinkStateIdle)
		return

	case PrimaryResetRemoteLink:
		p.log.Warnf("link %d reset unanswered", p.addr)
		p.state = PrimaryIdle
		p.pending = nil
		p.notify(LinkStateError)
		return

	case PrimarySecondaryBusy:
		// Retry the held frame now that the busy pause elapsed.
		p.state = PrimaryServiceSendConfirm
	}

	p.attempt++
	if p.attempt > p.params.RepeatCount {
		p.fail()
		return
	}
	p.log.Warnf("retry %d/%d for link %d", p.attempt, p.params.RepeatCount, p.addr)
	if err := p.w.SendMessage(p.pending); err != nil {
		p.log.Errorf("retry send failed: %v", err)
	}
	p.deadlineMs = p.clock.NowMonotonicMs() + uint64(p.params.TimeoutAck.Milliseconds())
}

func (p *Primary) fail() {
	p.state = PrimaryLinkFailed
	p.pending = nil
	p.log.Errorf("link %d failed", p.addr)
	p.notify(LinkStateError)
}

// SendBroadcast transmits ud unconfirmed (FC 4) to the broadcast
// address of the line. Broadcasts carry no per-slave bookkeeping and
// expect no reply.
func SendBroadcast(w Writer, params *Params, ud []byte) error {
	frame := EncodeVariable(NewPrimaryControl(FCUnconfirmedUserData, false, false),
		BroadcastAddr(params.LinkAddrSize), params.LinkAddrSize, ud)
	return w.SendMessage(frame)
}

// UnbalancedMaster rotates the request services across a set of
// Primary sessions, one per slave address, as an unbalanced primary
// station must since exactly one exchange may be outstanding on the
// shared line at a time. Slaves that signalled ACD get a class 1
// request before the routine class 2 poll.
type UnbalancedMaster struct {
	mu       sync.Mutex
	sessions []*Primary
	next     int
}

// NewUnbalancedMaster constructs a round-robin scheduler over sessions.
func NewUnbalancedMaster(sessions []*Primary) *UnbalancedMaster {
	return &UnbalancedMaster{sessions: sessions}
}

// PollNext advances the rotation by one slave: links in IDLE are
// (re)started, slaves with pending access demand are polled for
// class 1, everything else for class 2. A link in LINK_FAILED, or one
// with an exchange in progress, is left as it is. It returns which
// session the tick targeted.
func (m *UnbalancedMaster) PollNext() (*Primary, error) {
	m.mu.Lock()
	if len(m.sessions) == 0 {
		m.mu.Unlock()
		return nil, ErrLinkNotReady
	}
	s := m.sessions[m.next]
	m.next = (m.next + 1) % len(m.sessions)
	m.mu.Unlock()

	switch s.State() {
	case PrimaryIdle:
		return s, s.Start()
	case PrimaryLinkLayersAvailable:
		if s.NeedsClass1() {
			return s, s.PollClass1()
		}
		return s, s.PollClass2()
	default:
		return s, nil
	}
}

// TickAll drives Tick on every session; call it once per run-loop
// iteration.
func (m *UnbalancedMaster) TickAll() {
	m.mu.Lock()
	sessions := append([]*Primary(nil), m.sessions...)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Tick()
	}
}
