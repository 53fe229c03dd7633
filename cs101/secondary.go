package cs101

import (
	"sync"

	"github.com/tjeske/go-iec60870/internal/clog"
)

// SecondaryState names the visible state of an unbalanced secondary
// (outstation) link layer. See companion standard 101, subclause 5.3.
type SecondaryState int

const (
	SecondaryIdle SecondaryState = iota
	SecondaryAvailable
	SecondaryBusy
	SecondaryError
)

func (s SecondaryState) String() string {
	switch s {
	case SecondaryIdle:
		return "IDLE"
	case SecondaryAvailable:
		return "AVAILABLE"
	case SecondaryBusy:
		return "BUSY"
	case SecondaryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ClassData supplies a secondary station with pending outbound user
// data, split by the standard's two priority classes: class 1 (event
// data, polled by FC 10) and class 2 (everything else, polled by FC
// 11). A nil ud return means no data is pending and the secondary must
// reply FC 9 (RESP NACK, no data). HasClass1 lets the secondary set the
// ACD bit on unrelated replies (ACK, status-of-link) without consuming
// a queue entry.
type ClassData interface {
	HasClass1() bool
	PopClass1() (ud []byte, hasMore bool)
	PopClass2() (ud []byte, hasMore bool)
}

// UserDataHandler is notified of user data accepted from a primary
// station (FC 3 or FC 4). The secondary only calls it once per frame -
// a duplicate caused by a lost ACK, detected via the frame count bit,
// is re-acknowledged without a second call.
type UserDataHandler func(ud []byte)

// Secondary drives one unbalanced secondary link-layer endpoint.
// There is a single frame count bit per station: the expected FCB
// applies to FC 3 sends and FC 10/11 requests alike, and a single
// one-entry cache holds the last transmitted reply so a request
// repeated with an unadvanced FCB (a retransmission after a lost
// reply) is answered verbatim without touching the application or the
// class queues again.
//
// It is safe for concurrent use; HandleFrame is expected to run on a
// single reader goroutine while state queries may come from elsewhere.
type Secondary struct {
	mu     sync.Mutex
	params *Params
	addr   uint16
	state  SecondaryState
	busy   bool // reported to the primary via DFC

	expectedFCB bool
	fcbKnown    bool
	lastSent    []byte // retransmission cache, one entry

	lastActivityMs uint64

	data          ClassData
	onUserData    UserDataHandler
	onStateChange StateChangedHandler

	log clog.Log
}

// NewSecondary constructs a secondary station answering to addr, using
// data to source class 1/2 responses and onUserData to deliver
// accepted frames to the application. onStateChange may be nil.
func NewSecondary(params *Params, addr uint16, data ClassData, onUserData UserDataHandler, onStateChange StateChangedHandler) *Secondary {
	return &Secondary{
		params:        params,
		addr:          addr,
		state:         SecondaryIdle,
		data:          data,
		onUserData:    onUserData,
		onStateChange: onStateChange,
		log:           clog.New("cs101.secondary", nil),
	}
}

func (s *Secondary) State() SecondaryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetBusy controls the DFC bit the secondary reports: while busy, the
// primary must hold further user data.
func (s *Secondary) SetBusy(busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = busy
	if busy && s.state == SecondaryAvailable {
		s.setState(SecondaryBusy)
	} else if !busy && s.state == SecondaryBusy {
		s.setState(SecondaryAvailable)
	}
}

func (s *Secondary) setState(st SecondaryState) {
	if s.state == st {
		return
	}
	s.state = st
	if s.onStateChange != nil {
		var ls LinkState
		switch st {
		case SecondaryAvailable:
			ls = LinkStateAvailable
		case SecondaryBusy:
			ls = LinkStateBusy
		case SecondaryError:
			ls = LinkStateError
		default:
			ls = LinkStateIdle
		}
		s.onStateChange(-1, ls)
	}
}

// Tick performs idle housekeeping: with no valid frame inside
// Params.IdleTimeout an AVAILABLE station falls back to IDLE and will
// require a fresh link reset. The station run loop calls it with the
// current monotonic time.
func (s *Secondary) Tick(nowMs uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SecondaryAvailable {
		return
	}
	if nowMs-s.lastActivityMs >= uint64(s.params.IdleTimeout.Milliseconds()) {
		s.log.Debugf("idle timeout, dropping to IDLE")
		s.fcbKnown = false
		s.lastSent = nil
		s.setState(SecondaryIdle)
	}
}

// MarkActivity refreshes the idle clock; the station run loop calls it
// for every well-framed message seen on the line.
func (s *Secondary) MarkActivity(nowMs uint64) {
	s.mu.Lock()
	s.lastActivityMs = nowMs
	s.mu.Unlock()
}

// HandleBroadcast processes a frame sent to the broadcast address.
// Only FC 4 (user data, no reply) is legal there; anything else is
// malformed and moves the station to ERROR. Broadcasts are never
// answered.
func (s *Secondary) HandleBroadcast(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.Control.FunctionCode() != FCUnconfirmedUserData {
		s.log.Warnf("broadcast with function code %d", f.Control.FunctionCode())
		s.setState(SecondaryError)
		return
	}
	if s.onUserData != nil {
		s.onUserData(f.UserData)
	}
}

// HandleFrame processes one frame addressed to this station (callers
// filter by address before invoking it) and returns the bytes, if any,
// the transport should write back in reply.
func (s *Secondary) HandleFrame(f Frame) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Frame count bit discipline, shared by every FCV-carrying
	// service: a repeated FCB is the primary retrying after a lost
	// reply, answered from the cache alone.
	if f.Control.FCV() {
		if s.fcbKnown && f.Control.FCB() != s.expectedFCB {
			s.log.Debugf("repeated FCB from %d, retransmitting", f.Addr)
			return s.lastSent
		}
		s.expectedFCB = !f.Control.FCB()
		s.fcbKnown = true
	}

	fc := f.Control.FunctionCode()
	switch fc {
	case FCResetRemoteLink, FCResetUserProcess, FCResetFCB:
		s.expectedFCB = true
		s.fcbKnown = true
		s.lastSent = nil
		s.setState(SecondaryAvailable)
		s.log.Debugf("reset (fc %d) from %d", fc, f.Addr)
		return s.cacheReply(s.ack())

	case FCTestFunctionForLink:
		return s.cacheReply(s.ack())

	case FCUserData:
		if s.onUserData != nil {
			s.onUserData(f.UserData)
		}
		return s.cacheReply(s.ack())

	case FCUnconfirmedUserData:
		if s.onUserData != nil {
			s.onUserData(f.UserData)
		}
		return nil

	case FCRequestLinkStatus:
		return s.cacheReply(EncodeFixed(NewSecondaryControl(FCRespStatusOfLink, s.hasClass1(), s.busy), s.addr, s.params.LinkAddrSize))

	case FCRequestUserData1:
		return s.cacheReply(s.respondClass(true))

	case FCRequestUserData2:
		return s.cacheReply(s.respondClass(false))

	default:
		s.log.Warnf("unknown function code %d from %d", fc, f.Addr)
		s.setState(SecondaryError)
		return EncodeFixed(NewSecondaryControl(FCRespLinkServiceNotImplemented, false, s.busy), s.addr, s.params.LinkAddrSize)
	}
}

// cacheReply stores reply as the one-entry retransmission cache before
// handing it to the transport.
func (s *Secondary) cacheReply(reply []byte) []byte {
	s.lastSent = reply
	return reply
}

// ack builds the positive acknowledgement: the single character 0xE5
// when configured and no status bit needs to ride along, a full fixed
// frame otherwise.
func (s *Secondary) ack() []byte {
	acd := s.hasClass1()
	if s.params.UseSingleCharAck && !acd && !s.busy {
		return []byte{SingleCharAck}
	}
	return EncodeFixed(NewSecondaryControl(FCAck, acd, s.busy), s.addr, s.params.LinkAddrSize)
}

func (s *Secondary) hasClass1() bool {
	if s.data == nil {
		return false
	}
	return s.data.HasClass1()
}

func (s *Secondary) respondClass(class1 bool) []byte {
	var ud []byte
	if s.data != nil {
		if class1 {
			ud, _ = s.data.PopClass1()
		} else {
			ud, _ = s.data.PopClass2()
		}
	}
	// ACD always reflects waiting class 1 data, regardless of which
	// class was polled.
	acd := s.hasClass1()
	if ud == nil {
		if s.params.UseSingleCharAck && !acd && !s.busy {
			return []byte{SingleCharAck}
		}
		return EncodeFixed(NewSecondaryControl(FCRespNackNoData, acd, s.busy), s.addr, s.params.LinkAddrSize)
	}
	return EncodeVariable(NewSecondaryControl(FCRespUserData, acd, s.busy), s.addr, s.params.LinkAddrSize, ud)
}
