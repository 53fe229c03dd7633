package cs101

// Serial station run loops. A CS101 line is driven single-threaded:
// the owner repeatedly calls Run, which reads at most one FT 1.2 frame
// from the transceiver, routes it into the right state machine and
// performs timeout housekeeping. No blocking I/O happens outside the
// transceiver's ReadNextMessage.

import (
	"github.com/tjeske/go-iec60870/internal/clog"
	"github.com/tjeske/go-iec60870/transport"
)

// SlaveStation is one unbalanced secondary endpoint on a serial line:
// framing, address filtering (own address plus broadcast) and the
// Secondary state machine behind a Run loop.
type SlaveStation struct {
	trx    transport.SerialTransceiver
	clock  transport.Clock
	params *Params
	sec    *Secondary
	log    clog.Log
}

// NewSlaveStation wires a Secondary to its serial transceiver.
func NewSlaveStation(params *Params, addr uint16, trx transport.SerialTransceiver, clock transport.Clock,
	data ClassData, onUserData UserDataHandler, onStateChange StateChangedHandler) *SlaveStation {

	return &SlaveStation{
		trx:    trx,
		clock:  clock,
		params: params,
		sec:    NewSecondary(params, addr, data, onUserData, onStateChange),
		log:    clog.New("cs101.slave", nil),
	}
}

// Secondary exposes the underlying state machine (state queries,
// SetBusy).
func (st *SlaveStation) Secondary() *Secondary { return st.sec }

// Run performs one tick: read at most one frame, handle it, do idle
// housekeeping. Call it in a loop from the owning goroutine.
func (st *SlaveStation) Run() error {
	err := st.trx.ReadNextMessage(func(raw []byte) {
		f, _, perr := ParseFrame(raw, st.params.LinkAddrSize)
		if perr != nil {
			st.log.Warnf("dropping malformed frame: %v", perr)
			return
		}
		st.sec.MarkActivity(st.clock.NowMonotonicMs())

		switch f.Addr {
		case BroadcastAddr(st.params.LinkAddrSize):
			st.sec.HandleBroadcast(f)
		case st.sec.addr:
			if reply := st.sec.HandleFrame(f); reply != nil {
				if serr := st.trx.SendMessage(reply); serr != nil {
					st.log.Errorf("send reply: %v", serr)
				}
			}
		default:
			// Another station's traffic; the shared line makes this
			// routine, not an error.
		}
	})
	st.sec.Tick(st.clock.NowMonotonicMs())
	return err
}

// MasterStation is an unbalanced primary endpoint polling one or more
// slaves over a shared serial line. One Run tick reads at most one
// reply, advances at most one slave's exchange and drives the timeout
// pass, so fairness follows from the round-robin rotation alone.
type MasterStation struct {
	trx    transport.SerialTransceiver
	clock  transport.Clock
	params *Params
	slaves map[uint16]*Primary
	rr     *UnbalancedMaster
	// current is the slave with the outstanding exchange; a
	// single-char 0xE5 acknowledgement carries no address and can only
	// belong to it.
	current *Primary
	log     clog.Log
}

// NewMasterStation prepares an unbalanced master with no slaves; add
// them with AddSlave before calling Run.
func NewMasterStation(params *Params, trx transport.SerialTransceiver, clock transport.Clock) *MasterStation {
	return &MasterStation{
		trx:    trx,
		clock:  clock,
		params: params,
		slaves: make(map[uint16]*Primary),
		rr:     NewUnbalancedMaster(nil),
		log:    clog.New("cs101.master", nil),
	}
}

// AddSlave registers a slave address and returns its Primary session
// for direct use (SendUserData, SendTestFunction).
func (st *MasterStation) AddSlave(addr uint16, onUserData UserDataHandler, onStateChange StateChangedHandler) *Primary {
	p := NewPrimary(st.params, addr, st.trx, st.clock, onUserData, onStateChange)
	st.slaves[addr] = p
	st.rr.sessions = append(st.rr.sessions, p)
	return p
}

// Slave returns the session for addr, or nil.
func (st *MasterStation) Slave(addr uint16) *Primary { return st.slaves[addr] }

// Broadcast sends ud unconfirmed to every station on the line.
func (st *MasterStation) Broadcast(ud []byte) error {
	return SendBroadcast(st.trx, st.params, ud)
}

// Run performs one tick: collect at most one reply frame, rotate the
// poll schedule by one slave, run every session's timeout pass.
func (st *MasterStation) Run() error {
	err := st.trx.ReadNextMessage(func(raw []byte) {
		if len(raw) == 1 && raw[0] == SingleCharAck {
			if st.current != nil {
				st.current.HandleFrame(Frame{Control: Control(FCAck)})
			}
			return
		}
		f, _, perr := ParseFrame(raw, st.params.LinkAddrSize)
		if perr != nil {
			st.log.Warnf("dropping malformed frame: %v", perr)
			return
		}
		if f.Control.IsPrimary() {
			// Our own transmission echoed back on a two-wire line.
			return
		}
		p, ok := st.slaves[f.Addr]
		if !ok {
			st.log.Warnf("reply from unknown slave %d", f.Addr)
			return
		}
		p.HandleFrame(f)
	})
	target, perr := st.rr.PollNext()
	if perr != nil && perr != ErrLinkNotReady {
		st.log.Warnf("poll: %v", perr)
	}
	if target != nil {
		st.current = target
	}
	st.rr.TickAll()
	return err
}

// BalancedEndpoint is one end of a balanced (point to point) CS101
// link: a primary and a secondary state machine sharing the line, with
// incoming frames routed by their PRM bit. Both ends run the same
// code; the DIR bit is neither set on sent frames nor checked on
// received ones.
type BalancedEndpoint struct {
	trx    transport.SerialTransceiver
	clock  transport.Clock
	params *Params
	pri    *Primary
	sec    *Secondary
	log    clog.Log
}

// NewBalancedEndpoint wires the two half-machines of a balanced
// station. addr is the link address both directions carry (often 0 on
// a line with LinkAddrSizeNone).
func NewBalancedEndpoint(params *Params, addr uint16, trx transport.SerialTransceiver, clock transport.Clock,
	data ClassData, onUserData UserDataHandler, onStateChange StateChangedHandler) *BalancedEndpoint {

	return &BalancedEndpoint{
		trx:    trx,
		clock:  clock,
		params: params,
		pri:    NewPrimary(params, addr, trx, clock, onUserData, onStateChange),
		sec:    NewSecondary(params, addr, data, onUserData, onStateChange),
		log:    clog.New("cs101.balanced", nil),
	}
}

// Primary exposes the sending half (Start, SendUserData).
func (b *BalancedEndpoint) Primary() *Primary { return b.pri }

// Secondary exposes the receiving half.
func (b *BalancedEndpoint) Secondary() *Secondary { return b.sec }

// Run performs one tick: read at most one frame, route it by its PRM
// bit to the secondary or the primary, then run the primary's timeout
// pass. The secondary's idle timeout is not driven here.
func (b *BalancedEndpoint) Run() error {
	err := b.trx.ReadNextMessage(func(raw []byte) {
		f, _, perr := ParseFrame(raw, b.params.LinkAddrSize)
		if perr != nil {
			b.log.Warnf("dropping malformed frame: %v", perr)
			return
		}
		b.sec.MarkActivity(b.clock.NowMonotonicMs())
		if f.Control.IsPrimary() {
			if reply := b.sec.HandleFrame(f); reply != nil {
				if serr := b.trx.SendMessage(reply); serr != nil {
					b.log.Errorf("send reply: %v", serr)
				}
			}
		} else {
			b.pri.HandleFrame(f)
		}
	})
	b.pri.Tick()
	return err
}
