package cs101

// LinkState is the user-visible condition of one link-layer endpoint,
// reported through a StateChangedHandler whenever it changes. It is a
// deliberately coarser view than the internal state machines: an
// application only needs to know whether it can send, must wait, or
// should intervene.
type LinkState int

const (
	LinkStateIdle LinkState = iota
	LinkStateError
	LinkStateBusy
	LinkStateAvailable
)

func (s LinkState) String() string {
	switch s {
	case LinkStateIdle:
		return "IDLE"
	case LinkStateError:
		return "ERROR"
	case LinkStateBusy:
		return "BUSY"
	case LinkStateAvailable:
		return "AVAILABLE"
	default:
		return "UNKNOWN"
	}
}

// StateChangedHandler reports a link-state transition for the slave at
// addr. A Primary, including the primary half of a balanced endpoint,
// reports the link address it was built with; a Secondary reporting
// its own state passes -1. It runs with
// the reporting endpoint's lock held; do not call back into the
// endpoint from it.
type StateChangedHandler func(addr int, state LinkState)
