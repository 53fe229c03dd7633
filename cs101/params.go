package cs101

import "time"

// LinkAddrSize is the width, in bytes, of the link-layer address field
// carried by every frame. The standard allows 0 (point to point, no
// address field at all), 1 or 2.
type LinkAddrSize int

const (
	LinkAddrSizeNone LinkAddrSize = 0
	LinkAddrSizeOne  LinkAddrSize = 1
	LinkAddrSizeTwo  LinkAddrSize = 2
)

// BroadcastAddr is the link address reserved for broadcast requests;
// its value depends on LinkAddrSize and it is only legal paired with
// FC 4 (user data, no reply expected).
func BroadcastAddr(size LinkAddrSize) uint16 {
	switch size {
	case LinkAddrSizeOne:
		return 255
	case LinkAddrSizeTwo:
		return 65535
	default:
		return 0
	}
}

// Params collects the link-layer parameters negotiated out of band for
// one serial line: the address field width, whether stations use the
// balanced or unbalanced transmission procedure, and the timing
// envelope driving the state machines in secondary.go and primary.go.
type Params struct {
	LinkAddrSize LinkAddrSize
	Balanced     bool

	// TimeoutAck bounds how long a primary station waits for a
	// secondary's single-char ACK/NACK or response frame before it
	// counts the exchange as failed (t_a in the standard's timing
	// diagrams).
	TimeoutAck time.Duration

	// RepeatCount is how many times a primary retries a failed send
	// before declaring the link down.
	RepeatCount int

	// IdleTimeout is how long a secondary in unbalanced mode waits
	// between polls before it drops from AVAILABLE back to IDLE and
	// forgets its FCB expectation, so a fresh link reset is needed.
	IdleTimeout time.Duration

	// UseSingleCharAck lets a secondary answer with the single byte
	// 0xE5 instead of a full fixed frame wherever the reply would be
	// a plain ACK or a no-data response with ACD and DFC both clear.
	UseSingleCharAck bool
}

// DefaultParams returns the commonly used unbalanced 1-byte-address
// parameter set: 200 ms ACK timeout, 3 retries, 500 ms idle timeout.
func DefaultParams() *Params {
	return &Params{
		LinkAddrSize: LinkAddrSizeOne,
		Balanced:     false,
		TimeoutAck:   200 * time.Millisecond,
		RepeatCount:  3,
		IdleTimeout:  500 * time.Millisecond,
	}
}
