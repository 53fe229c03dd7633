package cs104

import "errors"

// Errors returned by the APCI codec and the connection state machine.
// Sequence and timeout errors are terminal for the connection; the
// background loop closes the socket and raises EventClosed when it
// sees one.
var (
	ErrAPDUTooLarge = errors.New("cs104: ASDU does not fit one APDU")
	ErrAPDUTooShort = errors.New("cs104: APDU shorter than the APCI header")
	ErrStartByte    = errors.New("cs104: unexpected start byte")

	// ErrSeqNumber covers both failure modes of spec 60870-5-104
	// sequence validation: an I-frame whose N(S) is not the expected
	// receive count, and an N(R) outside the outstanding send window.
	ErrSeqNumber = errors.New("cs104: sequence number out of range")

	// ErrIdleTimeout is raised when three TESTFR_ACT keepalives in a
	// row go unanswered (t3 regime).
	ErrIdleTimeout = errors.New("cs104: idle timeout, TESTFR unanswered")

	// ErrConfirmTimeout is raised when the peer fails to confirm an
	// I-frame or a U-frame activation within t1.
	ErrConfirmTimeout = errors.New("cs104: confirmation timeout (t1)")

	ErrBufferFull   = errors.New("cs104: send buffer full (k outstanding I-frames)")
	ErrNotActive    = errors.New("cs104: data transfer not started (no STARTDT)")
	ErrConnClosed   = errors.New("cs104: connection closed")
	ErrUseConnected = errors.New("cs104: client already connected")
)
