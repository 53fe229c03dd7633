package cs104

import "fmt"

// APCI (Application Protocol Control Information) framing, companion
// standard 104 subclause 5. Every APDU opens with the start byte 0x68,
// one length byte counting everything after it, and four control
// bytes. The two low bits of the first control byte select the frame
// format:
//
//	| start 0x68 | length | C1 | C2 | C3 | C4 | ASDU... |
//
//	C1 bit 0 = 0:       I format, numbered information transfer
//	C1 bits 1..0 = 01:  S format, numbered supervisory
//	C1 bits 1..0 = 11:  U format, unnumbered control
//
// I frames carry the 15-bit send and receive sequence numbers shifted
// left one bit, little-endian, in C1..C2 and C3..C4.

const (
	startByte byte = 0x68

	apciCtlSize = 4
	apciSize    = 6
	// APDUSizeMax bounds a full APDU: start + length + control + ASDU.
	APDUSizeMax = 255
	// ASDUSizeMax is the ASDU space left inside a maximum APDU.
	ASDUSizeMax = APDUSizeMax - apciSize

	seqMod = 32768 // sequence numbers are mod 2^15
)

// U-frame function bytes (the full first control byte, format bits
// included).
const (
	uStartDtActive  byte = 0x07
	uStartDtConfirm byte = 0x0b
	uStopDtActive   byte = 0x13
	uStopDtConfirm  byte = 0x23
	uTestFrActive   byte = 0x43
	uTestFrConfirm  byte = 0x83
)

// iAPCI is a parsed I-format control field.
type iAPCI struct {
	sendSN, rcvSN uint16
}

func (f iAPCI) String() string {
	return fmt.Sprintf("I[N(S)=%d N(R)=%d]", f.sendSN, f.rcvSN)
}

// sAPCI is a parsed S-format control field.
type sAPCI struct {
	rcvSN uint16
}

func (f sAPCI) String() string {
	return fmt.Sprintf("S[N(R)=%d]", f.rcvSN)
}

// uAPCI is a parsed U-format control field.
type uAPCI struct {
	function byte
}

func (f uAPCI) String() string {
	var s string
	switch f.function {
	case uStartDtActive:
		s = "STARTDT act"
	case uStartDtConfirm:
		s = "STARTDT con"
	case uStopDtActive:
		s = "STOPDT act"
	case uStopDtConfirm:
		s = "STOPDT con"
	case uTestFrActive:
		s = "TESTFR act"
	case uTestFrConfirm:
		s = "TESTFR con"
	default:
		s = fmt.Sprintf("0x%02x", f.function)
	}
	return fmt.Sprintf("U[%s]", s)
}

// newIFrame lays out an I-format APDU around asdus. Both sequence
// numbers are encoded (seq << 1) little-endian.
func newIFrame(sendSN, rcvSN uint16, asdus []byte) ([]byte, error) {
	if len(asdus) > ASDUSizeMax {
		return nil, ErrAPDUTooLarge
	}
	b := make([]byte, len(asdus)+apciSize)
	b[0] = startByte
	b[1] = byte(len(asdus) + apciCtlSize)
	b[2] = byte(sendSN << 1)
	b[3] = byte(sendSN >> 7)
	b[4] = byte(rcvSN << 1)
	b[5] = byte(rcvSN >> 7)
	copy(b[6:], asdus)
	return b, nil
}

// newSFrame lays out an S-format APDU confirming rcvSN.
func newSFrame(rcvSN uint16) []byte {
	return []byte{startByte, apciCtlSize, 0x01, 0x00, byte(rcvSN << 1), byte(rcvSN >> 7)}
}

// newUFrame lays out a U-format APDU for one of the u* function bytes.
func newUFrame(function byte) []byte {
	return []byte{startByte, apciCtlSize, function, 0x00, 0x00, 0x00}
}

// parseAPCI classifies one whole APDU (start byte and length already
// validated by the reader) and returns the typed control field plus
// the enclosed ASDU bytes (nil for S and U frames).
func parseAPCI(apdu []byte) (interface{}, []byte, error) {
	if len(apdu) < apciSize {
		return nil, nil, ErrAPDUTooShort
	}
	c1, c2, c3, c4 := apdu[2], apdu[3], apdu[4], apdu[5]
	switch {
	case c1&0x01 == 0:
		return iAPCI{
			sendSN: uint16(c1)>>1 | uint16(c2)<<7,
			rcvSN:  uint16(c3)>>1 | uint16(c4)<<7,
		}, apdu[6:], nil
	case c1&0x03 == 0x01:
		return sAPCI{rcvSN: uint16(c3)>>1 | uint16(c4)<<7}, nil, nil
	default: // c1&0x03 == 0x03
		return uAPCI{function: c1}, nil, nil
	}
}
