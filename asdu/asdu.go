package asdu

import (
	"encoding/binary"
	"fmt"
)

/*
ASDU (Application Service Data Unit) is the payload the application layer
carries inside every CS101/CS104 information transfer frame.

It has two parts:
  - the data unit identifier, a fixed header of 6 to 8 bytes depending on
    Params, giving the type of the contained information objects, how many
    there are, why the ASDU was sent and which station/object it concerns;
  - zero or more information objects, each one an [information object
    address][element payload] pair, or, when Identifier.Variable.IsSequence
    is set, a single address followed by a run of elements implicitly
    addressed IOA, IOA+1, IOA+2, ...

  | <-                 identifier (6..8 bytes)               -> |
  | Type identification                                 [1B]    |
  | SQ(1b) | Number of objects/elements (1..127)         [7b]   |
  | Test(1b) | P/N(1b) | Cause of transmission            [6b]  |
  | Originator address (present iff Params.CauseSize == 2) [1B] |
  | Common address of ASDU                          [1 or 2 B]  |
  | <-               information objects (variable)          -> |
*/
type ASDU struct {
	*Params
	Identifier
	infoObj []byte
}

// Identifier is the data unit identifier shared by every information
// object an ASDU carries.
type Identifier struct {
	Type       TypeID
	Variable   vsq
	Cause      CauseOfTransmission
	OrigAddr   OriginAddr
	CommonAddr CommonAddr
}

// Connect is the minimal surface a codec needs from a live session: its
// negotiated Params, and a way to hand a built ASDU to the transport.
// cs104.Client, cs104.ServerSession and cs101's link-layer session
// adapters all satisfy it, so the builder functions in this package work
// unchanged over either transport.
type Connect interface {
	Params() *Params
	Send(u *ASDU) error
}

// NewASDU starts a new outgoing ASDU against p, with no information
// objects yet.
func NewASDU(p *Params, id Identifier) *ASDU {
	return &ASDU{Params: p, Identifier: id}
}

// checkValid verifies infosLen information objects of typeID fit both the
// 127-element VSQ ceiling and Params.MaxAsduSize before any byte is
// appended; every builder function in this package runs it first so a
// caller gets a clean error instead of a truncated wire frame.
func checkValid(c Connect, typeID TypeID, isSequence bool, infosLen int) error {
	if infosLen == 0 {
		return ErrTooManyObjects
	}
	if infosLen > 127 {
		return ErrTooManyObjects
	}
	objSize, ok := InfoObjSize(typeID)
	if !ok {
		return ErrTypeIdentifierUnknown
	}
	p := c.Params()
	if err := p.Valid(); err != nil {
		return err
	}

	var bodyLen int
	if isSequence {
		bodyLen = p.InfoObjAddrSize + infosLen*objSize
	} else {
		bodyLen = infosLen * (p.InfoObjAddrSize + objSize)
	}
	if p.identifierSize()+bodyLen > p.MaxAsduSize {
		return ErrTooManyObjects
	}
	return nil
}

// SetVariableNumber records the element/object count and sequence flag
// for the ASDU under construction.
func (a *ASDU) SetVariableNumber(n int) error {
	if n < 1 || n > 127 {
		return ErrTooManyObjects
	}
	a.Variable.Number = uint8(n)
	return nil
}

// AppendBytes appends raw bytes to the information-object body. Builder
// functions use it for payloads with no dedicated Append helper.
func (a *ASDU) AppendBytes(b ...byte) *ASDU {
	a.infoObj = append(a.infoObj, b...)
	return a
}

// DecodeByte consumes one byte from the head of the information-object
// body.
func (a *ASDU) DecodeByte() byte {
	v := a.infoObj[0]
	a.infoObj = a.infoObj[1:]
	return v
}

// AppendInfoObjAddr appends an information object address, encoded
// little-endian at the width fixed by Params.InfoObjAddrSize.
func (a *ASDU) AppendInfoObjAddr(addr IOA) error {
	switch a.InfoObjAddrSize {
	case 1:
		if addr > 0xff {
			return ErrInfoObjAddrFit
		}
		a.infoObj = append(a.infoObj, byte(addr))
	case 2:
		if addr > 0xffff {
			return ErrInfoObjAddrFit
		}
		a.infoObj = append(a.infoObj, byte(addr), byte(addr>>8))
	case 3:
		if addr > 0xffffff {
			return ErrInfoObjAddrFit
		}
		a.infoObj = append(a.infoObj, byte(addr), byte(addr>>8), byte(addr>>16))
	default:
		return ErrParam
	}
	return nil
}

// DecodeInfoObjAddr consumes an information object address at the width
// fixed by Params.InfoObjAddrSize.
func (a *ASDU) DecodeInfoObjAddr() IOA {
	var ioa IOA
	switch a.InfoObjAddrSize {
	case 1:
		ioa = IOA(a.infoObj[0])
		a.infoObj = a.infoObj[1:]
	case 2:
		ioa = IOA(a.infoObj[0]) | IOA(a.infoObj[1])<<8
		a.infoObj = a.infoObj[2:]
	case 3:
		ioa = IOA(a.infoObj[0]) | IOA(a.infoObj[1])<<8 | IOA(a.infoObj[2])<<16
		a.infoObj = a.infoObj[3:]
	default:
		panic(ErrParam)
	}
	return ioa
}

// MarshalBinary lays out the full ASDU: identifier header followed by the
// accumulated information-object body.
func (a *ASDU) MarshalBinary() ([]byte, error) {
	if err := a.Params.Valid(); err != nil {
		return nil, err
	}
	out := make([]byte, 0, a.identifierSize()+len(a.infoObj))
	out = append(out, byte(a.Type), a.Variable.value(), a.Cause.value())
	if a.CauseSize == 2 {
		out = append(out, byte(a.OrigAddr))
	} else if a.OrigAddr != 0 {
		return nil, ErrOriginAddrFit
	}
	switch a.CommonAddrSize {
	case 1:
		if a.CommonAddr > 0xff && a.CommonAddr != GlobalCommonAddr {
			return nil, ErrCommonAddrFit
		}
		out = append(out, byte(a.CommonAddr))
	case 2:
		out = append(out, byte(a.CommonAddr), byte(a.CommonAddr>>8))
	default:
		return nil, ErrParam
	}
	out = append(out, a.infoObj...)
	if len(out) > a.MaxAsduSize {
		return nil, ErrTooManyObjects
	}
	return out, nil
}

// ParseASDU decodes raw into a new ASDU against p. The returned ASDU's
// information-object body is left positioned at its first byte for the
// Get* accessors of the matching TypeID to consume.
func ParseASDU(p *Params, raw []byte) (*ASDU, error) {
	if err := p.Valid(); err != nil {
		return nil, err
	}
	if len(raw) < p.identifierSize() {
		return nil, fmt.Errorf("asdu: short header: % x", raw)
	}
	a := &ASDU{Params: p}
	a.Type = TypeID(raw[0])
	a.Variable = parseVSQ(raw[1])
	a.Cause = parseCauseOfTransmission(raw[2])
	i := 3
	if p.CauseSize == 2 {
		a.OrigAddr = OriginAddr(raw[i])
		i++
	}
	switch p.CommonAddrSize {
	case 1:
		a.CommonAddr = CommonAddr(raw[i])
		i++
	case 2:
		a.CommonAddr = CommonAddr(binary.LittleEndian.Uint16(raw[i : i+2]))
		i += 2
	}
	a.infoObj = raw[i:]
	return a, nil
}

// SendReplyMirror answers an incoming ASDU with a copy of it whose
// cause of transmission is replaced - the shape every activation
// confirmation and activation termination takes. Call it before
// decoding the incoming ASDU: the Get* accessors consume the body the
// copy is taken from.
func (a *ASDU) SendReplyMirror(c Connect, cause COT) error {
	r := NewASDU(a.Params, a.Identifier)
	r.Cause.Cause = cause
	r.infoObj = append(r.infoObj, a.infoObj...)
	return c.Send(r)
}

func (a *ASDU) String() string {
	return fmt.Sprintf("ASDU<%s cot=%d ca=%d n=%d sq=%v>",
		a.Type, a.Cause.Cause, a.CommonAddr, a.Variable.Number, a.Variable.IsSequence)
}
