package asdu

import "errors"

// Params collects the application-layer sizing parameters that are fixed
// for the lifetime of a session and govern every subsequent byte offset
// in the ASDU and information-object codecs: the width of the cause of
// transmission field, the width of the common address, the width of the
// information object address and the maximum size an encoded ASDU may
// reach. See companion standard 101, subclass 7.1.
type Params struct {
	// CauseSize is the width in bytes of the cause-of-transmission field:
	// 1, or 2 when the originator address is carried alongside it.
	CauseSize int
	// OriginAddr is the originator address carried when CauseSize == 2.
	OriginAddr OriginAddr
	// CommonAddrSize is the width in bytes of the common address: 1 or 2.
	CommonAddrSize int
	// InfoObjAddrSize is the width in bytes of the information object
	// address: 1, 2 or 3.
	InfoObjAddrSize int
	// MaxAsduSize bounds the encoded size of a single ASDU (header plus
	// information objects). 249 for CS104, 254 for CS101.
	MaxAsduSize int
}

// ParamsWide104 is the default parameter set used over CS104: two-byte
// cause of transmission is not used by default (1 byte, no originator),
// two-byte common address, three-byte information object address.
func ParamsWide104() *Params {
	return &Params{
		CauseSize:       1,
		CommonAddrSize:  2,
		InfoObjAddrSize: 3,
		MaxAsduSize:     249,
	}
}

// ParamsWide101 is the default parameter set used over CS101 unbalanced
// links: one-byte cause of transmission, one-byte common address,
// two-byte information object address.
func ParamsWide101() *Params {
	return &Params{
		CauseSize:       1,
		CommonAddrSize:  1,
		InfoObjAddrSize: 2,
		MaxAsduSize:     254,
	}
}

// identifierSize returns the width of the fixed ASDU header: type id (1)
// + VSQ (1) + cause of transmission + common address.
func (p *Params) identifierSize() int {
	return 2 + p.CauseSize + p.CommonAddrSize
}

// Valid checks the parameter set against the ranges fixed by the
// standard; an out-of-range field is always a programmer error, never a
// recoverable wire condition.
func (p *Params) Valid() error {
	if p == nil {
		return errors.New("asdu: nil params")
	}
	if p.CauseSize != 1 && p.CauseSize != 2 {
		return errors.New("asdu: cause of transmission size must be 1 or 2")
	}
	if p.CommonAddrSize != 1 && p.CommonAddrSize != 2 {
		return errors.New("asdu: common address size must be 1 or 2")
	}
	if p.InfoObjAddrSize < 1 || p.InfoObjAddrSize > 3 {
		return errors.New("asdu: information object address size must be 1, 2 or 3")
	}
	if p.MaxAsduSize <= 0 || p.MaxAsduSize > 254 {
		return errors.New("asdu: max asdu size out of range")
	}
	return nil
}
