package asdu

// Element gives random access to the i'th information object's address
// and raw element payload (the bytes after the address) without walking
// every Get* decode in between - the behaviour companion standard 101
// allows because every element of one ASDU shares a single TypeID and
// therefore a single fixed size. It is the generic counterpart to the
// typed Get* accessors, useful for logging, forwarding or dispatch code
// that only needs to look a message over without fully decoding it.
//
// When Identifier.Variable.IsSequence is set, only the first element
// carries its address on the wire; Element reconstructs the i'th
// implicit address as baseIOA+i, where baseIOA is the one address
// actually encoded.
func (a *ASDU) Element(i int) (addr IOA, payload []byte, ok bool) {
	if i < 0 || i >= int(a.Variable.Number) {
		return 0, nil, false
	}
	size, known := InfoObjSize(a.Type)
	if !known {
		return 0, nil, false
	}
	addrSize := a.InfoObjAddrSize
	if a.Variable.IsSequence {
		base, baseOK := decodeAddrAt(a.infoObj, 0, addrSize)
		if !baseOK {
			return 0, nil, false
		}
		off := addrSize + i*size
		if off+size > len(a.infoObj) {
			return 0, nil, false
		}
		return base + IOA(i), a.infoObj[off : off+size], true
	}

	step := addrSize + size
	off := i * step
	if off+step > len(a.infoObj) {
		return 0, nil, false
	}
	elemAddr, addrOK := decodeAddrAt(a.infoObj, off, addrSize)
	if !addrOK {
		return 0, nil, false
	}
	return elemAddr, a.infoObj[off+addrSize : off+step], true
}

// NumElements returns the number of information objects/elements the
// ASDU's VSQ declares.
func (a *ASDU) NumElements() int {
	return int(a.Variable.Number)
}

func decodeAddrAt(buf []byte, off, size int) (IOA, bool) {
	if off+size > len(buf) {
		return 0, false
	}
	switch size {
	case 1:
		return IOA(buf[off]), true
	case 2:
		return IOA(buf[off]) | IOA(buf[off+1])<<8, true
	case 3:
		return IOA(buf[off]) | IOA(buf[off+1])<<8 | IOA(buf[off+2])<<16, true
	default:
		return 0, false
	}
}
