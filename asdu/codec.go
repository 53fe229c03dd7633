package asdu

import (
	"encoding/binary"
	"math"
)

// AppendNormalize appends a 16-bit normalized value, little-endian.
func (a *ASDU) AppendNormalize(v int16) *ASDU {
	a.infoObj = append(a.infoObj, byte(v), byte(v>>8))
	return a
}

// DecodeNormalize consumes a 16-bit normalized value.
func (a *ASDU) DecodeNormalize() int16 {
	v := int16(binary.LittleEndian.Uint16(a.infoObj))
	a.infoObj = a.infoObj[2:]
	return v
}

// AppendScaled appends a 16-bit scaled value, little-endian.
func (a *ASDU) AppendScaled(v int16) *ASDU {
	a.infoObj = append(a.infoObj, byte(v), byte(v>>8))
	return a
}

// DecodeScaled consumes a 16-bit scaled value.
func (a *ASDU) DecodeScaled() int16 {
	v := int16(binary.LittleEndian.Uint16(a.infoObj))
	a.infoObj = a.infoObj[2:]
	return v
}

// AppendFloat32 appends an IEEE 754 short floating point value,
// little-endian.
func (a *ASDU) AppendFloat32(f float32) *ASDU {
	bits := math.Float32bits(f)
	a.infoObj = append(a.infoObj, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	return a
}

// DecodeFloat32 consumes an IEEE 754 short floating point value.
func (a *ASDU) DecodeFloat32() float32 {
	f := math.Float32frombits(binary.LittleEndian.Uint32(a.infoObj))
	a.infoObj = a.infoObj[4:]
	return f
}

// AppendBitsString32 appends a 32-bit bitstring, little-endian.
func (a *ASDU) AppendBitsString32(v uint32) *ASDU {
	a.infoObj = append(a.infoObj, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	return a
}

// DecodeBitsString32 consumes a 32-bit bitstring.
func (a *ASDU) DecodeBitsString32() uint32 {
	v := binary.LittleEndian.Uint32(a.infoObj)
	a.infoObj = a.infoObj[4:]
	return v
}

// AppendBCR appends a five-octet binary counter reading.
func (a *ASDU) AppendBCR(b BinaryCounterReading) *ASDU {
	enc := b.Encode()
	a.infoObj = append(a.infoObj, enc[:]...)
	return a
}

// DecodeBCR consumes a five-octet binary counter reading.
func (a *ASDU) DecodeBCR() BinaryCounterReading {
	b, _ := ParseBinaryCounterReading(a.infoObj)
	a.infoObj = a.infoObj[5:]
	return b
}

// AppendCP16Time2a appends a two-octet elapsed-time field.
func (a *ASDU) AppendCP16Time2a(t CP16Time2a) *ASDU {
	enc := t.Encode()
	a.infoObj = append(a.infoObj, enc[:]...)
	return a
}

// DecodeCP16Time2a consumes a two-octet elapsed-time field.
func (a *ASDU) DecodeCP16Time2a() CP16Time2a {
	t, _ := ParseCP16Time2a(a.infoObj)
	a.infoObj = a.infoObj[2:]
	return t
}

// AppendCP24Time2a appends a three-octet timestamp.
func (a *ASDU) AppendCP24Time2a(t CP24Time2a) *ASDU {
	enc := t.Encode()
	a.infoObj = append(a.infoObj, enc[:]...)
	return a
}

// DecodeCP24Time2a consumes a three-octet timestamp.
func (a *ASDU) DecodeCP24Time2a() CP24Time2a {
	t, _ := ParseCP24Time2a(a.infoObj)
	a.infoObj = a.infoObj[3:]
	return t
}

// AppendCP56Time2a appends a seven-octet timestamp.
func (a *ASDU) AppendCP56Time2a(t CP56Time2a) *ASDU {
	enc := t.Encode()
	a.infoObj = append(a.infoObj, enc[:]...)
	return a
}

// DecodeCP56Time2a consumes a seven-octet timestamp.
func (a *ASDU) DecodeCP56Time2a() CP56Time2a {
	t, _ := ParseCP56Time2a(a.infoObj)
	a.infoObj = a.infoObj[7:]
	return t
}
