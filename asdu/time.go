package asdu

import "encoding/binary"

// CP16Time2a is a two-octet binary time: a plain millisecond count, used
// for protection-equipment elapsed-time fields rather than as a clock
// timestamp. See companion standard 101, subclass 7.2.6.20.
type CP16Time2a uint16

// Encode serializes the elapsed-time count little-endian.
func (t CP16Time2a) Encode() [2]byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(t))
	return b
}

// ParseCP16Time2a reads a 2-byte elapsed-time field.
func ParseCP16Time2a(b []byte) (CP16Time2a, bool) {
	if len(b) < 2 {
		return 0, false
	}
	return CP16Time2a(binary.LittleEndian.Uint16(b)), true
}

// CP24Time2a is a three-octet binary time: milliseconds within the
// current minute, plus the minute itself and two flag bits. See
// companion standard 101, subclass 7.2.6.19.
type CP24Time2a struct {
	Millisecond int // 0..59999
	Minute      int // 0..59
	Invalid     bool
	Substituted bool
}

// Encode lays out {ms_lo, ms_hi, minute|IV|SB}.
func (t CP24Time2a) Encode() [3]byte {
	var b [3]byte
	binary.LittleEndian.PutUint16(b[0:2], uint16(t.Millisecond))
	b[2] = byte(t.Minute) & 0x3f
	if t.Substituted {
		b[2] |= 0x40
	}
	if t.Invalid {
		b[2] |= 0x80
	}
	return b
}

// ParseCP24Time2a reads a 3-byte CP24Time2a field.
func ParseCP24Time2a(b []byte) (CP24Time2a, bool) {
	if len(b) < 3 {
		return CP24Time2a{}, false
	}
	return CP24Time2a{
		Millisecond: int(binary.LittleEndian.Uint16(b[0:2])),
		Minute:      int(b[2] & 0x3f),
		Substituted: b[2]&0x40 != 0,
		Invalid:     b[2]&0x80 != 0,
	}, true
}

// CP32Time2a extends CP24Time2a with the hour and a summer-time flag.
// See companion standard 101, subclass 7.2.6.21 (used by CS101 link-layer
// acquisition delay and by file-transfer time fields).
type CP32Time2a struct {
	CP24Time2a
	Hour       int // 0..23
	SummerTime bool
}

// Encode lays out CP24 followed by {hour(5 bits)|SU(bit 7)}.
func (t CP32Time2a) Encode() [4]byte {
	var b [4]byte
	cp24 := t.CP24Time2a.Encode()
	copy(b[0:3], cp24[:])
	b[3] = byte(t.Hour) & 0x1f
	if t.SummerTime {
		b[3] |= 0x80
	}
	return b
}

// ParseCP32Time2a reads a 4-byte CP32Time2a field.
func ParseCP32Time2a(b []byte) (CP32Time2a, bool) {
	if len(b) < 4 {
		return CP32Time2a{}, false
	}
	cp24, _ := ParseCP24Time2a(b[0:3])
	return CP32Time2a{
		CP24Time2a: cp24,
		Hour:       int(b[3] & 0x1f),
		SummerTime: b[3]&0x80 != 0,
	}, true
}

// CP56Time2a is the full seven-octet timestamp: CP32Time2a plus
// day-of-month, day-of-week, month and a two-digit year. It is
// recommended that all time tags carried in CP56Time2a use UTC. See
// companion standard 101, subclass 7.2.6.18.
type CP56Time2a struct {
	CP32Time2a
	DayOfMonth int // 1..31
	DayOfWeek  int // 0 (not present) .. 7
	Month      int // 1..12
	Year       int // 0..127 (7 bits), interpreted as 2000+Year
}

// Encode lays out CP32 followed by
// {dayOfMonth(5 bits)|dayOfWeek(3 bits), month(4 bits), year(7 bits)}.
func (t CP56Time2a) Encode() [7]byte {
	var b [7]byte
	cp32 := t.CP32Time2a.Encode()
	copy(b[0:4], cp32[:])
	b[4] = byte(t.DayOfMonth)&0x1f | byte(t.DayOfWeek)<<5
	b[5] = byte(t.Month) & 0x0f
	b[6] = byte(t.Year) & 0x7f
	return b
}

// ParseCP56Time2a reads a 7-byte CP56Time2a field.
func ParseCP56Time2a(b []byte) (CP56Time2a, bool) {
	if len(b) < 7 {
		return CP56Time2a{}, false
	}
	cp32, _ := ParseCP32Time2a(b[0:4])
	return CP56Time2a{
		CP32Time2a: cp32,
		DayOfMonth: int(b[4] & 0x1f),
		DayOfWeek:  int(b[4] >> 5),
		Month:      int(b[5] & 0x0f),
		Year:       int(b[6] & 0x7f),
	}, true
}

// civil-calendar <-> day-count conversion, after Howard Hinnant's public
// domain "days_from_civil"/"civil_from_days" algorithms. These replace a
// libc gmtime/timegm call with pure integer arithmetic so that CP56<->ms
// conversion never depends on the host's timezone database and stays
// correct for every Gregorian date the encoding can represent (the
// 7-bit year read as 2000+Year restricts CP56 to 2000..2127, but the
// arithmetic itself holds far outside that band).
func daysFromCivil(y int64, m, d int) int64 {
	y -= b2i64(m <= 2)
	era := y
	if y < 0 {
		era = y - 399
	}
	era /= 400
	yoe := y - era*400                                   // [0, 399]
	mp := (m + 9) % 12                                   // Mar=0 .. Jan=10, Feb=11
	doy := int64((153*mp+2)/5 + d - 1)                    // [0, 365]
	doe := yoe*365 + yoe/4 - yoe/100 + doy                // [0, 146096]
	return era*146097 + doe - 719468
}

func civilFromDays(z int64) (y int64, m, d int) {
	z += 719468
	era := z
	if z < 0 {
		era = z - 146096
	}
	era /= 146097
	doe := z - era*146097                                           // [0, 146096]
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365          // [0, 399]
	y = yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)                        // [0, 365]
	mp := (5*doy + 2) / 153                                         // [0, 11]
	d = int(doy-(153*mp+2)/5) + 1                                   // [1, 31]
	if mp < 10 {
		m = int(mp) + 3
	} else {
		m = int(mp) - 9
	}
	if m <= 2 {
		y++
	}
	return y, m, d
}

func b2i64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// NewCP56Time2a converts a Unix millisecond timestamp (UTC) into a
// CP56Time2a. Day-of-week is left at 0 (not present), matching common
// practice (lib60870 does the same).
func NewCP56Time2a(unixMs int64) CP56Time2a {
	days := unixMs / 86400000
	rem := unixMs % 86400000
	if rem < 0 {
		rem += 86400000
		days--
	}
	y, m, d := civilFromDays(days)
	hour := int(rem / 3600000)
	rem %= 3600000
	minute := int(rem / 60000)
	rem %= 60000
	ms := int(rem)

	return CP56Time2a{
		CP32Time2a: CP32Time2a{
			CP24Time2a: CP24Time2a{Millisecond: ms, Minute: minute},
			Hour:       hour,
		},
		DayOfMonth: d,
		Month:      m,
		Year:       int(y-2000) & 0x7f,
	}
}

// UnixMilli converts a CP56Time2a back to a Unix millisecond timestamp
// (UTC), the inverse of NewCP56Time2a. The 7-bit year is interpreted as
// 2000+Year, so timestamps from 2000-01-01 through the end of 2127
// round-trip exactly. Timestamps before 2000 do not: NewCP56Time2a stores
// their year as (year-2000)&0x7f, which UnixMilli reads back as a year in
// 2098..2127.
func (t CP56Time2a) UnixMilli() int64 {
	year := int64(2000 + t.Year)
	days := daysFromCivil(year, t.Month, t.DayOfMonth)
	secOfDay := int64(t.Hour)*3600 + int64(t.Minute)*60 + int64(t.Millisecond/1000)
	return (days*86400+secOfDay)*1000 + int64(t.Millisecond%1000)
}

// BinaryCounterReading (BCR) is the five-octet payload of integrated
// totals: a signed 32-bit counter, a 5-bit sequence number and three
// flag bits. See companion standard 101, subclass 7.2.6.9.
type BinaryCounterReading struct {
	Counter        int32
	SequenceNumber byte // 0..31
	HasCarry       bool // CY
	IsAdjusted     bool // CA
	Invalid        bool // IV
}

// Encode lays out {counter(4, LE, signed)} followed by
// {seq(5 bits)|CY(0x20)|CA(0x40)|IV(0x80)}.
func (b BinaryCounterReading) Encode() [5]byte {
	var out [5]byte
	binary.LittleEndian.PutUint32(out[0:4], uint32(b.Counter))
	out[4] = b.SequenceNumber & 0x1f
	if b.HasCarry {
		out[4] |= 0x20
	}
	if b.IsAdjusted {
		out[4] |= 0x40
	}
	if b.Invalid {
		out[4] |= 0x80
	}
	return out
}

// ParseBinaryCounterReading reads a 5-byte BCR field.
func ParseBinaryCounterReading(b []byte) (BinaryCounterReading, bool) {
	if len(b) < 5 {
		return BinaryCounterReading{}, false
	}
	return BinaryCounterReading{
		Counter:        int32(binary.LittleEndian.Uint32(b[0:4])),
		SequenceNumber: b[4] & 0x1f,
		HasCarry:       b[4]&0x20 != 0,
		IsAdjusted:     b[4]&0x40 != 0,
		Invalid:        b[4]&0x80 != 0,
	}, true
}

// NormalizedFromFloat maps a normalized value in [-1, 32767/32768] to its
// signed 16-bit scaled representation, rounding half away from zero and
// clamping to the representable range. See companion standard 101,
// subclass 7.2.6.6.
func NormalizedFromFloat(x float64) int16 {
	v := x * 32768
	if v >= 0 {
		v = float64(int64(v + 0.5))
	} else {
		v = float64(int64(v - 0.5))
	}
	if v > 32767 {
		v = 32767
	} else if v < -32768 {
		v = -32768
	}
	return int16(v)
}

// NormalizedToFloat is the inverse of NormalizedFromFloat.
func NormalizedToFloat(v int16) float64 {
	return float64(v) / 32768
}
