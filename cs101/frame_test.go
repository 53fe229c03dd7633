package cs101

import (
	"bytes"
	"testing"
)

func TestEncodeVariableScenario(t *testing.T) {
	// User data [01 02 03], addr 1 (1 byte), PRM=1 FC=3 FCV=1 FCB=1:
	// 68 05 05 68 73 01 01 02 03 7A 16 with checksum
	// (73+01+01+02+03) mod 256 = 7A.
	c := NewPrimaryControl(FCUserData, true, true)
	if byte(c) != 0x73 {
		t.Fatalf("control = %#02x, want 0x73", byte(c))
	}
	got := EncodeVariable(c, 1, LinkAddrSizeOne, []byte{0x01, 0x02, 0x03})
	want := []byte{0x68, 0x05, 0x05, 0x68, 0x73, 0x01, 0x01, 0x02, 0x03, 0x7a, 0x16}
	if !bytes.Equal(got, want) {
		t.Fatalf("frame = % x, want % x", got, want)
	}
}

func TestVariableFrameInvariants(t *testing.T) {
	// Every constructed variable frame repeats its length byte and
	// carries the 8-bit sum of the C..UD span as checksum.
	payloads := [][]byte{
		nil,
		{0x00},
		{0xff, 0xff, 0xff},
		{0x12, 0x34, 0x56, 0x78, 0x9a},
	}
	for _, ud := range payloads {
		for _, addrSize := range []LinkAddrSize{LinkAddrSizeNone, LinkAddrSizeOne, LinkAddrSizeTwo} {
			f := EncodeVariable(NewPrimaryControl(FCUserData, false, true), 0x1234, addrSize, ud)
			if f[1] != f[2] {
				t.Fatalf("length bytes disagree: % x", f)
			}
			l := int(f[1])
			var sum byte
			for _, b := range f[4 : 4+l] {
				sum += b
			}
			if f[4+l] != sum {
				t.Fatalf("checksum = %#02x, want %#02x in % x", f[4+l], sum, f)
			}
			if f[len(f)-1] != 0x16 {
				t.Fatalf("missing end byte: % x", f)
			}
		}
	}
}

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		frame    []byte
		addrSize LinkAddrSize
	}{
		{"fixed one byte addr", EncodeFixed(NewPrimaryControl(FCRequestLinkStatus, false, false), 5, LinkAddrSizeOne), LinkAddrSizeOne},
		{"fixed two byte addr", EncodeFixed(NewSecondaryControl(FCAck, true, false), 0x1234, LinkAddrSizeTwo), LinkAddrSizeTwo},
		{"variable", EncodeVariable(NewPrimaryControl(FCUserData, true, true), 9, LinkAddrSizeOne, []byte{1, 2, 3}), LinkAddrSizeOne},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, n, err := ParseFrame(tt.frame, tt.addrSize)
			if err != nil {
				t.Fatalf("ParseFrame: %v", err)
			}
			if n != len(tt.frame) {
				t.Errorf("consumed %d of %d bytes", n, len(tt.frame))
			}
			if byte(f.Control) != tt.frame[1] && tt.frame[0] == startFixed {
				t.Errorf("control mismatch")
			}
		})
	}
}

func TestParseFrameSingleCharAck(t *testing.T) {
	f, n, err := ParseFrame([]byte{SingleCharAck}, LinkAddrSizeOne)
	if err != nil || n != 1 {
		t.Fatalf("ParseFrame(E5) = %v, n=%d", err, n)
	}
	if f.Control.FunctionCode() != FCAck {
		t.Errorf("fc = %d, want ACK", f.Control.FunctionCode())
	}
}

func TestParseFrameErrors(t *testing.T) {
	good := EncodeVariable(NewPrimaryControl(FCUserData, false, true), 1, LinkAddrSizeOne, []byte{1})

	corruptChecksum := append([]byte(nil), good...)
	corruptChecksum[len(corruptChecksum)-2]++
	lengthMismatch := append([]byte(nil), good...)
	lengthMismatch[2]++

	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{"empty", nil, ErrFrameTooShort},
		{"bad start", []byte{0x99, 0x00}, ErrUnexpectedStartByte},
		{"truncated fixed", []byte{0x10, 0x49}, ErrFrameTooShort},
		{"bad checksum", corruptChecksum, ErrBadChecksum},
		{"length mismatch", lengthMismatch, ErrLengthMismatch},
		{"truncated variable", good[:len(good)-3], ErrFrameTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseFrame(tt.in, LinkAddrSizeOne)
			if err != tt.want {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	t.Run("fixed bad checksum", func(t *testing.T) {
		f := EncodeFixed(NewPrimaryControl(FCResetRemoteLink, false, false), 3, LinkAddrSizeOne)
		f[len(f)-2] ^= 0xff
		if _, _, err := ParseFrame(f, LinkAddrSizeOne); err != ErrBadChecksum {
			t.Errorf("err = %v, want ErrBadChecksum", err)
		}
	})
}

func TestBroadcastAddr(t *testing.T) {
	if got := BroadcastAddr(LinkAddrSizeOne); got != 255 {
		t.Errorf("one-byte broadcast = %d, want 255", got)
	}
	if got := BroadcastAddr(LinkAddrSizeTwo); got != 65535 {
		t.Errorf("two-byte broadcast = %d, want 65535", got)
	}
}
