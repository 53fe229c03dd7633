package asdu

import (
	"bytes"
	"testing"
)

// sendCapture implements Connect for the builder tests: it remembers
// every ASDU handed to Send so the test can marshal and re-parse it.
type sendCapture struct {
	p   *Params
	out []*ASDU
}

func (c *sendCapture) Params() *Params { return c.p }
func (c *sendCapture) Send(u *ASDU) error {
	c.out = append(c.out, u)
	return nil
}

// roundTrip marshals the most recently captured ASDU and parses it
// back, as a receiver would.
func (c *sendCapture) roundTrip(t *testing.T) *ASDU {
	t.Helper()
	if len(c.out) == 0 {
		t.Fatal("no ASDU was sent")
	}
	raw, err := c.out[len(c.out)-1].MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	u, err := ParseASDU(c.p, raw)
	if err != nil {
		t.Fatalf("ParseASDU: %v", err)
	}
	return u
}

func TestASDUHeaderRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		p    *Params
		id   Identifier
	}{
		{
			"wide104",
			ParamsWide104(),
			Identifier{Type: MSpNa1, Variable: vsq{Number: 1}, Cause: CauseOfTransmission{Cause: CotSpt}, CommonAddr: 0x1234},
		},
		{
			"wide101",
			ParamsWide101(),
			Identifier{Type: MMeNc1, Variable: vsq{Number: 3}, Cause: CauseOfTransmission{Cause: CotPeriodic, IsTest: true}, CommonAddr: 0x42},
		},
		{
			"two byte cause",
			&Params{CauseSize: 2, CommonAddrSize: 2, InfoObjAddrSize: 3, MaxAsduSize: 249},
			Identifier{Type: CIcNa1, Variable: vsq{Number: 1}, Cause: CauseOfTransmission{Cause: CotAct, IsNegative: true}, OrigAddr: 7, CommonAddr: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewASDU(tt.p, tt.id)
			raw, err := u.MarshalBinary()
			if err != nil {
				t.Fatalf("MarshalBinary: %v", err)
			}
			back, err := ParseASDU(tt.p, raw)
			if err != nil {
				t.Fatalf("ParseASDU: %v", err)
			}
			if back.Identifier != tt.id {
				t.Errorf("identifier = %+v, want %+v", back.Identifier, tt.id)
			}
		})
	}
}

func TestASDUSequenceElementAddressing(t *testing.T) {
	// With SQ=1 only the first information object carries an address;
	// Element(i) must reconstruct base+i for every element.
	c := &sendCapture{p: ParamsWide104()}
	infos := make([]MeasuredValueScaledInfo, 9)
	for i := range infos {
		infos[i] = MeasuredValueScaledInfo{Ioa: IOA(4000 + i), Value: int16(i * 100)}
	}
	// only the first IOA is encoded; the rest follow implicitly
	if err := MeasuredValueScaled(c, true, CauseOfTransmission{Cause: CotInrogen}, 1, infos...); err != nil {
		t.Fatalf("MeasuredValueScaled: %v", err)
	}
	u := c.roundTrip(t)

	if !u.Variable.IsSequence || u.NumElements() != len(infos) {
		t.Fatalf("VSQ = %+v, want sequence of %d", u.Variable, len(infos))
	}
	for i := range infos {
		addr, payload, ok := u.Element(i)
		if !ok {
			t.Fatalf("Element(%d) not ok", i)
		}
		if addr != IOA(4000+i) {
			t.Errorf("Element(%d) addr = %d, want %d", i, addr, 4000+i)
		}
		size, _ := InfoObjSize(MMeNb1)
		if len(payload) != size {
			t.Errorf("Element(%d) payload %d bytes, want %d", i, len(payload), size)
		}
	}
	if _, _, ok := u.Element(len(infos)); ok {
		t.Error("Element past the end reported ok")
	}

	got := u.GetMeasuredValueScaled()
	for i, info := range got {
		if info.Ioa != infos[i].Ioa || info.Value != infos[i].Value {
			t.Errorf("element %d = %+v, want %+v", i, info, infos[i])
		}
	}
}

func TestASDUTooManyObjects(t *testing.T) {
	c := &sendCapture{p: ParamsWide104()}
	// 128 objects break the VSQ ceiling before any size math.
	infos := make([]SinglePointInfo, 128)
	if err := Single(c, false, CauseOfTransmission{Cause: CotSpt}, 1, infos...); err != ErrTooManyObjects {
		t.Errorf("err = %v, want ErrTooManyObjects", err)
	}
	// 70 three-byte-addressed single points exceed MaxAsduSize 249.
	infos = make([]SinglePointInfo, 70)
	if err := Single(c, false, CauseOfTransmission{Cause: CotSpt}, 1, infos...); err != ErrTooManyObjects {
		t.Errorf("err = %v, want ErrTooManyObjects", err)
	}
	// The same 70 fit as a sequence (one address + 70 bytes).
	if err := Single(c, true, CauseOfTransmission{Cause: CotSpt}, 1, infos...); err != nil {
		t.Errorf("sequence err = %v, want nil", err)
	}
}

func TestSingleCommandEncoding(t *testing.T) {
	// SingleCommand(ioa=5000, value=true, select=false, qu=0) must
	// produce the information object bytes [IOA..., 0x01].
	c := &sendCapture{p: ParamsWide104()}
	err := SingleCmd(c, CauseOfTransmission{Cause: CotAct}, 1, SingleCommandInfo{Ioa: 5000, Value: true})
	if err != nil {
		t.Fatalf("SingleCmd: %v", err)
	}
	raw, err := c.out[0].MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	want := []byte{
		byte(CScNa1), 0x01, 0x06, // type, VSQ, COT=act
		0x01, 0x00, // CA = 1
		0x88, 0x13, 0x00, // IOA = 5000
		0x01, // SCS=1, QU=0, S/E=execute
	}
	if !bytes.Equal(raw, want) {
		t.Fatalf("encoded = % x, want % x", raw, want)
	}

	u := c.roundTrip(t)
	cmd := u.GetSingleCmd()
	if cmd.Ioa != 5000 || !cmd.Value || cmd.Select || cmd.Qu.Qu != 0 {
		t.Errorf("decoded = %+v, want ioa=5000 value=true select=false qu=0", cmd)
	}
}

func TestCommandCauseChecked(t *testing.T) {
	c := &sendCapture{p: ParamsWide104()}
	err := SingleCmd(c, CauseOfTransmission{Cause: CotSpt}, 1, SingleCommandInfo{Ioa: 1})
	if err != ErrCmdCause {
		t.Errorf("err = %v, want ErrCmdCause", err)
	}
}

func TestInfoObjSizeTable(t *testing.T) {
	// Spot-check the canonical size table against the companion
	// standard's type definitions.
	tests := []struct {
		id   TypeID
		want int
	}{
		{MSpNa1, 1}, {MSpTa1, 4}, {MDpTa1, 4}, {MStTa1, 5},
		{MBoNa1, 5}, {MBoTa1, 8}, {MMeNa1, 3}, {MMeTc1, 8},
		{MItNa1, 5}, {MEpTa1, 6}, {MEpTb1, 7}, {MPsNa1, 5},
		{MMeNd1, 2}, {MSpTb1, 8}, {MBoTb1, 12}, {MMeTd1, 10},
		{MMeTf1, 12}, {MItTb1, 12}, {MEpTd1, 10}, {MEpTe1, 11},
		{CScNa1, 1}, {CSeNa1, 3}, {CSeNc1, 5}, {CBoNa1, 4},
		{CScTa1, 8}, {CSeTc1, 12}, {CBoTa1, 11}, {MEiNa1, 1},
		{CIcNa1, 1}, {CRdNa1, 0}, {CCsNa1, 7}, {CTsNa1, 2},
		{CRpNa1, 1}, {CCdNa1, 2}, {CTsTa1, 9},
		{PMeNa1, 3}, {PMeNc1, 5}, {PAcNa1, 1},
	}
	for _, tt := range tests {
		got, ok := InfoObjSize(tt.id)
		if !ok || got != tt.want {
			t.Errorf("InfoObjSize(%v) = %d,%v, want %d", tt.id, got, ok, tt.want)
		}
	}
	if _, ok := InfoObjSize(TypeID(99)); ok {
		t.Error("InfoObjSize(99) reported a size for an unknown type")
	}
}
