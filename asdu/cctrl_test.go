package asdu

import "testing"

func TestDoubleCmdRoundTrip(t *testing.T) {
	c := &sendCapture{p: ParamsWide104()}
	info := DoubleCommandInfo{
		Ioa:    2000,
		Value:  DPIDeterminedOn,
		Qu:     QualifierOfCommand{Qu: 1},
		Select: true,
	}
	if err := DoubleCmd(c, CauseOfTransmission{Cause: CotAct}, 1, info); err != nil {
		t.Fatalf("DoubleCmd: %v", err)
	}
	got := c.roundTrip(t).GetDoubleCmd()
	if got.Ioa != 2000 || got.Value != DPIDeterminedOn || got.Qu.Qu != 1 || !got.Select {
		t.Errorf("got %+v, want %+v", got, info)
	}
}

func TestStepCmdCP56RoundTrip(t *testing.T) {
	c := &sendCapture{p: ParamsWide104()}
	when := NewCP56Time2a(1700000000000)
	info := StepCommandInfo{Ioa: 2001, Value: DPIDeterminedOff, Time: when}
	if err := StepCmdCP56Time2a(c, CauseOfTransmission{Cause: CotAct}, 1, info); err != nil {
		t.Fatalf("StepCmdCP56Time2a: %v", err)
	}
	got := c.roundTrip(t).GetStepCmd()
	if got.Ioa != 2001 || got.Value != DPIDeterminedOff || got.Time != when {
		t.Errorf("got %+v, want %+v", got, info)
	}
}

func TestSetpointRoundTrips(t *testing.T) {
	c := &sendCapture{p: ParamsWide104()}

	if err := SetpointNormal(c, CauseOfTransmission{Cause: CotAct}, 1,
		SetpointCommandNormalInfo{Ioa: 3000, Value: -16384, Qos: QualifierOfSetpoint{Ql: 3}}); err != nil {
		t.Fatalf("SetpointNormal: %v", err)
	}
	normal := c.roundTrip(t).GetSetpointNormal()
	if normal.Ioa != 3000 || normal.Value != -16384 || normal.Qos.Ql != 3 {
		t.Errorf("normal = %+v", normal)
	}

	if err := SetpointScaled(c, CauseOfTransmission{Cause: CotAct}, 1,
		SetpointCommandScaledInfo{Ioa: 3001, Value: 31000}); err != nil {
		t.Fatalf("SetpointScaled: %v", err)
	}
	scaled := c.roundTrip(t).GetSetpointScaled()
	if scaled.Ioa != 3001 || scaled.Value != 31000 {
		t.Errorf("scaled = %+v", scaled)
	}

	if err := SetpointFloat(c, CauseOfTransmission{Cause: CotAct}, 1,
		SetpointCommandFloatInfo{Ioa: 3002, Value: 50.25, Qos: QualifierOfSetpoint{InSelect: true}}); err != nil {
		t.Fatalf("SetpointFloat: %v", err)
	}
	fl := c.roundTrip(t).GetSetpointFloat()
	if fl.Ioa != 3002 || fl.Value != 50.25 || !fl.Qos.InSelect {
		t.Errorf("float = %+v", fl)
	}
}

func TestBitString32CmdRoundTrip(t *testing.T) {
	c := &sendCapture{p: ParamsWide104()}
	if err := BitString32Cmd(c, CauseOfTransmission{Cause: CotAct}, 1,
		BitString32CommandInfo{Ioa: 4000, Value: 0x01020304}); err != nil {
		t.Fatalf("BitString32Cmd: %v", err)
	}
	got := c.roundTrip(t).GetBitString32Cmd()
	if got.Ioa != 4000 || got.Value != 0x01020304 {
		t.Errorf("got %+v", got)
	}
}

func TestInterrogationCmdRoundTrip(t *testing.T) {
	c := &sendCapture{p: ParamsWide104()}
	if err := InterrogationCmd(c, CauseOfTransmission{Cause: CotAct}, 1, QOIStation); err != nil {
		t.Fatalf("InterrogationCmd: %v", err)
	}
	u := c.roundTrip(t)
	if u.Type != CIcNa1 {
		t.Fatalf("type = %v", u.Type)
	}
	if qoi := u.GetInterrogationCmd(); qoi != QOIStation {
		t.Errorf("qoi = %d, want %d", qoi, QOIStation)
	}
}

func TestCounterInterrogationCmdRoundTrip(t *testing.T) {
	c := &sendCapture{p: ParamsWide104()}
	qcc := QualifierOfCounterInterrogation{Request: 2, Freeze: 1}
	if err := CounterInterrogationCmd(c, CauseOfTransmission{Cause: CotAct}, 1, qcc); err != nil {
		t.Fatalf("CounterInterrogationCmd: %v", err)
	}
	if got := c.roundTrip(t).GetCounterInterrogationCmd(); got != qcc {
		t.Errorf("qcc = %+v, want %+v", got, qcc)
	}
}

func TestClockSyncCmdRoundTrip(t *testing.T) {
	c := &sendCapture{p: ParamsWide104()}
	when := NewCP56Time2a(1700000000000)
	if err := ClockSyncCmd(c, GlobalCommonAddr, when); err != nil {
		t.Fatalf("ClockSyncCmd: %v", err)
	}
	if got := c.roundTrip(t).GetClockSyncCmd(); got != when {
		t.Errorf("time = %+v, want %+v", got, when)
	}
}

func TestDelayAcquisitionCmdRoundTrip(t *testing.T) {
	c := &sendCapture{p: ParamsWide104()}
	if err := DelayAcquisitionCmd(c, CauseOfTransmission{Cause: CotAct}, 1, CP16Time2a(250)); err != nil {
		t.Fatalf("DelayAcquisitionCmd: %v", err)
	}
	if got := c.roundTrip(t).GetDelayAcquisitionCmd(); got != 250 {
		t.Errorf("delay = %d, want 250", got)
	}
}

func TestParameterRoundTrips(t *testing.T) {
	c := &sendCapture{p: ParamsWide104()}

	if err := ParameterNormal(c, 1, ParameterNormalInfo{
		Ioa: 600, Value: 100, Qpm: QualifierOfParameter{Kind: 1, ChangeBit: true},
	}); err != nil {
		t.Fatalf("ParameterNormal: %v", err)
	}
	pn := c.roundTrip(t).GetParameterNormal()
	if pn.Ioa != 600 || pn.Value != 100 || pn.Qpm.Kind != 1 || !pn.Qpm.ChangeBit {
		t.Errorf("normal = %+v", pn)
	}

	if err := ParameterActivation(c, CauseOfTransmission{Cause: CotAct}, 1, 601, 1); err != nil {
		t.Fatalf("ParameterActivation: %v", err)
	}
	ioa, qpa := c.roundTrip(t).GetParameterActivation()
	if ioa != 601 || qpa != 1 {
		t.Errorf("activation = %d %d", ioa, qpa)
	}
}
