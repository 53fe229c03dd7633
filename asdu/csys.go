package asdu

// System-information commands in control direction: the housekeeping
// ASDUs a controlling station uses to drive an outstation's general
// behaviour rather than individual process points - interrogation,
// counter interrogation, read, clock synchronization, test, reset
// process and delay acquisition. Every builder here fixes its own
// information object address to 0 unless the standard says otherwise,
// since these commands address the station, not a point.

// InterrogationCmd issues a general or group interrogation command
// ([C_IC_NA_1]). cot is normally CotAct (to start) or CotDeact (to stop).
func InterrogationCmd(c Connect, cot CauseOfTransmission, ca CommonAddr, qoi QualifierOfInterrogation) error {
	if err := checkCmdCause(cot); err != nil {
		return err
	}
	if err := checkValid(c, CIcNa1, false, 1); err != nil {
		return err
	}
	u := NewASDU(c.Params(), newIdentifier(c, CIcNa1, false, cot, ca))
	if err := u.SetVariableNumber(1); err != nil {
		return err
	}
	if err := u.AppendInfoObjAddr(0); err != nil {
		return err
	}
	u.AppendBytes(byte(qoi))
	return c.Send(u)
}

// GetInterrogationCmd decodes the qualifier of a [C_IC_NA_1] ASDU.
func (a *ASDU) GetInterrogationCmd() QualifierOfInterrogation {
	a.DecodeInfoObjAddr()
	return QualifierOfInterrogation(a.DecodeByte())
}

// CounterInterrogationCmd issues a counter interrogation command
// ([C_CI_NA_1]).
func CounterInterrogationCmd(c Connect, cot CauseOfTransmission, ca CommonAddr, qcc QualifierOfCounterInterrogation) error {
	if err := checkCmdCause(cot); err != nil {
		return err
	}
	if err := checkValid(c, CCiNa1, false, 1); err != nil {
		return err
	}
	u := NewASDU(c.Params(), newIdentifier(c, CCiNa1, false, cot, ca))
	if err := u.SetVariableNumber(1); err != nil {
		return err
	}
	if err := u.AppendInfoObjAddr(0); err != nil {
		return err
	}
	u.AppendBytes(qcc.value())
	return c.Send(u)
}

// GetCounterInterrogationCmd decodes the qualifier of a [C_CI_NA_1]
// ASDU.
func (a *ASDU) GetCounterInterrogationCmd() QualifierOfCounterInterrogation {
	a.DecodeInfoObjAddr()
	return parseQualifierOfCounterInterrogation(a.DecodeByte())
}

// ReadCmd issues a read command for a single information object address
// ([C_RD_NA_1]). The standard fixes its cause of transmission to
// CotReq; it carries no payload beyond the address.
func ReadCmd(c Connect, ca CommonAddr, ioa IOA) error {
	if err := c.Params().Valid(); err != nil {
		return err
	}
	if err := checkValid(c, CRdNa1, false, 1); err != nil {
		return err
	}
	cot := CauseOfTransmission{Cause: CotReq}
	u := NewASDU(c.Params(), newIdentifier(c, CRdNa1, false, cot, ca))
	if err := u.SetVariableNumber(1); err != nil {
		return err
	}
	if err := u.AppendInfoObjAddr(ioa); err != nil {
		return err
	}
	return c.Send(u)
}

// GetReadCmd decodes the address of a [C_RD_NA_1] ASDU.
func (a *ASDU) GetReadCmd() IOA {
	return a.DecodeInfoObjAddr()
}

// ClockSyncCmd issues a clock synchronization command ([C_CS_NA_1])
// carrying t as a CP56Time2a. The standard fixes its cause of
// transmission to CotAct.
func ClockSyncCmd(c Connect, ca CommonAddr, t CP56Time2a) error {
	if err := checkValid(c, CCsNa1, false, 1); err != nil {
		return err
	}
	cot := CauseOfTransmission{Cause: CotAct}
	u := NewASDU(c.Params(), newIdentifier(c, CCsNa1, false, cot, ca))
	if err := u.SetVariableNumber(1); err != nil {
		return err
	}
	if err := u.AppendInfoObjAddr(0); err != nil {
		return err
	}
	u.AppendCP56Time2a(t)
	return c.Send(u)
}

// GetClockSyncCmd decodes the timestamp of a [C_CS_NA_1] ASDU.
func (a *ASDU) GetClockSyncCmd() CP56Time2a {
	a.DecodeInfoObjAddr()
	return a.DecodeCP56Time2a()
}

// TestFr is the fixed two-octet test pattern [C_TS_NA_1] carries: 0xaa55,
// chosen by the standard so a corrupted single bit is unlikely to still
// look valid.
const TestFr uint16 = 0xaa55

// TestCmd issues the link-test command ([C_TS_NA_1]). The standard fixes
// its cause of transmission to CotAct and its payload to TestFr.
func TestCmd(c Connect, ca CommonAddr) error {
	if err := checkValid(c, CTsNa1, false, 1); err != nil {
		return err
	}
	cot := CauseOfTransmission{Cause: CotAct}
	u := NewASDU(c.Params(), newIdentifier(c, CTsNa1, false, cot, ca))
	if err := u.SetVariableNumber(1); err != nil {
		return err
	}
	if err := u.AppendInfoObjAddr(0); err != nil {
		return err
	}
	u.AppendBytes(byte(TestFr&0xff), byte(TestFr>>8))
	return c.Send(u)
}

// GetTestCmd decodes the fixed test pattern of a [C_TS_NA_1] ASDU.
func (a *ASDU) GetTestCmd() uint16 {
	a.DecodeInfoObjAddr()
	return uint16(a.DecodeByte()) | uint16(a.DecodeByte())<<8
}

// TestCmdCP56Time2a issues the link-test command with CP56Time2a
// ([C_TS_TA_1]).
func TestCmdCP56Time2a(c Connect, ca CommonAddr, t CP56Time2a) error {
	if err := checkValid(c, CTsTa1, false, 1); err != nil {
		return err
	}
	cot := CauseOfTransmission{Cause: CotAct}
	u := NewASDU(c.Params(), newIdentifier(c, CTsTa1, false, cot, ca))
	if err := u.SetVariableNumber(1); err != nil {
		return err
	}
	if err := u.AppendInfoObjAddr(0); err != nil {
		return err
	}
	u.AppendBytes(byte(TestFr&0xff), byte(TestFr>>8))
	u.AppendCP56Time2a(t)
	return c.Send(u)
}

// GetTestCmdCP56Time2a decodes the test pattern and timestamp of a
// [C_TS_TA_1] ASDU.
func (a *ASDU) GetTestCmdCP56Time2a() (uint16, CP56Time2a) {
	a.DecodeInfoObjAddr()
	tsc := uint16(a.DecodeByte()) | uint16(a.DecodeByte())<<8
	return tsc, a.DecodeCP56Time2a()
}

// ResetProcessCmd issues a reset-process command ([C_RP_NA_1]). The
// standard fixes its cause of transmission to CotAct.
func ResetProcessCmd(c Connect, ca CommonAddr, qrp QualifierOfResetProcess) error {
	if err := checkValid(c, CRpNa1, false, 1); err != nil {
		return err
	}
	cot := CauseOfTransmission{Cause: CotAct}
	u := NewASDU(c.Params(), newIdentifier(c, CRpNa1, false, cot, ca))
	if err := u.SetVariableNumber(1); err != nil {
		return err
	}
	if err := u.AppendInfoObjAddr(0); err != nil {
		return err
	}
	u.AppendBytes(byte(qrp))
	return c.Send(u)
}

// GetResetProcessCmd decodes the qualifier of a [C_RP_NA_1] ASDU.
func (a *ASDU) GetResetProcessCmd() QualifierOfResetProcess {
	a.DecodeInfoObjAddr()
	return QualifierOfResetProcess(a.DecodeByte())
}

// DelayAcquisitionCmd issues a delay-acquisition command ([C_CD_NA_1])
// carrying the transmission delay as a CP16Time2a.
func DelayAcquisitionCmd(c Connect, cot CauseOfTransmission, ca CommonAddr, delay CP16Time2a) error {
	if err := checkValid(c, CCdNa1, false, 1); err != nil {
		return err
	}
	u := NewASDU(c.Params(), newIdentifier(c, CCdNa1, false, cot, ca))
	if err := u.SetVariableNumber(1); err != nil {
		return err
	}
	if err := u.AppendInfoObjAddr(0); err != nil {
		return err
	}
	u.AppendCP16Time2a(delay)
	return c.Send(u)
}

// GetDelayAcquisitionCmd decodes the delay of a [C_CD_NA_1] ASDU.
func (a *ASDU) GetDelayAcquisitionCmd() CP16Time2a {
	a.DecodeInfoObjAddr()
	return a.DecodeCP16Time2a()
}
