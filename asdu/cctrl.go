package asdu

// Builders and accessors for process information in the control
// direction: the commands a controlling station issues to an outstation
// (single/double/regulating-step commands, set-point commands and a
// bitstring-32 command), each in a plain and a CP56Time2a-tagged
// variant. The standard restricts every command's cause of transmission
// to activation or deactivation; builders enforce that before encoding
// anything.

func checkCmdCause(cot CauseOfTransmission) error {
	if cot.Cause != CotAct && cot.Cause != CotDeact {
		return ErrCmdCause
	}
	return nil
}

// SingleCommandInfo selects and qualifies a single-point command
// ([C_SC_NA_1] / [C_SC_TA_1]).
type SingleCommandInfo struct {
	Ioa    IOA
	Value  bool
	Qu     QualifierOfCommand
	Select bool // overrides Qu.InSelect when encoding; decoding sets both
	Time   CP56Time2a
}

func singleCmd(c Connect, typeID TypeID, cot CauseOfTransmission, ca CommonAddr, info SingleCommandInfo) error {
	if err := checkCmdCause(cot); err != nil {
		return err
	}
	if err := checkValid(c, typeID, false, 1); err != nil {
		return err
	}
	u := NewASDU(c.Params(), newIdentifier(c, typeID, false, cot, ca))
	if err := u.SetVariableNumber(1); err != nil {
		return err
	}
	if err := u.AppendInfoObjAddr(info.Ioa); err != nil {
		return err
	}
	q := info.Qu
	q.InSelect = info.Select
	b := q.value() & 0xfe
	if info.Value {
		b |= 0x01
	}
	u.AppendBytes(b)
	if typeID == CScTa1 {
		u.AppendCP56Time2a(info.Time)
	}
	return c.Send(u)
}

// SingleCmd issues a single command with no time tag ([C_SC_NA_1]).
func SingleCmd(c Connect, cot CauseOfTransmission, ca CommonAddr, info SingleCommandInfo) error {
	return singleCmd(c, CScNa1, cot, ca, info)
}

// SingleCmdCP56Time2a issues a single command with CP56Time2a
// ([C_SC_TA_1]).
func SingleCmdCP56Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info SingleCommandInfo) error {
	return singleCmd(c, CScTa1, cot, ca, info)
}

// GetSingleCmd decodes the single information object of a [C_SC_NA_1] or
// [C_SC_TA_1] ASDU.
func (a *ASDU) GetSingleCmd() SingleCommandInfo {
	ioa := a.DecodeInfoObjAddr()
	b := a.DecodeByte()
	q := parseQualifierOfCommand(b & 0xfe)
	var t CP56Time2a
	if a.Type == CScTa1 {
		t = a.DecodeCP56Time2a()
	}
	return SingleCommandInfo{Ioa: ioa, Value: b&0x01 != 0, Qu: q, Select: q.InSelect, Time: t}
}

// DoubleCommandInfo selects and qualifies a double-point command
// ([C_DC_NA_1] / [C_DC_TA_1]).
type DoubleCommandInfo struct {
	Ioa    IOA
	Value  DoublePoint
	Qu     QualifierOfCommand
	Select bool
	Time   CP56Time2a
}

func doubleCmd(c Connect, typeID TypeID, cot CauseOfTransmission, ca CommonAddr, info DoubleCommandInfo) error {
	if err := checkCmdCause(cot); err != nil {
		return err
	}
	if err := checkValid(c, typeID, false, 1); err != nil {
		return err
	}
	u := NewASDU(c.Params(), newIdentifier(c, typeID, false, cot, ca))
	if err := u.SetVariableNumber(1); err != nil {
		return err
	}
	if err := u.AppendInfoObjAddr(info.Ioa); err != nil {
		return err
	}
	q := info.Qu
	q.InSelect = info.Select
	u.AppendBytes(q.value()&0xfc | info.Value.value())
	if typeID == CDcTa1 {
		u.AppendCP56Time2a(info.Time)
	}
	return c.Send(u)
}

// DoubleCmd issues a double command with no time tag ([C_DC_NA_1]).
func DoubleCmd(c Connect, cot CauseOfTransmission, ca CommonAddr, info DoubleCommandInfo) error {
	return doubleCmd(c, CDcNa1, cot, ca, info)
}

// DoubleCmdCP56Time2a issues a double command with CP56Time2a
// ([C_DC_TA_1]).
func DoubleCmdCP56Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info DoubleCommandInfo) error {
	return doubleCmd(c, CDcTa1, cot, ca, info)
}

// GetDoubleCmd decodes the single information object of a [C_DC_NA_1] or
// [C_DC_TA_1] ASDU.
func (a *ASDU) GetDoubleCmd() DoubleCommandInfo {
	ioa := a.DecodeInfoObjAddr()
	b := a.DecodeByte()
	q := parseQualifierOfCommand(b & 0xfc)
	var t CP56Time2a
	if a.Type == CDcTa1 {
		t = a.DecodeCP56Time2a()
	}
	return DoubleCommandInfo{Ioa: ioa, Value: DoublePoint(b & 0x03), Qu: q, Select: q.InSelect, Time: t}
}

// StepCommandInfo selects and qualifies a regulating-step command
// ([C_RC_NA_1] / [C_RC_TA_1]). Value uses the same two-bit encoding as
// [DoublePoint]: DPIDeterminedOn means "step up", DPIDeterminedOff means
// "step down".
type StepCommandInfo struct {
	Ioa    IOA
	Value  DoublePoint
	Qu     QualifierOfCommand
	Select bool
	Time   CP56Time2a
}

func stepCmd(c Connect, typeID TypeID, cot CauseOfTransmission, ca CommonAddr, info StepCommandInfo) error {
	if err := checkCmdCause(cot); err != nil {
		return err
	}
	if err := checkValid(c, typeID, false, 1); err != nil {
		return err
	}
	u := NewASDU(c.Params(), newIdentifier(c, typeID, false, cot, ca))
	if err := u.SetVariableNumber(1); err != nil {
		return err
	}
	if err := u.AppendInfoObjAddr(info.Ioa); err != nil {
		return err
	}
	q := info.Qu
	q.InSelect = info.Select
	u.AppendBytes(q.value()&0xfc | info.Value.value())
	if typeID == CRcTa1 {
		u.AppendCP56Time2a(info.Time)
	}
	return c.Send(u)
}

// StepCmd issues a regulating-step command with no time tag
// ([C_RC_NA_1]).
func StepCmd(c Connect, cot CauseOfTransmission, ca CommonAddr, info StepCommandInfo) error {
	return stepCmd(c, CRcNa1, cot, ca, info)
}

// StepCmdCP56Time2a issues a regulating-step command with CP56Time2a
// ([C_RC_TA_1]).
func StepCmdCP56Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info StepCommandInfo) error {
	return stepCmd(c, CRcTa1, cot, ca, info)
}

// GetStepCmd decodes the single information object of a [C_RC_NA_1] or
// [C_RC_TA_1] ASDU.
func (a *ASDU) GetStepCmd() StepCommandInfo {
	ioa := a.DecodeInfoObjAddr()
	b := a.DecodeByte()
	q := parseQualifierOfCommand(b & 0xfc)
	var t CP56Time2a
	if a.Type == CRcTa1 {
		t = a.DecodeCP56Time2a()
	}
	return StepCommandInfo{Ioa: ioa, Value: DoublePoint(b & 0x03), Qu: q, Select: q.InSelect, Time: t}
}

// SetpointCommandNormalInfo is a normalized set-point command
// ([C_SE_NA_1] / [C_SE_TA_1]).
type SetpointCommandNormalInfo struct {
	Ioa   IOA
	Value int16
	Qos   QualifierOfSetpoint
	Time  CP56Time2a
}

func setpointNormal(c Connect, typeID TypeID, cot CauseOfTransmission, ca CommonAddr, info SetpointCommandNormalInfo) error {
	if err := checkCmdCause(cot); err != nil {
		return err
	}
	if err := checkValid(c, typeID, false, 1); err != nil {
		return err
	}
	u := NewASDU(c.Params(), newIdentifier(c, typeID, false, cot, ca))
	if err := u.SetVariableNumber(1); err != nil {
		return err
	}
	if err := u.AppendInfoObjAddr(info.Ioa); err != nil {
		return err
	}
	u.AppendNormalize(info.Value)
	u.AppendBytes(info.Qos.value())
	if typeID == CSeTa1 {
		u.AppendCP56Time2a(info.Time)
	}
	return c.Send(u)
}

// SetpointNormal issues a normalized set-point command with no time tag
// ([C_SE_NA_1]).
func SetpointNormal(c Connect, cot CauseOfTransmission, ca CommonAddr, info SetpointCommandNormalInfo) error {
	return setpointNormal(c, CSeNa1, cot, ca, info)
}

// SetpointNormalCP56Time2a issues a normalized set-point command with
// CP56Time2a ([C_SE_TA_1]).
func SetpointNormalCP56Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info SetpointCommandNormalInfo) error {
	return setpointNormal(c, CSeTa1, cot, ca, info)
}

// GetSetpointNormal decodes the single information object of a
// [C_SE_NA_1] or [C_SE_TA_1] ASDU.
func (a *ASDU) GetSetpointNormal() SetpointCommandNormalInfo {
	ioa := a.DecodeInfoObjAddr()
	v := a.DecodeNormalize()
	qos := parseQualifierOfSetpoint(a.DecodeByte())
	var t CP56Time2a
	if a.Type == CSeTa1 {
		t = a.DecodeCP56Time2a()
	}
	return SetpointCommandNormalInfo{Ioa: ioa, Value: v, Qos: qos, Time: t}
}

// SetpointCommandScaledInfo is a scaled set-point command ([C_SE_NB_1] /
// [C_SE_TB_1]).
type SetpointCommandScaledInfo struct {
	Ioa   IOA
	Value int16
	Qos   QualifierOfSetpoint
	Time  CP56Time2a
}

func setpointScaled(c Connect, typeID TypeID, cot CauseOfTransmission, ca CommonAddr, info SetpointCommandScaledInfo) error {
	if err := checkCmdCause(cot); err != nil {
		return err
	}
	if err := checkValid(c, typeID, false, 1); err != nil {
		return err
	}
	u := NewASDU(c.Params(), newIdentifier(c, typeID, false, cot, ca))
	if err := u.SetVariableNumber(1); err != nil {
		return err
	}
	if err := u.AppendInfoObjAddr(info.Ioa); err != nil {
		return err
	}
	u.AppendScaled(info.Value)
	u.AppendBytes(info.Qos.value())
	if typeID == CSeTb1 {
		u.AppendCP56Time2a(info.Time)
	}
	return c.Send(u)
}

// SetpointScaled issues a scaled set-point command with no time tag
// ([C_SE_NB_1]).
func SetpointScaled(c Connect, cot CauseOfTransmission, ca CommonAddr, info SetpointCommandScaledInfo) error {
	return setpointScaled(c, CSeNb1, cot, ca, info)
}

// SetpointScaledCP56Time2a issues a scaled set-point command with
// CP56Time2a ([C_SE_TB_1]).
func SetpointScaledCP56Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info SetpointCommandScaledInfo) error {
	return setpointScaled(c, CSeTb1, cot, ca, info)
}

// GetSetpointScaled decodes the single information object of a
// [C_SE_NB_1] or [C_SE_TB_1] ASDU.
func (a *ASDU) GetSetpointScaled() SetpointCommandScaledInfo {
	ioa := a.DecodeInfoObjAddr()
	v := a.DecodeScaled()
	qos := parseQualifierOfSetpoint(a.DecodeByte())
	var t CP56Time2a
	if a.Type == CSeTb1 {
		t = a.DecodeCP56Time2a()
	}
	return SetpointCommandScaledInfo{Ioa: ioa, Value: v, Qos: qos, Time: t}
}

// SetpointCommandFloatInfo is a short-float set-point command
// ([C_SE_NC_1] / [C_SE_TC_1]).
type SetpointCommandFloatInfo struct {
	Ioa   IOA
	Value float32
	Qos   QualifierOfSetpoint
	Time  CP56Time2a
}

func setpointFloat(c Connect, typeID TypeID, cot CauseOfTransmission, ca CommonAddr, info SetpointCommandFloatInfo) error {
	if err := checkCmdCause(cot); err != nil {
		return err
	}
	if err := checkValid(c, typeID, false, 1); err != nil {
		return err
	}
	u := NewASDU(c.Params(), newIdentifier(c, typeID, false, cot, ca))
	if err := u.SetVariableNumber(1); err != nil {
		return err
	}
	if err := u.AppendInfoObjAddr(info.Ioa); err != nil {
		return err
	}
	u.AppendFloat32(info.Value)
	u.AppendBytes(info.Qos.value())
	if typeID == CSeTc1 {
		u.AppendCP56Time2a(info.Time)
	}
	return c.Send(u)
}

// SetpointFloat issues a short-float set-point command with no time tag
// ([C_SE_NC_1]).
func SetpointFloat(c Connect, cot CauseOfTransmission, ca CommonAddr, info SetpointCommandFloatInfo) error {
	return setpointFloat(c, CSeNc1, cot, ca, info)
}

// SetpointFloatCP56Time2a issues a short-float set-point command with
// CP56Time2a ([C_SE_TC_1]).
func SetpointFloatCP56Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info SetpointCommandFloatInfo) error {
	return setpointFloat(c, CSeTc1, cot, ca, info)
}

// GetSetpointFloat decodes the single information object of a
// [C_SE_NC_1] or [C_SE_TC_1] ASDU.
func (a *ASDU) GetSetpointFloat() SetpointCommandFloatInfo {
	ioa := a.DecodeInfoObjAddr()
	v := a.DecodeFloat32()
	qos := parseQualifierOfSetpoint(a.DecodeByte())
	var t CP56Time2a
	if a.Type == CSeTc1 {
		t = a.DecodeCP56Time2a()
	}
	return SetpointCommandFloatInfo{Ioa: ioa, Value: v, Qos: qos, Time: t}
}

// BitString32CommandInfo is a 32-bit bitstring command ([C_BO_NA_1] /
// [C_BO_TA_1]).
type BitString32CommandInfo struct {
	Ioa   IOA
	Value uint32
	Time  CP56Time2a
}

func bitString32Cmd(c Connect, typeID TypeID, cot CauseOfTransmission, ca CommonAddr, info BitString32CommandInfo) error {
	if err := checkCmdCause(cot); err != nil {
		return err
	}
	if err := checkValid(c, typeID, false, 1); err != nil {
		return err
	}
	u := NewASDU(c.Params(), newIdentifier(c, typeID, false, cot, ca))
	if err := u.SetVariableNumber(1); err != nil {
		return err
	}
	if err := u.AppendInfoObjAddr(info.Ioa); err != nil {
		return err
	}
	u.AppendBitsString32(info.Value)
	if typeID == CBoTa1 {
		u.AppendCP56Time2a(info.Time)
	}
	return c.Send(u)
}

// BitString32Cmd issues a 32-bit bitstring command with no time tag
// ([C_BO_NA_1]).
func BitString32Cmd(c Connect, cot CauseOfTransmission, ca CommonAddr, info BitString32CommandInfo) error {
	return bitString32Cmd(c, CBoNa1, cot, ca, info)
}

// BitString32CmdCP56Time2a issues a 32-bit bitstring command with
// CP56Time2a ([C_BO_TA_1]).
func BitString32CmdCP56Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info BitString32CommandInfo) error {
	return bitString32Cmd(c, CBoTa1, cot, ca, info)
}

// GetBitString32Cmd decodes the single information object of a
// [C_BO_NA_1] or [C_BO_TA_1] ASDU.
func (a *ASDU) GetBitString32Cmd() BitString32CommandInfo {
	ioa := a.DecodeInfoObjAddr()
	v := a.DecodeBitsString32()
	var t CP56Time2a
	if a.Type == CBoTa1 {
		t = a.DecodeCP56Time2a()
	}
	return BitString32CommandInfo{Ioa: ioa, Value: v, Time: t}
}
