package asdu

// Parameter commands in control direction: loading and activating the
// scaling parameters behind a measured value, and triggering cyclic or
// freeze behaviour on previously loaded parameters ([P_ME_NA_1],
// [P_ME_NB_1], [P_ME_NC_1], [P_AC_NA_1]). See companion standard 101,
// subclass 7.3.5.

// QualifierOfParameter (QPM) describes what kind of parameter a
// P_ME_Nx_1 ASDU loads and whether it should take effect immediately.
// See subclass 7.2.6.24.
type QualifierOfParameter struct {
	Kind      byte // 0: not used, 1: threshold, 2: smoothing factor, 3: low limit, 4: high limit, 5..31: reserved, 32..63: private
	ChangeBit bool // LPC: local parameter change
	InOp      bool // POP: parameter in operation (false) or out of operation (true)
}

func (q QualifierOfParameter) value() byte {
	v := q.Kind & 0x3f
	if q.ChangeBit {
		v |= 0x40
	}
	if q.InOp {
		v |= 0x80
	}
	return v
}

func parseQualifierOfParameter(b byte) QualifierOfParameter {
	return QualifierOfParameter{Kind: b & 0x3f, ChangeBit: b&0x40 != 0, InOp: b&0x80 != 0}
}

// ParameterNormalInfo loads a normalized-value parameter ([P_ME_NA_1]).
type ParameterNormalInfo struct {
	Ioa   IOA
	Value int16
	Qpm   QualifierOfParameter
}

// ParameterNormal issues a [P_ME_NA_1] ASDU. The standard fixes its
// cause of transmission to CotAct.
func ParameterNormal(c Connect, ca CommonAddr, info ParameterNormalInfo) error {
	if err := checkValid(c, PMeNa1, false, 1); err != nil {
		return err
	}
	cot := CauseOfTransmission{Cause: CotAct}
	u := NewASDU(c.Params(), newIdentifier(c, PMeNa1, false, cot, ca))
	if err := u.SetVariableNumber(1); err != nil {
		return err
	}
	if err := u.AppendInfoObjAddr(info.Ioa); err != nil {
		return err
	}
	u.AppendNormalize(info.Value)
	u.AppendBytes(info.Qpm.value())
	return c.Send(u)
}

// GetParameterNormal decodes the single information object of a
// [P_ME_NA_1] ASDU.
func (a *ASDU) GetParameterNormal() ParameterNormalInfo {
	ioa := a.DecodeInfoObjAddr()
	v := a.DecodeNormalize()
	return ParameterNormalInfo{Ioa: ioa, Value: v, Qpm: parseQualifierOfParameter(a.DecodeByte())}
}

// ParameterScaledInfo loads a scaled-value parameter ([P_ME_NB_1]).
type ParameterScaledInfo struct {
	Ioa   IOA
	Value int16
	Qpm   QualifierOfParameter
}

// ParameterScaled issues a [P_ME_NB_1] ASDU.
func ParameterScaled(c Connect, ca CommonAddr, info ParameterScaledInfo) error {
	if err := checkValid(c, PMeNb1, false, 1); err != nil {
		return err
	}
	cot := CauseOfTransmission{Cause: CotAct}
	u := NewASDU(c.Params(), newIdentifier(c, PMeNb1, false, cot, ca))
	if err := u.SetVariableNumber(1); err != nil {
		return err
	}
	if err := u.AppendInfoObjAddr(info.Ioa); err != nil {
		return err
	}
	u.AppendScaled(info.Value)
	u.AppendBytes(info.Qpm.value())
	return c.Send(u)
}

// GetParameterScaled decodes the single information object of a
// [P_ME_NB_1] ASDU.
func (a *ASDU) GetParameterScaled() ParameterScaledInfo {
	ioa := a.DecodeInfoObjAddr()
	v := a.DecodeScaled()
	return ParameterScaledInfo{Ioa: ioa, Value: v, Qpm: parseQualifierOfParameter(a.DecodeByte())}
}

// ParameterFloatInfo loads a short-float parameter ([P_ME_NC_1]).
type ParameterFloatInfo struct {
	Ioa   IOA
	Value float32
	Qpm   QualifierOfParameter
}

// ParameterFloat issues a [P_ME_NC_1] ASDU.
func ParameterFloat(c Connect, ca CommonAddr, info ParameterFloatInfo) error {
	if err := checkValid(c, PMeNc1, false, 1); err != nil {
		return err
	}
	cot := CauseOfTransmission{Cause: CotAct}
	u := NewASDU(c.Params(), newIdentifier(c, PMeNc1, false, cot, ca))
	if err := u.SetVariableNumber(1); err != nil {
		return err
	}
	if err := u.AppendInfoObjAddr(info.Ioa); err != nil {
		return err
	}
	u.AppendFloat32(info.Value)
	u.AppendBytes(info.Qpm.value())
	return c.Send(u)
}

// GetParameterFloat decodes the single information object of a
// [P_ME_NC_1] ASDU.
func (a *ASDU) GetParameterFloat() ParameterFloatInfo {
	ioa := a.DecodeInfoObjAddr()
	v := a.DecodeFloat32()
	return ParameterFloatInfo{Ioa: ioa, Value: v, Qpm: parseQualifierOfParameter(a.DecodeByte())}
}

// QualifierOfParameterActivation (QPA) selects what a [P_AC_NA_1]
// activates or deactivates. See subclass 7.2.6.25.
type QualifierOfParameterActivation byte

const (
	QPANotUsed                QualifierOfParameterActivation = 0
	QPAPreviouslyLoaded       QualifierOfParameterActivation = 1 // act/deact of previously loaded parameters
	QPAObjectParameter        QualifierOfParameterActivation = 2 // act/deact of the single object's parameter
	QPAPersistentCyclicOrFreeze QualifierOfParameterActivation = 3
)

// ParameterActivation issues a [P_AC_NA_1] ASDU activating or
// deactivating parameters previously loaded at ioa.
func ParameterActivation(c Connect, cot CauseOfTransmission, ca CommonAddr, ioa IOA, qpa QualifierOfParameterActivation) error {
	if err := checkCmdCause(cot); err != nil {
		return err
	}
	if err := checkValid(c, PAcNa1, false, 1); err != nil {
		return err
	}
	u := NewASDU(c.Params(), newIdentifier(c, PAcNa1, false, cot, ca))
	if err := u.SetVariableNumber(1); err != nil {
		return err
	}
	if err := u.AppendInfoObjAddr(ioa); err != nil {
		return err
	}
	u.AppendBytes(byte(qpa))
	return c.Send(u)
}

// GetParameterActivation decodes the single information object of a
// [P_AC_NA_1] ASDU.
func (a *ASDU) GetParameterActivation() (IOA, QualifierOfParameterActivation) {
	ioa := a.DecodeInfoObjAddr()
	return ioa, QualifierOfParameterActivation(a.DecodeByte())
}
