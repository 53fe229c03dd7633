package asdu

// Builders and accessors for process information in the monitoring
// direction: the telemetry an outstation reports to its controlling
// station (single/double points, step positions, bitstrings, measured
// values, integrated totals and protection-equipment events).
//
// Every family follows the same shape: an unexported builder taking the
// concrete TypeID (NoTime / CP24Time2a / CP56Time2a variant), three
// exported wrappers selecting one of those TypeIDs, and a Get* method on
// *ASDU that walks the information objects back out. When
// Identifier.Variable.IsSequence is set only the first object carries an
// explicit IOA; the rest are implicitly addressed IOA, IOA+1, ...

func newIdentifier(c Connect, typeID TypeID, isSequence bool, cot CauseOfTransmission, ca CommonAddr) Identifier {
	return Identifier{
		Type:       typeID,
		Variable:   vsq{IsSequence: isSequence},
		Cause:      cot,
		OrigAddr:   c.Params().OriginAddr,
		CommonAddr: ca,
	}
}

// SinglePointInfo is a single-bit status value.
type SinglePointInfo struct {
	Ioa   IOA
	Value bool
	Qds   QualityDescriptor
	Time  CP56Time2a
}

func single(c Connect, typeID TypeID, isSequence bool, cot CauseOfTransmission, ca CommonAddr, infos ...SinglePointInfo) error {
	if err := checkValid(c, typeID, isSequence, len(infos)); err != nil {
		return err
	}
	u := NewASDU(c.Params(), newIdentifier(c, typeID, isSequence, cot, ca))
	if err := u.SetVariableNumber(len(infos)); err != nil {
		return err
	}
	once := false
	for _, v := range infos {
		if !isSequence || !once {
			once = true
			if err := u.AppendInfoObjAddr(v.Ioa); err != nil {
				return err
			}
		}
		b := byte(0)
		if v.Value {
			b = 1
		}
		u.AppendBytes(b | byte(v.Qds&0xf0))
		switch typeID {
		case MSpTa1:
			u.AppendCP24Time2a(v.Time.CP24Time2a)
		case MSpTb1:
			u.AppendCP56Time2a(v.Time)
		}
	}
	return c.Send(u)
}

// Single reports single-point information with no time tag ([M_SP_NA_1]).
func Single(c Connect, isSequence bool, cot CauseOfTransmission, ca CommonAddr, infos ...SinglePointInfo) error {
	return single(c, MSpNa1, isSequence, cot, ca, infos...)
}

// SingleCP24Time2a reports single-point information with CP24Time2a
// ([M_SP_TA_1]). The standard forbids SQ=1 for this type.
func SingleCP24Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info SinglePointInfo) error {
	return single(c, MSpTa1, false, cot, ca, info)
}

// SingleCP56Time2a reports single-point information with CP56Time2a
// ([M_SP_TB_1]). The standard forbids SQ=1 for this type.
func SingleCP56Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info SinglePointInfo) error {
	return single(c, MSpTb1, false, cot, ca, info)
}

// GetSinglePoint decodes the information objects of an [M_SP_NA_1],
// [M_SP_TA_1] or [M_SP_TB_1] ASDU.
func (a *ASDU) GetSinglePoint() []SinglePointInfo {
	out := make([]SinglePointInfo, 0, a.Variable.Number)
	var ioa IOA
	for i := 0; i < int(a.Variable.Number); i++ {
		if !a.Variable.IsSequence || i == 0 {
			ioa = a.DecodeInfoObjAddr()
		} else {
			ioa++
		}
		b := a.DecodeByte()
		var t CP56Time2a
		switch a.Type {
		case MSpTa1:
			t.CP24Time2a = a.DecodeCP24Time2a()
		case MSpTb1:
			t = a.DecodeCP56Time2a()
		}
		out = append(out, SinglePointInfo{Ioa: ioa, Value: b&0x01 != 0, Qds: ParseQualityDescriptor(b & 0xf0), Time: t})
	}
	return out
}

// DoublePointInfo is a determination-aware two-bit status value.
type DoublePointInfo struct {
	Ioa   IOA
	Value DoublePoint
	Qds   QualityDescriptor
	Time  CP56Time2a
}

func double(c Connect, typeID TypeID, isSequence bool, cot CauseOfTransmission, ca CommonAddr, infos ...DoublePointInfo) error {
	if err := checkValid(c, typeID, isSequence, len(infos)); err != nil {
		return err
	}
	u := NewASDU(c.Params(), newIdentifier(c, typeID, isSequence, cot, ca))
	if err := u.SetVariableNumber(len(infos)); err != nil {
		return err
	}
	once := false
	for _, v := range infos {
		if !isSequence || !once {
			once = true
			if err := u.AppendInfoObjAddr(v.Ioa); err != nil {
				return err
			}
		}
		u.AppendBytes(v.Value.value() | byte(v.Qds&0xf0))
		switch typeID {
		case MDpTa1:
			u.AppendCP24Time2a(v.Time.CP24Time2a)
		case MDpTb1:
			u.AppendCP56Time2a(v.Time)
		}
	}
	return c.Send(u)
}

// Double reports double-point information with no time tag ([M_DP_NA_1]).
func Double(c Connect, isSequence bool, cot CauseOfTransmission, ca CommonAddr, infos ...DoublePointInfo) error {
	return double(c, MDpNa1, isSequence, cot, ca, infos...)
}

// DoubleCP24Time2a reports double-point information with CP24Time2a
// ([M_DP_TA_1]).
func DoubleCP24Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info DoublePointInfo) error {
	return double(c, MDpTa1, false, cot, ca, info)
}

// DoubleCP56Time2a reports double-point information with CP56Time2a
// ([M_DP_TB_1]).
func DoubleCP56Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info DoublePointInfo) error {
	return double(c, MDpTb1, false, cot, ca, info)
}

// GetDoublePoint decodes the information objects of an [M_DP_NA_1],
// [M_DP_TA_1] or [M_DP_TB_1] ASDU.
func (a *ASDU) GetDoublePoint() []DoublePointInfo {
	out := make([]DoublePointInfo, 0, a.Variable.Number)
	var ioa IOA
	for i := 0; i < int(a.Variable.Number); i++ {
		if !a.Variable.IsSequence || i == 0 {
			ioa = a.DecodeInfoObjAddr()
		} else {
			ioa++
		}
		b := a.DecodeByte()
		var t CP56Time2a
		switch a.Type {
		case MDpTa1:
			t.CP24Time2a = a.DecodeCP24Time2a()
		case MDpTb1:
			t = a.DecodeCP56Time2a()
		}
		out = append(out, DoublePointInfo{Ioa: ioa, Value: DoublePoint(b & 0x03), Qds: ParseQualityDescriptor(b & 0xf0), Time: t})
	}
	return out
}

// StepPositionInfo is a transformer tap-changer style measured value.
type StepPositionInfo struct {
	Ioa   IOA
	Value StepPosition
	Qds   QualityDescriptor
	Time  CP56Time2a
}

func step(c Connect, typeID TypeID, isSequence bool, cot CauseOfTransmission, ca CommonAddr, infos ...StepPositionInfo) error {
	if err := checkValid(c, typeID, isSequence, len(infos)); err != nil {
		return err
	}
	u := NewASDU(c.Params(), newIdentifier(c, typeID, isSequence, cot, ca))
	if err := u.SetVariableNumber(len(infos)); err != nil {
		return err
	}
	once := false
	for _, v := range infos {
		if !isSequence || !once {
			once = true
			if err := u.AppendInfoObjAddr(v.Ioa); err != nil {
				return err
			}
		}
		u.AppendBytes(v.Value.value(), byte(v.Qds))
		switch typeID {
		case MStTa1:
			u.AppendCP24Time2a(v.Time.CP24Time2a)
		case MStTb1:
			u.AppendCP56Time2a(v.Time)
		}
	}
	return c.Send(u)
}

// Step reports step-position information with no time tag ([M_ST_NA_1]).
func Step(c Connect, isSequence bool, cot CauseOfTransmission, ca CommonAddr, infos ...StepPositionInfo) error {
	return step(c, MStNa1, isSequence, cot, ca, infos...)
}

// StepCP24Time2a reports step-position information with CP24Time2a
// ([M_ST_TA_1]).
func StepCP24Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info StepPositionInfo) error {
	return step(c, MStTa1, false, cot, ca, info)
}

// StepCP56Time2a reports step-position information with CP56Time2a
// ([M_ST_TB_1]).
func StepCP56Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info StepPositionInfo) error {
	return step(c, MStTb1, false, cot, ca, info)
}

// GetStepPosition decodes the information objects of an [M_ST_NA_1],
// [M_ST_TA_1] or [M_ST_TB_1] ASDU.
func (a *ASDU) GetStepPosition() []StepPositionInfo {
	out := make([]StepPositionInfo, 0, a.Variable.Number)
	var ioa IOA
	for i := 0; i < int(a.Variable.Number); i++ {
		if !a.Variable.IsSequence || i == 0 {
			ioa = a.DecodeInfoObjAddr()
		} else {
			ioa++
		}
		val := parseStepPosition(a.DecodeByte())
		qds := ParseQualityDescriptor(a.DecodeByte())
		var t CP56Time2a
		switch a.Type {
		case MStTa1:
			t.CP24Time2a = a.DecodeCP24Time2a()
		case MStTb1:
			t = a.DecodeCP56Time2a()
		}
		out = append(out, StepPositionInfo{Ioa: ioa, Value: val, Qds: qds, Time: t})
	}
	return out
}

// BitString32Info is a 32-bit status bitstring.
type BitString32Info struct {
	Ioa   IOA
	Value uint32
	Qds   QualityDescriptor
	Time  CP56Time2a
}

func bitString32(c Connect, typeID TypeID, isSequence bool, cot CauseOfTransmission, ca CommonAddr, infos ...BitString32Info) error {
	if err := checkValid(c, typeID, isSequence, len(infos)); err != nil {
		return err
	}
	u := NewASDU(c.Params(), newIdentifier(c, typeID, isSequence, cot, ca))
	if err := u.SetVariableNumber(len(infos)); err != nil {
		return err
	}
	once := false
	for _, v := range infos {
		if !isSequence || !once {
			once = true
			if err := u.AppendInfoObjAddr(v.Ioa); err != nil {
				return err
			}
		}
		u.AppendBitsString32(v.Value)
		u.AppendBytes(byte(v.Qds))
		switch typeID {
		case MBoTa1:
			u.AppendCP24Time2a(v.Time.CP24Time2a)
		case MBoTb1:
			u.AppendCP56Time2a(v.Time)
		}
	}
	return c.Send(u)
}

// BitString32 reports a 32-bit bitstring with no time tag ([M_BO_NA_1]).
func BitString32(c Connect, isSequence bool, cot CauseOfTransmission, ca CommonAddr, infos ...BitString32Info) error {
	return bitString32(c, MBoNa1, isSequence, cot, ca, infos...)
}

// BitString32CP24Time2a reports a 32-bit bitstring with CP24Time2a
// ([M_BO_TA_1]).
func BitString32CP24Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info BitString32Info) error {
	return bitString32(c, MBoTa1, false, cot, ca, info)
}

// BitString32CP56Time2a reports a 32-bit bitstring with CP56Time2a
// ([M_BO_TB_1]).
func BitString32CP56Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info BitString32Info) error {
	return bitString32(c, MBoTb1, false, cot, ca, info)
}

// GetBitString32 decodes the information objects of an [M_BO_NA_1],
// [M_BO_TA_1] or [M_BO_TB_1] ASDU.
func (a *ASDU) GetBitString32() []BitString32Info {
	out := make([]BitString32Info, 0, a.Variable.Number)
	var ioa IOA
	for i := 0; i < int(a.Variable.Number); i++ {
		if !a.Variable.IsSequence || i == 0 {
			ioa = a.DecodeInfoObjAddr()
		} else {
			ioa++
		}
		val := a.DecodeBitsString32()
		qds := ParseQualityDescriptor(a.DecodeByte())
		var t CP56Time2a
		switch a.Type {
		case MBoTa1:
			t.CP24Time2a = a.DecodeCP24Time2a()
		case MBoTb1:
			t = a.DecodeCP56Time2a()
		}
		out = append(out, BitString32Info{Ioa: ioa, Value: val, Qds: qds, Time: t})
	}
	return out
}

// MeasuredValueNormalInfo is a measured value normalized to
// [-1, 32767/32768].
type MeasuredValueNormalInfo struct {
	Ioa   IOA
	Value int16
	Qds   QualityDescriptor
	Time  CP56Time2a
}

func measuredNormal(c Connect, typeID TypeID, isSequence bool, cot CauseOfTransmission, ca CommonAddr, infos ...MeasuredValueNormalInfo) error {
	if err := checkValid(c, typeID, isSequence, len(infos)); err != nil {
		return err
	}
	u := NewASDU(c.Params(), newIdentifier(c, typeID, isSequence, cot, ca))
	if err := u.SetVariableNumber(len(infos)); err != nil {
		return err
	}
	once := false
	for _, v := range infos {
		if !isSequence || !once {
			once = true
			if err := u.AppendInfoObjAddr(v.Ioa); err != nil {
				return err
			}
		}
		u.AppendNormalize(v.Value)
		if typeID != MMeNd1 {
			u.AppendBytes(byte(v.Qds))
		}
		switch typeID {
		case MMeTa1:
			u.AppendCP24Time2a(v.Time.CP24Time2a)
		case MMeTd1:
			u.AppendCP56Time2a(v.Time)
		}
	}
	return c.Send(u)
}

// MeasuredValueNormal reports a normalized measured value with quality
// but no time tag ([M_ME_NA_1]).
func MeasuredValueNormal(c Connect, isSequence bool, cot CauseOfTransmission, ca CommonAddr, infos ...MeasuredValueNormalInfo) error {
	return measuredNormal(c, MMeNa1, isSequence, cot, ca, infos...)
}

// MeasuredValueNormalCP24Time2a reports a normalized measured value with
// CP24Time2a ([M_ME_TA_1]).
func MeasuredValueNormalCP24Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info MeasuredValueNormalInfo) error {
	return measuredNormal(c, MMeTa1, false, cot, ca, info)
}

// MeasuredValueNormalCP56Time2a reports a normalized measured value with
// CP56Time2a ([M_ME_TD_1]).
func MeasuredValueNormalCP56Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info MeasuredValueNormalInfo) error {
	return measuredNormal(c, MMeTd1, false, cot, ca, info)
}

// MeasuredValueNormalWithoutQuality reports a normalized measured value
// without a quality descriptor ([M_ME_ND_1]).
func MeasuredValueNormalWithoutQuality(c Connect, isSequence bool, cot CauseOfTransmission, ca CommonAddr, infos ...MeasuredValueNormalInfo) error {
	return measuredNormal(c, MMeNd1, isSequence, cot, ca, infos...)
}

// GetMeasuredValueNormal decodes the information objects of an
// [M_ME_NA_1], [M_ME_TA_1], [M_ME_ND_1] or [M_ME_TD_1] ASDU.
func (a *ASDU) GetMeasuredValueNormal() []MeasuredValueNormalInfo {
	out := make([]MeasuredValueNormalInfo, 0, a.Variable.Number)
	var ioa IOA
	for i := 0; i < int(a.Variable.Number); i++ {
		if !a.Variable.IsSequence || i == 0 {
			ioa = a.DecodeInfoObjAddr()
		} else {
			ioa++
		}
		val := a.DecodeNormalize()
		qds := QDSGood
		if a.Type != MMeNd1 {
			qds = ParseQualityDescriptor(a.DecodeByte())
		}
		var t CP56Time2a
		switch a.Type {
		case MMeTa1:
			t.CP24Time2a = a.DecodeCP24Time2a()
		case MMeTd1:
			t = a.DecodeCP56Time2a()
		}
		out = append(out, MeasuredValueNormalInfo{Ioa: ioa, Value: val, Qds: qds, Time: t})
	}
	return out
}

// MeasuredValueScaledInfo is a measured value scaled as a plain signed
// 16-bit integer.
type MeasuredValueScaledInfo struct {
	Ioa   IOA
	Value int16
	Qds   QualityDescriptor
	Time  CP56Time2a
}

func measuredScaled(c Connect, typeID TypeID, isSequence bool, cot CauseOfTransmission, ca CommonAddr, infos ...MeasuredValueScaledInfo) error {
	if err := checkValid(c, typeID, isSequence, len(infos)); err != nil {
		return err
	}
	u := NewASDU(c.Params(), newIdentifier(c, typeID, isSequence, cot, ca))
	if err := u.SetVariableNumber(len(infos)); err != nil {
		return err
	}
	once := false
	for _, v := range infos {
		if !isSequence || !once {
			once = true
			if err := u.AppendInfoObjAddr(v.Ioa); err != nil {
				return err
			}
		}
		u.AppendScaled(v.Value)
		u.AppendBytes(byte(v.Qds))
		switch typeID {
		case MMeTb1:
			u.AppendCP24Time2a(v.Time.CP24Time2a)
		case MMeTe1:
			u.AppendCP56Time2a(v.Time)
		}
	}
	return c.Send(u)
}

// MeasuredValueScaled reports a scaled measured value with no time tag
// ([M_ME_NB_1]).
func MeasuredValueScaled(c Connect, isSequence bool, cot CauseOfTransmission, ca CommonAddr, infos ...MeasuredValueScaledInfo) error {
	return measuredScaled(c, MMeNb1, isSequence, cot, ca, infos...)
}

// MeasuredValueScaledCP24Time2a reports a scaled measured value with
// CP24Time2a ([M_ME_TB_1]).
func MeasuredValueScaledCP24Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info MeasuredValueScaledInfo) error {
	return measuredScaled(c, MMeTb1, false, cot, ca, info)
}

// MeasuredValueScaledCP56Time2a reports a scaled measured value with
// CP56Time2a ([M_ME_TE_1]).
func MeasuredValueScaledCP56Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info MeasuredValueScaledInfo) error {
	return measuredScaled(c, MMeTe1, false, cot, ca, info)
}

// GetMeasuredValueScaled decodes the information objects of an
// [M_ME_NB_1], [M_ME_TB_1] or [M_ME_TE_1] ASDU.
func (a *ASDU) GetMeasuredValueScaled() []MeasuredValueScaledInfo {
	out := make([]MeasuredValueScaledInfo, 0, a.Variable.Number)
	var ioa IOA
	for i := 0; i < int(a.Variable.Number); i++ {
		if !a.Variable.IsSequence || i == 0 {
			ioa = a.DecodeInfoObjAddr()
		} else {
			ioa++
		}
		val := a.DecodeScaled()
		qds := ParseQualityDescriptor(a.DecodeByte())
		var t CP56Time2a
		switch a.Type {
		case MMeTb1:
			t.CP24Time2a = a.DecodeCP24Time2a()
		case MMeTe1:
			t = a.DecodeCP56Time2a()
		}
		out = append(out, MeasuredValueScaledInfo{Ioa: ioa, Value: val, Qds: qds, Time: t})
	}
	return out
}

// MeasuredValueFloatInfo is a measured value as an IEEE 754 short float.
type MeasuredValueFloatInfo struct {
	Ioa   IOA
	Value float32
	Qds   QualityDescriptor
	Time  CP56Time2a
}

func measuredFloat(c Connect, typeID TypeID, isSequence bool, cot CauseOfTransmission, ca CommonAddr, infos ...MeasuredValueFloatInfo) error {
	if err := checkValid(c, typeID, isSequence, len(infos)); err != nil {
		return err
	}
	u := NewASDU(c.Params(), newIdentifier(c, typeID, isSequence, cot, ca))
	if err := u.SetVariableNumber(len(infos)); err != nil {
		return err
	}
	once := false
	for _, v := range infos {
		if !isSequence || !once {
			once = true
			if err := u.AppendInfoObjAddr(v.Ioa); err != nil {
				return err
			}
		}
		u.AppendFloat32(v.Value)
		u.AppendBytes(byte(v.Qds))
		switch typeID {
		case MMeTc1:
			u.AppendCP24Time2a(v.Time.CP24Time2a)
		case MMeTf1:
			u.AppendCP56Time2a(v.Time)
		}
	}
	return c.Send(u)
}

// MeasuredValueFloat reports a short-float measured value with no time
// tag ([M_ME_NC_1]).
func MeasuredValueFloat(c Connect, isSequence bool, cot CauseOfTransmission, ca CommonAddr, infos ...MeasuredValueFloatInfo) error {
	return measuredFloat(c, MMeNc1, isSequence, cot, ca, infos...)
}

// MeasuredValueFloatCP24Time2a reports a short-float measured value with
// CP24Time2a ([M_ME_TC_1]).
func MeasuredValueFloatCP24Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info MeasuredValueFloatInfo) error {
	return measuredFloat(c, MMeTc1, false, cot, ca, info)
}

// MeasuredValueFloatCP56Time2a reports a short-float measured value with
// CP56Time2a ([M_ME_TF_1]).
func MeasuredValueFloatCP56Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info MeasuredValueFloatInfo) error {
	return measuredFloat(c, MMeTf1, false, cot, ca, info)
}

// GetMeasuredValueFloat decodes the information objects of an
// [M_ME_NC_1], [M_ME_TC_1] or [M_ME_TF_1] ASDU.
func (a *ASDU) GetMeasuredValueFloat() []MeasuredValueFloatInfo {
	out := make([]MeasuredValueFloatInfo, 0, a.Variable.Number)
	var ioa IOA
	for i := 0; i < int(a.Variable.Number); i++ {
		if !a.Variable.IsSequence || i == 0 {
			ioa = a.DecodeInfoObjAddr()
		} else {
			ioa++
		}
		val := a.DecodeFloat32()
		qds := ParseQualityDescriptor(a.DecodeByte())
		var t CP56Time2a
		switch a.Type {
		case MMeTc1:
			t.CP24Time2a = a.DecodeCP24Time2a()
		case MMeTf1:
			t = a.DecodeCP56Time2a()
		}
		out = append(out, MeasuredValueFloatInfo{Ioa: ioa, Value: val, Qds: qds, Time: t})
	}
	return out
}

// IntegratedTotalsInfo is an integrated total (freeze-and-report counter).
type IntegratedTotalsInfo struct {
	Ioa   IOA
	Value BinaryCounterReading
	Time  CP56Time2a
}

func integratedTotals(c Connect, typeID TypeID, isSequence bool, cot CauseOfTransmission, ca CommonAddr, infos ...IntegratedTotalsInfo) error {
	if err := checkValid(c, typeID, isSequence, len(infos)); err != nil {
		return err
	}
	u := NewASDU(c.Params(), newIdentifier(c, typeID, isSequence, cot, ca))
	if err := u.SetVariableNumber(len(infos)); err != nil {
		return err
	}
	once := false
	for _, v := range infos {
		if !isSequence || !once {
			once = true
			if err := u.AppendInfoObjAddr(v.Ioa); err != nil {
				return err
			}
		}
		u.AppendBCR(v.Value)
		switch typeID {
		case MItTa1:
			u.AppendCP24Time2a(v.Time.CP24Time2a)
		case MItTb1:
			u.AppendCP56Time2a(v.Time)
		}
	}
	return c.Send(u)
}

// IntegratedTotals reports an integrated total with no time tag
// ([M_IT_NA_1]).
func IntegratedTotals(c Connect, isSequence bool, cot CauseOfTransmission, ca CommonAddr, infos ...IntegratedTotalsInfo) error {
	return integratedTotals(c, MItNa1, isSequence, cot, ca, infos...)
}

// IntegratedTotalsCP24Time2a reports an integrated total with CP24Time2a
// ([M_IT_TA_1]).
func IntegratedTotalsCP24Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info IntegratedTotalsInfo) error {
	return integratedTotals(c, MItTa1, false, cot, ca, info)
}

// IntegratedTotalsCP56Time2a reports an integrated total with CP56Time2a
// ([M_IT_TB_1]).
func IntegratedTotalsCP56Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info IntegratedTotalsInfo) error {
	return integratedTotals(c, MItTb1, false, cot, ca, info)
}

// GetIntegratedTotals decodes the information objects of an [M_IT_NA_1],
// [M_IT_TA_1] or [M_IT_TB_1] ASDU.
func (a *ASDU) GetIntegratedTotals() []IntegratedTotalsInfo {
	out := make([]IntegratedTotalsInfo, 0, a.Variable.Number)
	var ioa IOA
	for i := 0; i < int(a.Variable.Number); i++ {
		if !a.Variable.IsSequence || i == 0 {
			ioa = a.DecodeInfoObjAddr()
		} else {
			ioa++
		}
		val := a.DecodeBCR()
		var t CP56Time2a
		switch a.Type {
		case MItTa1:
			t.CP24Time2a = a.DecodeCP24Time2a()
		case MItTb1:
			t = a.DecodeCP56Time2a()
		}
		out = append(out, IntegratedTotalsInfo{Ioa: ioa, Value: val, Time: t})
	}
	return out
}

// EventOfProtectionInfo is a single protection-equipment event: a
// double-point state, its elapsed operating time and the event's own
// timestamp.
type EventOfProtectionInfo struct {
	Ioa     IOA
	Event   DoublePoint
	Qdp     QualityDescriptorProtection
	Elapsed CP16Time2a
	Time    CP56Time2a
}

func eventOfProtection(c Connect, typeID TypeID, cot CauseOfTransmission, ca CommonAddr, info EventOfProtectionInfo) error {
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
	u.AppendBytes(info.Event.value() | byte(info.Qdp))
	u.AppendCP16Time2a(info.Elapsed)
	switch typeID {
	case MEpTa1:
		u.AppendCP24Time2a(info.Time.CP24Time2a)
	case MEpTd1:
		u.AppendCP56Time2a(info.Time)
	}
	return c.Send(u)
}

// EventOfProtectionCP24Time2a reports a protection-equipment event with
// CP24Time2a ([M_EP_TA_1]).
func EventOfProtectionCP24Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info EventOfProtectionInfo) error {
	return eventOfProtection(c, MEpTa1, cot, ca, info)
}

// EventOfProtectionCP56Time2a reports a protection-equipment event with
// CP56Time2a ([M_EP_TD_1]).
func EventOfProtectionCP56Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info EventOfProtectionInfo) error {
	return eventOfProtection(c, MEpTd1, cot, ca, info)
}

// GetEventOfProtection decodes the single information object of an
// [M_EP_TA_1] or [M_EP_TD_1] ASDU.
func (a *ASDU) GetEventOfProtection() EventOfProtectionInfo {
	ioa := a.DecodeInfoObjAddr()
	b := a.DecodeByte()
	elapsed := a.DecodeCP16Time2a()
	var t CP56Time2a
	switch a.Type {
	case MEpTa1:
		t.CP24Time2a = a.DecodeCP24Time2a()
	case MEpTd1:
		t = a.DecodeCP56Time2a()
	}
	return EventOfProtectionInfo{
		Ioa:     ioa,
		Event:   DoublePoint(b & 0x03),
		Qdp:     ParseQualityDescriptorProtection(b),
		Elapsed: elapsed,
		Time:    t,
	}
}

// PackedStartEventsInfo is a packed start-events report of protection
// equipment.
type PackedStartEventsInfo struct {
	Ioa     IOA
	Events  StartEvent
	Qdp     QualityDescriptorProtection
	Elapsed CP16Time2a
	Time    CP56Time2a
}

func packedStartEvents(c Connect, typeID TypeID, cot CauseOfTransmission, ca CommonAddr, info PackedStartEventsInfo) error {
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
	u.AppendBytes(byte(info.Events), byte(info.Qdp))
	u.AppendCP16Time2a(info.Elapsed)
	switch typeID {
	case MEpTb1:
		u.AppendCP24Time2a(info.Time.CP24Time2a)
	case MEpTe1:
		u.AppendCP56Time2a(info.Time)
	}
	return c.Send(u)
}

// PackedStartEventsCP24Time2a reports packed protection-equipment start
// events with CP24Time2a ([M_EP_TB_1]).
func PackedStartEventsCP24Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info PackedStartEventsInfo) error {
	return packedStartEvents(c, MEpTb1, cot, ca, info)
}

// PackedStartEventsCP56Time2a reports packed protection-equipment start
// events with CP56Time2a ([M_EP_TE_1]).
func PackedStartEventsCP56Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info PackedStartEventsInfo) error {
	return packedStartEvents(c, MEpTe1, cot, ca, info)
}

// GetPackedStartEvents decodes the single information object of an
// [M_EP_TB_1] or [M_EP_TE_1] ASDU.
func (a *ASDU) GetPackedStartEvents() PackedStartEventsInfo {
	ioa := a.DecodeInfoObjAddr()
	events := StartEvent(a.DecodeByte())
	qdp := ParseQualityDescriptorProtection(a.DecodeByte())
	elapsed := a.DecodeCP16Time2a()
	var t CP56Time2a
	switch a.Type {
	case MEpTb1:
		t.CP24Time2a = a.DecodeCP24Time2a()
	case MEpTe1:
		t = a.DecodeCP56Time2a()
	}
	return PackedStartEventsInfo{Ioa: ioa, Events: events, Qdp: qdp, Elapsed: elapsed, Time: t}
}

// PackedOutputCircuitInfoInfo is a packed output-circuit-information
// report of protection equipment.
type PackedOutputCircuitInfoInfo struct {
	Ioa     IOA
	Oci     OutputCircuitInfo
	Qdp     QualityDescriptorProtection
	Elapsed CP16Time2a
	Time    CP56Time2a
}

func packedOutputCircuitInfo(c Connect, typeID TypeID, cot CauseOfTransmission, ca CommonAddr, info PackedOutputCircuitInfoInfo) error {
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
	u.AppendBytes(byte(info.Oci), byte(info.Qdp))
	u.AppendCP16Time2a(info.Elapsed)
	switch typeID {
	case MEpTc1:
		u.AppendCP24Time2a(info.Time.CP24Time2a)
	case MEpTf1:
		u.AppendCP56Time2a(info.Time)
	}
	return c.Send(u)
}

// PackedOutputCircuitInfoCP24Time2a reports a packed output-circuit-info
// event with CP24Time2a ([M_EP_TC_1]).
func PackedOutputCircuitInfoCP24Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info PackedOutputCircuitInfoInfo) error {
	return packedOutputCircuitInfo(c, MEpTc1, cot, ca, info)
}

// PackedOutputCircuitInfoCP56Time2a reports a packed output-circuit-info
// event with CP56Time2a ([M_EP_TF_1]).
func PackedOutputCircuitInfoCP56Time2a(c Connect, cot CauseOfTransmission, ca CommonAddr, info PackedOutputCircuitInfoInfo) error {
	return packedOutputCircuitInfo(c, MEpTf1, cot, ca, info)
}

// GetPackedOutputCircuitInfo decodes the single information object of an
// [M_EP_TC_1] or [M_EP_TF_1] ASDU.
func (a *ASDU) GetPackedOutputCircuitInfo() PackedOutputCircuitInfoInfo {
	ioa := a.DecodeInfoObjAddr()
	oci := OutputCircuitInfo(a.DecodeByte())
	qdp := ParseQualityDescriptorProtection(a.DecodeByte())
	elapsed := a.DecodeCP16Time2a()
	var t CP56Time2a
	switch a.Type {
	case MEpTc1:
		t.CP24Time2a = a.DecodeCP24Time2a()
	case MEpTf1:
		t = a.DecodeCP56Time2a()
	}
	return PackedOutputCircuitInfoInfo{Ioa: ioa, Oci: oci, Qdp: qdp, Elapsed: elapsed, Time: t}
}

// PackedSinglePointWithSCDInfo packs 16 consecutive single-point statuses
// with a parallel change-detection mask ([M_PS_NA_1]).
type PackedSinglePointWithSCDInfo struct {
	Ioa IOA
	Scd StatusAndChangeDetection
	Qds QualityDescriptor
}

// PackedSinglePointWithSCD reports a packed single-point-with-SCD value.
func PackedSinglePointWithSCD(c Connect, isSequence bool, cot CauseOfTransmission, ca CommonAddr, infos ...PackedSinglePointWithSCDInfo) error {
	if err := checkValid(c, MPsNa1, isSequence, len(infos)); err != nil {
		return err
	}
	u := NewASDU(c.Params(), newIdentifier(c, MPsNa1, isSequence, cot, ca))
	if err := u.SetVariableNumber(len(infos)); err != nil {
		return err
	}
	once := false
	for _, v := range infos {
		if !isSequence || !once {
			once = true
			if err := u.AppendInfoObjAddr(v.Ioa); err != nil {
				return err
			}
		}
		enc := v.Scd.encode()
		u.AppendBytes(enc[0], enc[1], enc[2], enc[3], byte(v.Qds))
	}
	return c.Send(u)
}

// GetPackedSinglePointWithSCD decodes the information objects of an
// [M_PS_NA_1] ASDU.
func (a *ASDU) GetPackedSinglePointWithSCD() []PackedSinglePointWithSCDInfo {
	out := make([]PackedSinglePointWithSCDInfo, 0, a.Variable.Number)
	var ioa IOA
	for i := 0; i < int(a.Variable.Number); i++ {
		if !a.Variable.IsSequence || i == 0 {
			ioa = a.DecodeInfoObjAddr()
		} else {
			ioa++
		}
		scd := parseStatusAndChangeDetection(a.infoObj[:4])
		a.infoObj = a.infoObj[4:]
		qds := ParseQualityDescriptor(a.DecodeByte())
		out = append(out, PackedSinglePointWithSCDInfo{Ioa: ioa, Scd: scd, Qds: qds})
	}
	return out
}

// EndOfInitialization reports that the outstation has finished
// initializing ([M_EI_NA_1]); the standard fixes its cause of
// transmission to CotInit.
func EndOfInitialization(c Connect, ca CommonAddr, ioa IOA, coi CauseOfInitial) error {
	if err := checkValid(c, MEiNa1, false, 1); err != nil {
		return err
	}
	cot := CauseOfTransmission{Cause: CotInit}
	u := NewASDU(c.Params(), newIdentifier(c, MEiNa1, false, cot, ca))
	if err := u.SetVariableNumber(1); err != nil {
		return err
	}
	if err := u.AppendInfoObjAddr(ioa); err != nil {
		return err
	}
	u.AppendBytes(coi.value())
	return c.Send(u)
}

// GetEndOfInitialization decodes the single information object of an
// [M_EI_NA_1] ASDU.
func (a *ASDU) GetEndOfInitialization() (IOA, CauseOfInitial) {
	return a.DecodeInfoObjAddr(), parseCauseOfInitial(a.DecodeByte())
}
