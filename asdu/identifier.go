package asdu

import "fmt"

// TypeID is the ASDU type identification, the first octet of every ASDU.
// See companion standard 101, subclass 7.2.1.
// <0> unused, <1..127> standard definitions, <128..255> private/special use.
type TypeID uint8

// The standard ASDU type identifications used by the process information,
// command, system and parameter groups. Mnemonics follow the companion
// standard's naming (M_xx monitor direction, C_xx control direction,
// P_xx parameter, F_xx file transfer).
const (
	_ TypeID = iota
	MSpNa1    // 1: single-point information
	MSpTa1    // 2: single-point information with CP24Time2a
	MDpNa1    // 3: double-point information
	MDpTa1    // 4: double-point information with CP24Time2a
	MStNa1    // 5: step position information
	MStTa1    // 6: step position information with CP24Time2a
	MBoNa1    // 7: bitstring of 32 bit
	MBoTa1    // 8: bitstring of 32 bit with CP24Time2a
	MMeNa1    // 9: measured value, normalized value
	MMeTa1    // 10: measured value, normalized value with CP24Time2a
	MMeNb1    // 11: measured value, scaled value
	MMeTb1    // 12: measured value, scaled value with CP24Time2a
	MMeNc1    // 13: measured value, short floating point
	MMeTc1    // 14: measured value, short floating point with CP24Time2a
	MItNa1    // 15: integrated totals
	MItTa1    // 16: integrated totals with CP24Time2a
	MEpTa1    // 17: event of protection equipment with CP16Time2a
	MEpTb1    // 18: packed start events of protection equipment with CP16Time2a
	MEpTc1    // 19: packed output circuit information of protection equipment with CP16Time2a
	MPsNa1    // 20: packed single-point information with status change detection
	MMeNd1    // 21: measured value, normalized value without quality descriptor
	_
	_
	_
	_
	_
	_
	_
	_
	MSpTb1 // 30: single-point information with CP56Time2a
	MDpTb1 // 31: double-point information with CP56Time2a
	MStTb1 // 32: step position information with CP56Time2a
	MBoTb1 // 33: bitstring of 32 bit with CP56Time2a
	MMeTd1 // 34: measured value, normalized value with CP56Time2a
	MMeTe1 // 35: measured value, scaled value with CP56Time2a
	MMeTf1 // 36: measured value, short floating point with CP56Time2a
	MItTb1 // 37: integrated totals with CP56Time2a
	MEpTd1 // 38: event of protection equipment with CP56Time2a
	MEpTe1 // 39: packed start events of protection equipment with CP56Time2a
	MEpTf1 // 40: packed output circuit information of protection equipment with CP56Time2a
	_
	_
	_
	_
	CScNa1 // 45: single command
	CDcNa1 // 46: double command
	CRcNa1 // 47: regulating step command
	CSeNa1 // 48: set-point command, normalized value
	CSeNb1 // 49: set-point command, scaled value
	CSeNc1 // 50: set-point command, short floating point
	CBoNa1 // 51: bitstring of 32 bit command
	_
	_
	_
	_
	_
	_
	CScTa1 // 58: single command with CP56Time2a
	CDcTa1 // 59: double command with CP56Time2a
	CRcTa1 // 60: regulating step command with CP56Time2a
	CSeTa1 // 61: set-point command with CP56Time2a, normalized value
	CSeTb1 // 62: set-point command with CP56Time2a, scaled value
	CSeTc1 // 63: set-point command with CP56Time2a, short floating point
	CBoTa1 // 64: bitstring of 32 bit command with CP56Time2a
	_
	_
	_
	_
	_
	MEiNa1 // 70: end of initialization
)

// System information in control direction and parameter commands.
const (
	CIcNa1 TypeID = 100 + iota // 100: interrogation command
	CCiNa1                     // 101: counter interrogation command
	CRdNa1                     // 102: read command
	CCsNa1                     // 103: clock synchronization command
	CTsNa1                     // 104: test command
	CRpNa1                     // 105: reset process command
	CCdNa1                     // 106: delay acquisition command
	CTsTa1                     // 107: test command with CP56Time2a
)

// Parameter commands in control direction.
const (
	PMeNa1 TypeID = 110 + iota // 110: parameter of measured values, normalized value
	PMeNb1                     // 111: parameter of measured values, scaled value
	PMeNc1                     // 112: parameter of measured values, short floating point
	PAcNa1                     // 113: parameter activation
)

// infoObjSize maps a TypeID to the size, in bytes, of the information
// element payload that follows the information object address - the
// canonical authority for every offset computed by the codec and by
// sequence-addressed element extraction. See DESIGN.md.
var infoObjSize = map[TypeID]int{
	MSpNa1: 1, MSpTa1: 4, MDpNa1: 1, MDpTa1: 4,
	MStNa1: 2, MStTa1: 5, MBoNa1: 5, MBoTa1: 8,
	MMeNa1: 3, MMeTa1: 6, MMeNb1: 3, MMeTb1: 6,
	MMeNc1: 5, MMeTc1: 8, MItNa1: 5, MItTa1: 8,
	MEpTa1: 6, MEpTb1: 7, MEpTc1: 7, MPsNa1: 5, MMeNd1: 2,

	MSpTb1: 8, MDpTb1: 8, MStTb1: 9, MBoTb1: 12,
	MMeTd1: 10, MMeTe1: 10, MMeTf1: 12, MItTb1: 12,
	MEpTd1: 10, MEpTe1: 11, MEpTf1: 11,

	CScNa1: 1, CDcNa1: 1, CRcNa1: 1, CSeNa1: 3, CSeNb1: 3, CSeNc1: 5, CBoNa1: 4,
	CScTa1: 8, CDcTa1: 8, CRcTa1: 8, CSeTa1: 10, CSeTb1: 10, CSeTc1: 12, CBoTa1: 11,

	MEiNa1: 1,

	CIcNa1: 1, CCiNa1: 1, CRdNa1: 0, CCsNa1: 7, CTsNa1: 2, CRpNa1: 1, CCdNa1: 2, CTsTa1: 9,

	PMeNa1: 3, PMeNb1: 3, PMeNc1: 5, PAcNa1: 1,
}

// InfoObjSize looks up the canonical payload size (excluding the
// information object address) for a TypeID.
func InfoObjSize(id TypeID) (int, bool) {
	n, ok := infoObjSize[id]
	return n, ok
}

func (t TypeID) String() string {
	if name, ok := typeIDNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TypeID(%d)", uint8(t))
}

var typeIDNames = map[TypeID]string{
	MSpNa1: "M_SP_NA_1", MSpTa1: "M_SP_TA_1", MDpNa1: "M_DP_NA_1", MDpTa1: "M_DP_TA_1",
	MStNa1: "M_ST_NA_1", MStTa1: "M_ST_TA_1", MBoNa1: "M_BO_NA_1", MBoTa1: "M_BO_TA_1",
	MMeNa1: "M_ME_NA_1", MMeTa1: "M_ME_TA_1", MMeNb1: "M_ME_NB_1", MMeTb1: "M_ME_TB_1",
	MMeNc1: "M_ME_NC_1", MMeTc1: "M_ME_TC_1", MItNa1: "M_IT_NA_1", MItTa1: "M_IT_TA_1",
	MEpTa1: "M_EP_TA_1", MEpTb1: "M_EP_TB_1", MEpTc1: "M_EP_TC_1", MPsNa1: "M_PS_NA_1", MMeNd1: "M_ME_ND_1",
	MSpTb1: "M_SP_TB_1", MDpTb1: "M_DP_TB_1", MStTb1: "M_ST_TB_1", MBoTb1: "M_BO_TB_1",
	MMeTd1: "M_ME_TD_1", MMeTe1: "M_ME_TE_1", MMeTf1: "M_ME_TF_1", MItTb1: "M_IT_TB_1",
	MEpTd1: "M_EP_TD_1", MEpTe1: "M_EP_TE_1", MEpTf1: "M_EP_TF_1",
	CScNa1: "C_SC_NA_1", CDcNa1: "C_DC_NA_1", CRcNa1: "C_RC_NA_1",
	CSeNa1: "C_SE_NA_1", CSeNb1: "C_SE_NB_1", CSeNc1: "C_SE_NC_1", CBoNa1: "C_BO_NA_1",
	CScTa1: "C_SC_TA_1", CDcTa1: "C_DC_TA_1", CRcTa1: "C_RC_TA_1",
	CSeTa1: "C_SE_TA_1", CSeTb1: "C_SE_TB_1", CSeTc1: "C_SE_TC_1", CBoTa1: "C_BO_TA_1",
	MEiNa1: "M_EI_NA_1",
	CIcNa1: "C_IC_NA_1", CCiNa1: "C_CI_NA_1", CRdNa1: "C_RD_NA_1", CCsNa1: "C_CS_NA_1",
	CTsNa1: "C_TS_NA_1", CRpNa1: "C_RP_NA_1", CCdNa1: "C_CD_NA_1", CTsTa1: "C_TS_TA_1",
	PMeNa1: "P_ME_NA_1", PMeNb1: "P_ME_NB_1", PMeNc1: "P_ME_NC_1", PAcNa1: "P_AC_NA_1",
}

// IOA is the information object address. Its width on the wire is
// controlled by Params.InfoObjAddrSize. 0 means "irrelevant/unused".
type IOA uint32

// COT is the cause of transmission, the 6-bit code (bits 0..5 of the
// third ASDU header byte) that routes an ASDU to the correct handler.
// See companion standard 101, subclass 7.2.3.
type COT uint8

// Standard causes of transmission.
const (
	CotUnused   COT = iota // 0: undefined
	CotPeriodic            // 1: periodic, cyclic
	CotBack                // 2: background scan
	CotSpt                 // 3: spontaneous
	CotInit                // 4: initialized
	CotReq                 // 5: request or requested
	CotAct                 // 6: activation
	CotActCon              // 7: activation confirmation
	CotDeact               // 8: deactivation
	CotDeactCon            // 9: deactivation confirmation
	CotActTerm             // 10: activation termination
	CotRetRem              // 11: return information caused by a remote command
	CotRetLoc              // 12: return information caused by a local command
	CotFile                // 13: file transfer
	_
	_
	_
	_
	_
	_
	CotInrogen // 20: interrogated by general interrogation
	CotInro1
	CotInro2
	CotInro3
	CotInro4
	CotInro5
	CotInro6
	CotInro7
	CotInro8
	CotInro9
	CotInro10
	CotInro11
	CotInro12
	CotInro13
	CotInro14
	CotInro15
	CotInro16   // 36
	CotReqcogen // 37: interrogated by counter general interrogation
	CotReqco1
	CotReqco2
	CotReqco3
	CotReqco4 // 41
	_
	_
	CotUnType     // 44: unknown type identification
	CotUnCause    // 45: unknown cause of transmission
	CotUnAsduAddr // 46: unknown common address of ASDU
	CotUnObjAddr  // 47: unknown information object address
)

// CauseOfTransmission is the full third (and, when CauseSize == 2, fourth)
// ASDU header byte: test flag, positive/negative flag and the cause code.
type CauseOfTransmission struct {
	IsTest     bool
	IsNegative bool
	Cause      COT
}

func (c CauseOfTransmission) value() byte {
	v := byte(c.Cause) & 0x3f
	if c.IsNegative {
		v |= 0x40
	}
	if c.IsTest {
		v |= 0x80
	}
	return v
}

func parseCauseOfTransmission(b byte) CauseOfTransmission {
	return CauseOfTransmission{
		IsTest:     b&0x80 != 0,
		IsNegative: b&0x40 != 0,
		Cause:      COT(b & 0x3f),
	}
}

// OriginAddr is the originator address, present only when Params.CauseSize
// == 2. <0> means unused.
type OriginAddr uint8

// CommonAddr is the station (or broadcast) address. Width is controlled
// by Params.CommonAddrSize.
type CommonAddr uint16

// GlobalCommonAddr is the broadcast common address: 255 for a one-byte
// field, 65535 for a two-byte field. Use is restricted to general/counter
// interrogation, clock synchronization and reset process.
const GlobalCommonAddr CommonAddr = 0xffff

// vsq is the variable structure qualifier: the SQ bit plus the 7-bit
// element/object count. See companion standard 101, subclass 7.2.2.
type vsq struct {
	IsSequence bool
	Number     uint8 // 1..127
}

func (v vsq) value() byte {
	n := v.Number & 0x7f
	if v.IsSequence {
		n |= 0x80
	}
	return n
}

func parseVSQ(b byte) vsq {
	return vsq{IsSequence: b&0x80 != 0, Number: b & 0x7f}
}
