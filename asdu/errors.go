package asdu

import "errors"

var (
	// ErrParam is returned when a Params field carries a value outside the
	// ranges the standard allows.
	ErrParam = errors.New("asdu: invalid params")
	// ErrInfoObjAddrFit is returned when an information object address does
	// not fit in Params.InfoObjAddrSize bytes.
	ErrInfoObjAddrFit = errors.New("asdu: information object address does not fit configured width")
	// ErrCommonAddrFit is returned when a common address does not fit in
	// Params.CommonAddrSize bytes.
	ErrCommonAddrFit = errors.New("asdu: common address does not fit configured width")
	// ErrOriginAddrFit is returned when an originator address is supplied
	// but Params.CauseSize == 1, so there is no room for it on the wire.
	ErrOriginAddrFit = errors.New("asdu: originator address requires a 2-byte cause of transmission")
	// ErrTypeIdentifierUnknown is returned by codecs that look up a TypeID
	// in infoObjSize and find nothing registered.
	ErrTypeIdentifierUnknown = errors.New("asdu: unknown type identification")
	// ErrTooManyObjects is returned when a builder's information objects
	// would push the VSQ element count past 127, or the encoded ASDU past
	// Params.MaxAsduSize.
	ErrTooManyObjects = errors.New("asdu: too many information objects for one ASDU")
	// ErrCmdCause is returned when a control-direction command is built
	// with a cause of transmission other than activation or deactivation.
	ErrCmdCause = errors.New("asdu: command cause of transmission must be activation or deactivation")
)
