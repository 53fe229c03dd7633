package cs101

import "errors"

// Errors returned by frame parsing and the link-layer state machines.
var (
	ErrFrameTooShort       = errors.New("cs101: frame too short")
	ErrBadChecksum         = errors.New("cs101: checksum mismatch")
	ErrLengthMismatch      = errors.New("cs101: variable frame length fields disagree")
	ErrUnexpectedStartByte = errors.New("cs101: unexpected start byte")
	ErrUnknownFunctionCode = errors.New("cs101: unknown function code")
	ErrBroadcastNotAllowed = errors.New("cs101: broadcast address only valid with function code 4")
	ErrAddressFit          = errors.New("cs101: link address does not fit configured width")
	ErrLinkNotReady        = errors.New("cs101: link layer not in LINK_LAYERS_AVAILABLE")
)
