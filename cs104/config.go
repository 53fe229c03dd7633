package cs104

import (
	"errors"
	"time"
)

const (
	// Port is the IANA registered TCP port for plain CS104.
	Port = 2404
	// PortSecure is the IANA registered TCP port for CS104 over TLS
	// (IEC 62351-3/-4 profile).
	PortSecure = 19998
)

// Configuration ranges fixed by companion standard 104.
const (
	// t0: connection establishment, range [1, 255] s.
	ConnectTimeout0Min = 1 * time.Second
	ConnectTimeout0Max = 255 * time.Second

	// t1: send-or-test confirmation, range [1, 255] s. Figure 18.
	SendUnAckTimeout1Min = 1 * time.Second
	SendUnAckTimeout1Max = 255 * time.Second

	// t2: receive confirmation, range [1, 255] s, must stay below t1.
	// Figure 10.
	RecvUnAckTimeout2Min = 1 * time.Second
	RecvUnAckTimeout2Max = 255 * time.Second

	// t3: idle test-frame trigger, range [1 s, 48 h]. Subclause 5.2.
	IdleTimeout3Min = 1 * time.Second
	IdleTimeout3Max = 48 * time.Hour

	// k: outstanding unacknowledged I-frames, range [1, 32767].
	SendUnAckLimitKMin = 1
	SendUnAckLimitKMax = 32767

	// w: received I-frames before a forced acknowledgement, range
	// [1, 32767]; the standard recommends w <= 2/3 k.
	RecvUnAckLimitWMin = 1
	RecvUnAckLimitWMax = 32767
)

// Config is the CS104 timing and window parameter set of one
// connection. The zero value of any field selects the standard's
// default when Valid is applied.
type Config struct {
	// ConnectTimeout0 ("t0") bounds TCP connection establishment.
	// Default 30s.
	ConnectTimeout0 time.Duration

	// SendUnAckLimitK ("k") is the number of I-frames that may remain
	// unacknowledged before the send path blocks. Default 12.
	SendUnAckLimitK uint16

	// SendUnAckTimeout1 ("t1") bounds how long an I-frame or a U
	// activation may stay unconfirmed before the connection is
	// closed. Default 15s.
	SendUnAckTimeout1 time.Duration

	// RecvUnAckLimitW ("w") forces an S-frame acknowledgement after
	// this many received I-frames. Default 8.
	RecvUnAckLimitW uint16

	// RecvUnAckTimeout2 ("t2") bounds how long received I-frames may
	// stay unconfirmed before an S-frame is sent; must be below t1.
	// Default 10s.
	RecvUnAckTimeout2 time.Duration

	// IdleTimeout3 ("t3") is the idle time that triggers a TESTFR
	// keepalive. Default 20s.
	IdleTimeout3 time.Duration
}

// DefaultConfig returns the standard's default parameter set.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout0:   30 * time.Second,
		SendUnAckLimitK:   12,
		SendUnAckTimeout1: 15 * time.Second,
		RecvUnAckLimitW:   8,
		RecvUnAckTimeout2: 10 * time.Second,
		IdleTimeout3:      20 * time.Second,
	}
}

// Valid applies the standard's default for each unset field and
// range-checks the rest, including the t2 < t1 constraint.
func (c *Config) Valid() error {
	if c == nil {
		return errors.New("cs104: nil config")
	}

	if c.ConnectTimeout0 == 0 {
		c.ConnectTimeout0 = 30 * time.Second
	} else if c.ConnectTimeout0 < ConnectTimeout0Min || c.ConnectTimeout0 > ConnectTimeout0Max {
		return errors.New(`cs104: ConnectTimeout0 "t0" not in [1, 255]s`)
	}

	if c.SendUnAckLimitK == 0 {
		c.SendUnAckLimitK = 12
	} else if c.SendUnAckLimitK < SendUnAckLimitKMin || c.SendUnAckLimitK > SendUnAckLimitKMax {
		return errors.New(`cs104: SendUnAckLimitK "k" not in [1, 32767]`)
	}

	if c.SendUnAckTimeout1 == 0 {
		c.SendUnAckTimeout1 = 15 * time.Second
	} else if c.SendUnAckTimeout1 < SendUnAckTimeout1Min || c.SendUnAckTimeout1 > SendUnAckTimeout1Max {
		return errors.New(`cs104: SendUnAckTimeout1 "t1" not in [1, 255]s`)
	}

	if c.RecvUnAckLimitW == 0 {
		c.RecvUnAckLimitW = 8
	} else if c.RecvUnAckLimitW < RecvUnAckLimitWMin || c.RecvUnAckLimitW > RecvUnAckLimitWMax {
		return errors.New(`cs104: RecvUnAckLimitW "w" not in [1, 32767]`)
	}

	if c.RecvUnAckTimeout2 == 0 {
		c.RecvUnAckTimeout2 = 10 * time.Second
	} else if c.RecvUnAckTimeout2 < RecvUnAckTimeout2Min || c.RecvUnAckTimeout2 > RecvUnAckTimeout2Max {
		return errors.New(`cs104: RecvUnAckTimeout2 "t2" not in [1, 255]s`)
	}

	if c.IdleTimeout3 == 0 {
		c.IdleTimeout3 = 20 * time.Second
	} else if c.IdleTimeout3 < IdleTimeout3Min || c.IdleTimeout3 > IdleTimeout3Max {
		return errors.New(`cs104: IdleTimeout3 "t3" not in [1s, 48h]`)
	}

	if c.RecvUnAckTimeout2 >= c.SendUnAckTimeout1 {
		return errors.New(`cs104: RecvUnAckTimeout2 "t2" must be below SendUnAckTimeout1 "t1"`)
	}
	return nil
}
