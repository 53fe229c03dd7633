package cs104

import (
	"fmt"
	"time"

	"gopkg.in/ini.v1"

	"github.com/tjeske/go-iec60870/asdu"
)

// Station configuration files keep the CS104 timing window and the
// application-layer sizing parameters next to each other:
//
//	[cs104]
//	connect_timeout_t0   = 30s
//	send_unack_limit_k   = 12
//	send_unack_timeout_t1 = 15s
//	recv_unack_limit_w   = 8
//	recv_unack_timeout_t2 = 10s
//	idle_timeout_t3      = 20s
//
//	[asdu]
//	cause_size            = 1
//	originator_address    = 0
//	common_address_size   = 2
//	info_obj_address_size = 3
//	max_asdu_size         = 249
//
// Absent keys keep their standard defaults.

type iniCS104 struct {
	ConnectTimeoutT0   time.Duration `ini:"connect_timeout_t0"`
	SendUnAckLimitK    uint16        `ini:"send_unack_limit_k"`
	SendUnAckTimeoutT1 time.Duration `ini:"send_unack_timeout_t1"`
	RecvUnAckLimitW    uint16        `ini:"recv_unack_limit_w"`
	RecvUnAckTimeoutT2 time.Duration `ini:"recv_unack_timeout_t2"`
	IdleTimeoutT3      time.Duration `ini:"idle_timeout_t3"`
}

type iniASDU struct {
	CauseSize          int   `ini:"cause_size"`
	OriginatorAddress  uint8 `ini:"originator_address"`
	CommonAddressSize  int   `ini:"common_address_size"`
	InfoObjAddressSize int   `ini:"info_obj_address_size"`
	MaxAsduSize        int   `ini:"max_asdu_size"`
}

// LoadConfig reads a station configuration file and returns the CS104
// parameter set plus the application-layer sizing parameters, both
// validated (defaults applied for anything the file leaves out).
func LoadConfig(path string) (Config, *asdu.Params, error) {
	f, err := ini.Load(path)
	if err != nil {
		return Config{}, nil, fmt.Errorf("cs104: load config: %w", err)
	}

	var c104 iniCS104
	if err := f.Section("cs104").MapTo(&c104); err != nil {
		return Config{}, nil, fmt.Errorf("cs104: section [cs104]: %w", err)
	}
	cfg := Config{
		ConnectTimeout0:   c104.ConnectTimeoutT0,
		SendUnAckLimitK:   c104.SendUnAckLimitK,
		SendUnAckTimeout1: c104.SendUnAckTimeoutT1,
		RecvUnAckLimitW:   c104.RecvUnAckLimitW,
		RecvUnAckTimeout2: c104.RecvUnAckTimeoutT2,
		IdleTimeout3:      c104.IdleTimeoutT3,
	}
	if err := cfg.Valid(); err != nil {
		return Config{}, nil, err
	}

	ap := iniASDU{
		CauseSize:          1,
		CommonAddressSize:  2,
		InfoObjAddressSize: 3,
		MaxAsduSize:        249,
	}
	if err := f.Section("asdu").MapTo(&ap); err != nil {
		return Config{}, nil, fmt.Errorf("cs104: section [asdu]: %w", err)
	}
	params := &asdu.Params{
		CauseSize:       ap.CauseSize,
		OriginAddr:      asdu.OriginAddr(ap.OriginatorAddress),
		CommonAddrSize:  ap.CommonAddressSize,
		InfoObjAddrSize: ap.InfoObjAddressSize,
		MaxAsduSize:     ap.MaxAsduSize,
	}
	if err := params.Valid(); err != nil {
		return Config{}, nil, err
	}
	return cfg, params, nil
}
