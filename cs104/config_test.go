package cs104

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.Valid())
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"t0 too large", func(c *Config) { c.ConnectTimeout0 = 256 * time.Second }},
		{"t1 too small", func(c *Config) { c.SendUnAckTimeout1 = 500 * time.Millisecond }},
		{"t2 too large", func(c *Config) { c.RecvUnAckTimeout2 = 256 * time.Second }},
		{"t3 too large", func(c *Config) { c.IdleTimeout3 = 49 * time.Hour }},
		{"t2 not below t1", func(c *Config) {
			c.SendUnAckTimeout1 = 10 * time.Second
			c.RecvUnAckTimeout2 = 10 * time.Second
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Valid())
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "station.ini")
	content := `
[cs104]
send_unack_limit_k    = 24
send_unack_timeout_t1 = 12s
recv_unack_limit_w    = 16
recv_unack_timeout_t2 = 8s

[asdu]
cause_size            = 2
common_address_size   = 2
info_obj_address_size = 3
max_asdu_size         = 249
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, params, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, uint16(24), cfg.SendUnAckLimitK)
	assert.Equal(t, 12*time.Second, cfg.SendUnAckTimeout1)
	assert.Equal(t, uint16(16), cfg.RecvUnAckLimitW)
	assert.Equal(t, 8*time.Second, cfg.RecvUnAckTimeout2)
	// Unset keys keep their standard defaults.
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout0)
	assert.Equal(t, 20*time.Second, cfg.IdleTimeout3)

	assert.Equal(t, 2, params.CauseSize)
	assert.Equal(t, 3, params.InfoObjAddrSize)
}

func TestLoadConfigDefaultsOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.ini")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	cfg, params, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 1, params.CauseSize)
	assert.Equal(t, 249, params.MaxAsduSize)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.ini")
	require.NoError(t, os.WriteFile(path, []byte("[cs104]\nrecv_unack_timeout_t2 = 20s\n"), 0o600))
	_, _, err := LoadConfig(path)
	assert.Error(t, err, "t2 above t1 must be rejected")
}
