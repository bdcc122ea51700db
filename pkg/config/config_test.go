package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_TestEnv(t *testing.T) {
	t.Setenv("APP_ENV", Test)

	cfg, err := LoadConfig()
	assert.NoError(t, err)

	assert.True(t, cfg.Soak.Enabled)
	assert.False(t, cfg.Soak.Api.Enabled)
	assert.Equal(t, "spsc-soak-test", cfg.Soak.Api.Name)
	assert.Equal(t, 1024, cfg.Soak.Buffer.Capacity)
	assert.Equal(t, uint64(100000), cfg.Soak.Load.Elements)
	assert.Equal(t, 1, cfg.Soak.Load.Batch.Min)
	assert.Equal(t, 256, cfg.Soak.Load.Batch.Max)
	assert.Equal(t, 0.1, cfg.Soak.Load.SingleRatio)
	assert.Equal(t, time.Second, cfg.Soak.StatsInterval.Std())
	assert.Equal(t, time.Second, cfg.Soak.Probe.Timeout.Std())
}

func TestLoadConfig_UnknownEnv(t *testing.T) {
	t.Setenv("APP_ENV", "staging")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate_Defaults(t *testing.T) {
	cfg := &Soak{}
	assert.NoError(t, cfg.validate())
	assert.Equal(t, 1, cfg.Soak.Load.Batch.Min)
	assert.Equal(t, 1, cfg.Soak.Load.Batch.Max)
	assert.Equal(t, 5*time.Second, cfg.Soak.StatsInterval.Std())
	assert.Equal(t, 5*time.Second, cfg.Soak.Probe.Timeout.Std())
}

func TestValidate_RateWithoutLimit(t *testing.T) {
	cfg := &Soak{}
	cfg.Soak.Rate.Enabled = true
	assert.Error(t, cfg.validate())
}
