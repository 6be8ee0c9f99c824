package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dvmodel/dvctl/internal/flows"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "dvctl", cfg.Platform.Caller)
	assert.Equal(t, 4, cfg.Flows.Concurrency)
	assert.Equal(t, `"@hourly"`, cfg.Flows.SourceSchedule)
	assert.Equal(t, "timedelta(hours=1)", cfg.Flows.BVSchedule)
	assert.Equal(t, flows.DefaultSettings(), cfg.Flows.Settings())

	timeout, err := cfg.RequestTimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, timeout)
}

func TestRequestTimeout(t *testing.T) {
	tests := []struct {
		value   string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"30s", 30 * time.Second, false},
		{"1h30m", 90 * time.Minute, false},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cfg := &Config{Platform: PlatformConfig{Timeout: tt.value}}
			got, err := cfg.RequestTimeout()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarshal_OmitsPassword(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Platform.URL = "https://vault.example.com"
	cfg.Platform.Password = "hunter2"

	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
	assert.Equal(t, "hunter2", cfg.Platform.Password, "receiver is not modified")

	var back Config
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, "https://vault.example.com", back.Platform.URL)
	assert.Equal(t, cfg.Flows, back.Flows)
}
