package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"ENVIRONMENT", "PORT", "LOG_LEVEL", "ALLOWED_ORIGINS", "POW_DIFFICULTY",
	"CONNECT_RATE", "CONNECT_BURST", "MESSAGE_RATE", "MESSAGE_BURST",
	"MAX_MESSAGE_BYTES", "SEND_QUEUE_SIZE",
}

func clearEnv(t *testing.T) {
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.Port)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, 0, cfg.PowDifficulty)
	assert.Equal(t, 5.0, cfg.MessageRate)
	assert.Equal(t, 10, cfg.MessageBurst)
	assert.Equal(t, 2000, cfg.MaxMessageBytes)
	assert.Equal(t, 256, cfg.SendQueueSize)
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("POW_DIFFICULTY", "3")
	t.Setenv("MESSAGE_RATE", "0.5")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 3, cfg.PowDifficulty)
	assert.Equal(t, 0.5, cfg.MessageRate)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"bad port":            {"PORT": "eighty"},
		"privileged port":     {"PORT": "80"},
		"prod without origin": {"ENVIRONMENT": "production"},
		"difficulty too high": {"POW_DIFFICULTY": "40"},
		"zero burst":          {"MESSAGE_BURST": "0"},
		"bad rate":            {"CONNECT_RATE": "fast"},
		"zero queue":          {"SEND_QUEUE_SIZE": "0"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
