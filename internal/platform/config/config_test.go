package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.False(t, cfg.RateLimit.Disabled)
	assert.Empty(t, cfg.Audit.KafkaBrokers)
	assert.Equal(t, "risk-profile-audit", cfg.Audit.Topic)
	assert.Equal(t, 1.0, cfg.Audit.OpsSampleRate)
	assert.Equal(t, "riskprofile", cfg.Telemetry.ServiceName)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("RISK_ADDR", ":9090")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_DISABLED", "true")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, kafka-2:9092,kafka-1:9092,")
	t.Setenv("AUDIT_BUFFER", "0")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 5, cfg.RateLimit.Requests)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.True(t, cfg.RateLimit.Disabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Audit.KafkaBrokers)
	assert.Zero(t, cfg.Audit.Buffer)
}

func TestFromEnvRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unparseable window", "RATE_LIMIT_WINDOW", "soon"},
		{"zero requests", "RATE_LIMIT_REQUESTS", "0"},
		{"unknown log format", "LOG_FORMAT", "xml"},
		{"negative buffer", "AUDIT_BUFFER", "-1"},
		{"sample rate above one", "AUDIT_OPS_SAMPLE_RATE", "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
