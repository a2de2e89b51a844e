package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/config"
)

func TestConfigValidation(t *testing.T) {
	t.Run("valid_default_config", func(t *testing.T) {
		assert.NoError(t, config.NewDefaultConfig().Validate())
	})

	tests := []struct {
		name      string
		configMod func(*config.Config)
		wantErr   error
	}{
		{
			name: "invalid_api_port_zero",
			configMod: func(c *config.Config) {
				c.APIPort = 0
			},
			wantErr: config.ErrInvalidAPIPort,
		},
		{
			name: "invalid_api_port_too_high",
			configMod: func(c *config.Config) {
				c.APIPort = 70000
			},
			wantErr: config.ErrInvalidAPIPort,
		},
		{
			name: "zero_concurrency",
			configMod: func(c *config.Config) {
				c.MaxConcurrentWorkflows = 0
			},
			wantErr: config.ErrInvalidConcurrency,
		},
		{
			name: "zero_step_timeout",
			configMod: func(c *config.Config) {
				c.DefaultStepTimeout = 0
			},
			wantErr: config.ErrInvalidStepTimeout,
		},
		{
			name: "zero_audit_capacity",
			configMod: func(c *config.Config) {
				c.Audit.MaxEntries = 0
			},
			wantErr: config.ErrInvalidAuditCapacity,
		},
		{
			name: "all_zero_engagement_weights",
			configMod: func(c *config.Config) {
				c.Engagement = config.EngagementConfig{}
			},
			wantErr: config.ErrInvalidWeights,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewDefaultConfig()
			tt.configMod(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := config.NewDefaultConfig()

	assert.Equal(t, config.DefaultAPIPort, cfg.APIPort)
	assert.Equal(t, "0.0.0.0", cfg.APIHost)
	assert.Equal(t, config.DefaultMaxConcurrent, cfg.MaxConcurrentWorkflows)
	assert.Equal(t, config.DefaultStepTimeout, cfg.DefaultStepTimeout)
	assert.Equal(t, config.DefaultShutdownWait, cfg.ShutdownTimeout)
	assert.Equal(t, config.DefaultRedisEndpoint, cfg.Audit.Addr)
	assert.Equal(t, "mem://", cfg.Archive.BucketURL)
	assert.Equal(t, config.DefaultResponseWeight,
		cfg.Engagement.ResponseWeight)
	assert.Equal(t, config.DefaultCompletionWeight,
		cfg.Engagement.CompletionWeight)
	assert.Equal(t, config.DefaultSatisfactionWeight,
		cfg.Engagement.SatisfactionWeight)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("API_HOST", "127.0.0.1")
	t.Setenv("MAX_CONCURRENT_WORKFLOWS", "25")
	t.Setenv("STEP_TIMEOUT_MINUTES", "45")
	t.Setenv("AUDIT_REDIS_ADDR", "redis:6380")
	t.Setenv("ENGAGEMENT_RESPONSE_WEIGHT", "0.7")
	t.Setenv("ENGAGEMENT_SATISFACTION_WEIGHT", "0")

	cfg := config.NewDefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, 9090, cfg.APIPort)
	assert.Equal(t, "127.0.0.1", cfg.APIHost)
	assert.Equal(t, 25, cfg.MaxConcurrentWorkflows)
	assert.Equal(t, 45*time.Minute, cfg.DefaultStepTimeout)
	assert.Equal(t, "redis:6380", cfg.Audit.Addr)
	assert.Equal(t, 0.7, cfg.Engagement.ResponseWeight)
	assert.Equal(t, config.DefaultCompletionWeight,
		cfg.Engagement.CompletionWeight)
	assert.Equal(t, 0.0, cfg.Engagement.SatisfactionWeight)
}

func TestLoadFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("API_PORT", "not-a-port")
	cfg := config.NewDefaultConfig()
	assert.Error(t, cfg.LoadFromEnv())

	t.Setenv("API_PORT", "70000")
	cfg = config.NewDefaultConfig()
	assert.Error(t, cfg.LoadFromEnv())

	t.Setenv("API_PORT", "9090")
	t.Setenv("ENGAGEMENT_RESPONSE_WEIGHT", "1.5")
	cfg = config.NewDefaultConfig()
	assert.Error(t, cfg.LoadFromEnv())
}
