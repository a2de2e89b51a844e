package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type (
	// Config holds configuration settings for the orchestrator
	Config struct {
		// API Server
		APIHost  string
		APIPort  int
		LogLevel string

		// Audit Store & Archiving
		Audit   AuditConfig
		Archive ArchiveConfig

		// Outbound Messaging
		Comms CommsConfig

		// Engine
		MaxConcurrentWorkflows int
		DefaultStepTimeout     time.Duration
		DefaultFlowTimeout     time.Duration
		ShutdownTimeout        time.Duration

		// Monitoring
		StalledWarnAfter  time.Duration
		StalledErrorAfter time.Duration
		ReportInterval    time.Duration
		Engagement        EngagementConfig
	}

	// EngagementConfig weights the signals blended into a subject's
	// engagement score
	EngagementConfig struct {
		ResponseWeight     float64
		CompletionWeight   float64
		SatisfactionWeight float64
	}

	// AuditConfig holds Redis audit trail settings
	AuditConfig struct {
		Addr       string
		Password   string
		DB         int
		Prefix     string
		MaxEntries int
		TTL        time.Duration
	}

	// ArchiveConfig holds blob archive settings for terminal executions
	// and generated reports
	ArchiveConfig struct {
		BucketURL string
	}

	// CommsConfig holds outbound gateway endpoints
	CommsConfig struct {
		GatewayURL     string
		ComplianceURL  string
		RequestTimeout time.Duration
	}
)

const (
	DefaultAPIPort = 8080
	DefaultAPIHost = "0.0.0.0"
	MaxTCPPort     = 65535

	DefaultRedisEndpoint = "localhost:6379"
	DefaultRedisDB       = 0
	DefaultRedisPrefix   = "careflow"
	DefaultAuditEntries  = 10_000
	DefaultAuditTTL      = 30 * 24 * time.Hour

	DefaultMaxConcurrent  = 1000
	DefaultStepTimeout    = 30 * time.Minute
	DefaultFlowTimeout    = 72 * time.Hour
	DefaultShutdownWait   = 10 * time.Second
	DefaultCommsTimeout   = 10 * time.Second
	DefaultStalledWarn    = time.Hour
	DefaultStalledError   = 2 * time.Hour
	DefaultReportInterval = 24 * time.Hour

	DefaultResponseWeight     = 0.5
	DefaultCompletionWeight   = 0.3
	DefaultSatisfactionWeight = 0.2

	MaxConcurrentLimit = 1_000_000
	MaxAuditEntries    = 10_000_000
	MaxTimeoutMinutes  = 365 * 24 * 60
)

var (
	ErrInvalidAPIPort       = errors.New("invalid API port")
	ErrInvalidConcurrency   = errors.New("concurrency limit must be positive")
	ErrInvalidStepTimeout   = errors.New("step timeout must be positive")
	ErrInvalidAuditCapacity = errors.New("audit capacity must be positive")
	ErrInvalidWeights       = errors.New(
		"engagement weights must not all be zero")
)

// NewDefaultConfig creates a configuration with sensible defaults for the
// engine, audit store, and monitor
func NewDefaultConfig() *Config {
	return &Config{
		APIPort:  DefaultAPIPort,
		APIHost:  DefaultAPIHost,
		LogLevel: "info",
		Audit: AuditConfig{
			Addr:       DefaultRedisEndpoint,
			DB:         DefaultRedisDB,
			Prefix:     DefaultRedisPrefix,
			MaxEntries: DefaultAuditEntries,
			TTL:        DefaultAuditTTL,
		},
		Archive: ArchiveConfig{
			BucketURL: "mem://",
		},
		Comms: CommsConfig{
			RequestTimeout: DefaultCommsTimeout,
		},
		MaxConcurrentWorkflows: DefaultMaxConcurrent,
		DefaultStepTimeout:     DefaultStepTimeout,
		DefaultFlowTimeout:     DefaultFlowTimeout,
		ShutdownTimeout:        DefaultShutdownWait,
		StalledWarnAfter:       DefaultStalledWarn,
		StalledErrorAfter:      DefaultStalledError,
		ReportInterval:         DefaultReportInterval,
		Engagement: EngagementConfig{
			ResponseWeight:     DefaultResponseWeight,
			CompletionWeight:   DefaultCompletionWeight,
			SatisfactionWeight: DefaultSatisfactionWeight,
		},
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed.
func (c *Config) LoadFromEnv() error {
	if apiHost := os.Getenv("API_HOST"); apiHost != "" {
		c.APIHost = apiHost
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}
	if addr := os.Getenv("AUDIT_REDIS_ADDR"); addr != "" {
		c.Audit.Addr = addr
	}
	if password := os.Getenv("AUDIT_REDIS_PASSWORD"); password != "" {
		c.Audit.Password = password
	}
	if dbStr := os.Getenv("AUDIT_REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			c.Audit.DB = db
		}
	}
	if prefix := os.Getenv("AUDIT_REDIS_PREFIX"); prefix != "" {
		c.Audit.Prefix = prefix
	}
	if bucket := os.Getenv("ARCHIVE_BUCKET_URL"); bucket != "" {
		c.Archive.BucketURL = bucket
	}
	if gateway := os.Getenv("COMMS_GATEWAY_URL"); gateway != "" {
		c.Comms.GatewayURL = gateway
	}
	if compliance := os.Getenv("COMMS_COMPLIANCE_URL"); compliance != "" {
		c.Comms.ComplianceURL = compliance
	}

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt(
		"MAX_CONCURRENT_WORKFLOWS", &c.MaxConcurrentWorkflows,
		0, MaxConcurrentLimit,
	); err != nil {
		return err
	}
	if err := loadEnvInt(
		"AUDIT_MAX_ENTRIES", &c.Audit.MaxEntries, 0, MaxAuditEntries,
	); err != nil {
		return err
	}

	if err := loadEnvMinutes("STEP_TIMEOUT_MINUTES",
		&c.DefaultStepTimeout); err != nil {
		return err
	}
	if err := loadEnvMinutes("FLOW_TIMEOUT_MINUTES",
		&c.DefaultFlowTimeout); err != nil {
		return err
	}
	if err := loadEnvMinutes("STALLED_WARN_MINUTES",
		&c.StalledWarnAfter); err != nil {
		return err
	}
	if err := loadEnvMinutes("STALLED_ERROR_MINUTES",
		&c.StalledErrorAfter); err != nil {
		return err
	}

	if err := loadEnvWeight("ENGAGEMENT_RESPONSE_WEIGHT",
		&c.Engagement.ResponseWeight); err != nil {
		return err
	}
	if err := loadEnvWeight("ENGAGEMENT_COMPLETION_WEIGHT",
		&c.Engagement.CompletionWeight); err != nil {
		return err
	}
	if err := loadEnvWeight("ENGAGEMENT_SATISFACTION_WEIGHT",
		&c.Engagement.SatisfactionWeight); err != nil {
		return err
	}

	return nil
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}
	if c.MaxConcurrentWorkflows <= 0 {
		return ErrInvalidConcurrency
	}
	if c.DefaultStepTimeout <= 0 {
		return ErrInvalidStepTimeout
	}
	if c.Audit.MaxEntries <= 0 {
		return ErrInvalidAuditCapacity
	}
	w := c.Engagement
	if w.ResponseWeight+w.CompletionWeight+w.SatisfactionWeight <= 0 {
		return ErrInvalidWeights
	}
	return nil
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max). Returns an error if
// the value cannot be parsed or falls outside the valid range.
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}

// loadEnvWeight reads key as a score weight in [0, 1] and sets *dst when
// the variable is present
func loadEnvWeight(key string, dst *float64) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	if v < 0 || v > 1 {
		return fmt.Errorf("invalid %s: %v out of range [0, 1]", key, v)
	}
	*dst = v
	return nil
}

func loadEnvMinutes(key string, dst *time.Duration) error {
	var minutes int64
	if err := loadEnvInt(key, &minutes, 0,
		int64(MaxTimeoutMinutes)); err != nil {
		return err
	}
	if minutes > 0 {
		*dst = time.Duration(minutes) * time.Minute
	}
	return nil
}
