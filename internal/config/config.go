// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and LEADSPLIT_* environment variables on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file.
	DBPath string `koanf:"db_path"`

	// UploadMaxBytes caps the size of an upload request.
	UploadMaxBytes int64 `koanf:"upload_max_bytes"`

	// JWTSecret signs bearer tokens. Required.
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTL is how long an issued token stays valid.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// OTPTTL is how long a verification or reset code stays valid.
	OTPTTL time.Duration `koanf:"otp_ttl"`

	// CORSOrigin is the browser origin allowed to call the API.
	CORSOrigin string `koanf:"cors_origin"`

	// SMTP settings. Mail is logged instead of sent when SMTPHost is empty.
	SMTPHost     string `koanf:"smtp_host"`
	SMTPPort     int    `koanf:"smtp_port"`
	SMTPUsername string `koanf:"smtp_username"`
	SMTPPassword string `koanf:"smtp_password"`
	MailFrom     string `koanf:"mail_from"`

	// MailQueueSize bounds the outbound mail queue.
	MailQueueSize int `koanf:"mail_queue_size"`

	// MailWorkerCount sets the number of mail senders.
	MailWorkerCount int `koanf:"mail_worker_count"`

	// MetricsEnabled turns metric recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace and MetricsSubsystem prefix every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsLatencyBuckets overrides the latency histogram buckets, in
	// milliseconds. Set it in the config file as a YAML list.
	MetricsLatencyBuckets []float64 `koanf:"metrics_latency_buckets"`
}

// New creates a Config holding the defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":8080",
		DBPath:          "leadsplit.db",
		UploadMaxBytes:  10 << 20,
		TokenTTL:        7 * 24 * time.Hour,
		OTPTTL:          10 * time.Minute,
		CORSOrigin:      "http://localhost:3000",
		SMTPPort:        587,
		MailFrom:        "no-reply@leadsplit.local",
		MailQueueSize:   256,
		MailWorkerCount: 2,

		MetricsEnabled:   true,
		MetricsNamespace: "leadsplit",
		MetricsSubsystem: "lists",
	}
}

// MailEnabled reports whether outbound mail goes over SMTP.
func (c *Config) MailEnabled() bool { return c.SMTPHost != "" }
