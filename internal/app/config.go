package app

import "time"

// Config contains all runtime configuration loaded from environment
// variables. Token-specific settings live in session.LoadConfigFromEnv; this
// covers the process-level rest.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// DownloadSecret signs result-download tokens. When unset the JWT
	// secret is reused.
	DownloadSecret []byte
	DownloadTTL    time.Duration

	VerifyTTL time.Duration
	ResetTTL  time.Duration
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("TEAMANALYZER_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("TEAMANALYZER_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("TEAMANALYZER_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("TEAMANALYZER_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("TEAMANALYZER_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("TEAMANALYZER_HTTP_IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    EnvInt("TEAMANALYZER_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("TEAMANALYZER_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("TEAMANALYZER_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("TEAMANALYZER_DB_MIN_CONNS", 0),

		DownloadSecret: []byte(EnvString("TEAMANALYZER_DOWNLOAD_SECRET", "")),
		DownloadTTL:    EnvDuration("TEAMANALYZER_DOWNLOAD_TTL", 10*time.Minute),

		VerifyTTL: EnvDuration("TEAMANALYZER_VERIFY_TTL", 24*time.Hour),
		ResetTTL:  EnvDuration("TEAMANALYZER_RESET_TTL", 30*time.Minute),
	}
}
