package session

import (
	"os"
	"strconv"
	"time"
)

// Config defines runtime configuration for the session subsystem.
//
// The access-token secret is injected once at construction; there is no
// ambient key material anywhere in this package.
type Config struct {
	// Issuer is the value set in the "iss" claim of access tokens.
	Issuer string

	// AccessSecret signs access tokens. Its length selects the algorithm:
	// >= 64 bytes HS512, >= 32 bytes HS256, anything shorter is rejected.
	AccessSecret []byte

	// AccessTokenTTL defines the lifetime of access tokens.
	AccessTokenTTL time.Duration

	// RefreshTTL defines the lifetime of refresh sessions.
	RefreshTTL time.Duration

	// RefreshTokenBytes defines the number of random bytes used to generate
	// opaque refresh tokens.
	RefreshTokenBytes int

	// Cookie attributes for the refresh-session continuation value.
	CookieName   string
	CookiePath   string
	CookieSecure bool
}

// DefaultConfig returns defaults suitable for development. The access secret
// must still be provided.
func DefaultConfig() Config {
	return Config{
		Issuer:            "teamanalyzer",
		AccessTokenTTL:    15 * time.Minute,
		RefreshTTL:        14 * 24 * time.Hour,
		RefreshTokenBytes: 32,
		CookieName:        "refresh_token",
		CookiePath:        "/api/auth",
		CookieSecure:      true,
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Required:
//   - TEAMANALYZER_JWT_SECRET (>= 32 bytes)
//
// Optional (durations must be valid Go duration strings):
//   - TEAMANALYZER_AUTH_ISSUER
//   - TEAMANALYZER_AUTH_ACCESS_TTL
//   - TEAMANALYZER_AUTH_REFRESH_TTL
//   - TEAMANALYZER_AUTH_REFRESH_TOKEN_BYTES
//   - TEAMANALYZER_AUTH_COOKIE_SECURE
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("TEAMANALYZER_AUTH_ISSUER"); v != "" {
		cfg.Issuer = v
	}

	if v := os.Getenv("TEAMANALYZER_AUTH_ACCESS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.AccessTokenTTL = d
	}

	if v := os.Getenv("TEAMANALYZER_AUTH_REFRESH_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTTL = d
	}

	if v := os.Getenv("TEAMANALYZER_AUTH_REFRESH_TOKEN_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 32 || n > 64 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTokenBytes = n
	}

	if v := os.Getenv("TEAMANALYZER_AUTH_COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.CookieSecure = b
	}

	cfg.AccessSecret = []byte(os.Getenv("TEAMANALYZER_JWT_SECRET"))
	if len(cfg.AccessSecret) < minHS256SecretBytes {
		return Config{}, ErrConfig
	}

	return cfg, nil
}
