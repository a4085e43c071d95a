package app

import (
	"os"
	"strings"
	"time"
)

// Environment keys read by ApplyEnvToConfig and ApplyEnvOverrides.
const (
	EnvAddr          = "DEALSCOUT_ADDR"
	EnvURL           = "DEALSCOUT_URL"
	EnvUserAgent     = "DEALSCOUT_USER_AGENT"
	EnvFetchTimeout  = "DEALSCOUT_FETCH_TIMEOUT"
	EnvRespectRobots = "DEALSCOUT_RESPECT_ROBOTS"
	EnvVerbose       = "VERBOSE"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Addr == "" {
		cfg.Addr = os.Getenv(EnvAddr)
	}
	if cfg.URL == "" {
		cfg.URL = os.Getenv(EnvURL)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = os.Getenv(EnvUserAgent)
	}
	if cfg.FetchTimeout == 0 {
		if s := os.Getenv(EnvFetchTimeout); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				cfg.FetchTimeout = d
			}
		}
	}

	setBool := func(dst *bool, envKey string) {
		if *dst {
			return
		}
		if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
			if s == "1" || s == "true" || s == "yes" || s == "on" {
				*dst = true
			}
		}
	}
	setBool(&cfg.RespectRobots, EnvRespectRobots)
	setBool(&cfg.Verbose, EnvVerbose)
}

// ApplyEnvOverrides forcefully overrides cfg fields with environment variables
// when the corresponding env vars are set. This lets env take precedence over
// values coming from a config file while flags, applied last, stay on top.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv(EnvURL); v != "" {
		cfg.URL = v
	}
	if v := os.Getenv(EnvUserAgent); v != "" {
		cfg.UserAgent = v
	}
	if s := os.Getenv(EnvFetchTimeout); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.FetchTimeout = d
		}
	}

	// Booleans override when env present and truthy/falsey
	setBool := func(dst *bool, envKey string) {
		if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
			switch s {
			case "1", "true", "yes", "on":
				*dst = true
			case "0", "false", "no", "off":
				*dst = false
			}
		}
	}
	setBool(&cfg.RespectRobots, EnvRespectRobots)
	setBool(&cfg.Verbose, EnvVerbose)
}
