package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/dealscout/internal/extract"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Addr string `yaml:"addr" json:"addr" toml:"addr"`
	URL  string `yaml:"url" json:"url" toml:"url"`

	Fetch struct {
		UserAgent string `yaml:"userAgent" json:"userAgent" toml:"userAgent"`
		// Timeout is a Go duration string such as "15s".
		Timeout string `yaml:"timeout" json:"timeout" toml:"timeout"`
	} `yaml:"fetch" json:"fetch" toml:"fetch"`

	Robots struct {
		Respect bool `yaml:"respect" json:"respect" toml:"respect"`
	} `yaml:"robots" json:"robots" toml:"robots"`

	Selectors extract.Selectors `yaml:"selectors" json:"selectors" toml:"selectors"`

	Export struct {
		Prefix string `yaml:"prefix" json:"prefix" toml:"prefix"`
	} `yaml:"export" json:"export" toml:"export"`

	Verbose bool `yaml:"verbose" json:"verbose" toml:"verbose"`
}

// LoadConfigFile reads YAML, JSON or TOML into FileConfig. The format follows
// the file extension; unknown extensions try YAML then JSON.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(b), &fc); err != nil {
			return fc, fmt.Errorf("parse toml: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	if s := strings.TrimSpace(fc.Fetch.Timeout); s != "" {
		if _, err := time.ParseDuration(s); err != nil {
			return fc, fmt.Errorf("fetch.timeout: %w", err)
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are still unset or at their default. Explicit flags are applied afterwards
// by the caller and therefore win.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	defaults := DefaultConfig()

	if (cfg.Addr == "" || cfg.Addr == defaults.Addr) && fc.Addr != "" {
		cfg.Addr = fc.Addr
	}
	if (cfg.URL == "" || cfg.URL == defaults.URL) && fc.URL != "" {
		cfg.URL = fc.URL
	}
	if cfg.UserAgent == "" && fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if cfg.FetchTimeout == 0 && fc.Fetch.Timeout != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(fc.Fetch.Timeout)); err == nil {
			cfg.FetchTimeout = d
		}
	}
	if !cfg.RespectRobots && fc.Robots.Respect {
		cfg.RespectRobots = true
	}

	sel := &cfg.Selectors
	if (sel.Wrapper == "" || sel.Wrapper == defaults.Selectors.Wrapper) && fc.Selectors.Wrapper != "" {
		sel.Wrapper = fc.Selectors.Wrapper
	}
	if (sel.Title == "" || sel.Title == defaults.Selectors.Title) && fc.Selectors.Title != "" {
		sel.Title = fc.Selectors.Title
	}
	if (sel.OriginalPrice == "" || sel.OriginalPrice == defaults.Selectors.OriginalPrice) && fc.Selectors.OriginalPrice != "" {
		sel.OriginalPrice = fc.Selectors.OriginalPrice
	}
	if (sel.Price == "" || sel.Price == defaults.Selectors.Price) && fc.Selectors.Price != "" {
		sel.Price = fc.Selectors.Price
	}

	if (cfg.ExportPrefix == "" || cfg.ExportPrefix == defaults.ExportPrefix) && fc.Export.Prefix != "" {
		cfg.ExportPrefix = fc.Export.Prefix
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig performs minimal validation of the settings a run needs.
func ValidateConfig(cfg Config) error {
	if trim(cfg.URL) == "" {
		return errors.New("config: url is required")
	}
	u, err := url.Parse(trim(cfg.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: url %q must be an absolute http(s) URL", cfg.URL)
	}
	if cfg.FetchTimeout < 0 {
		return errors.New("config: negative fetch timeout is not allowed")
	}
	if strings.ContainsAny(cfg.ExportPrefix, `/\`) {
		return fmt.Errorf("config: export prefix %q must not contain path separators", cfg.ExportPrefix)
	}
	if err := cfg.Selectors.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
