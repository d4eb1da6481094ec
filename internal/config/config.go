// Package config provides configuration loading and validation for the
// recommender. Values come from a JSON file, then environment variables, then
// flags; later sources win.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults applied by New when neither file nor environment sets a value.
const (
	DefaultPort              = 8080
	DefaultNavigationTimeout = 30 * time.Second
	DefaultSettleDelay       = 2 * time.Second
	DefaultAuditDir          = "audit"
	DefaultUploadDir         = "uploads"
)

// Config holds everything the recommender needs at startup.
type Config struct {
	// PortalURL is the recruiting portal's agent listing page.
	PortalURL string `json:"portal_url,omitempty"`

	// Port is the HTTP API listen port.
	Port int `json:"port,omitempty"`

	// NavigationTimeoutSec bounds every browser navigation.
	NavigationTimeoutSec int `json:"navigation_timeout_sec,omitempty"`
	// SettleDelaySec is the post-navigation wait for client-side rendering.
	SettleDelaySec int `json:"settle_delay_sec,omitempty"`

	// AuditDir receives one JSON record per run.
	AuditDir string `json:"audit_dir,omitempty"`
	// UploadDir receives uploaded resume documents.
	UploadDir string `json:"upload_dir,omitempty"`

	// Headless controls browser visibility; off only for debugging.
	Headless *bool `json:"headless,omitempty"`

	Verbose bool `json:"verbose,omitempty"`
}

// New returns a Config with all defaults applied.
func New() *Config {
	headless := true
	return &Config{
		Port:                 DefaultPort,
		NavigationTimeoutSec: int(DefaultNavigationTimeout.Seconds()),
		SettleDelaySec:       int(DefaultSettleDelay.Seconds()),
		AuditDir:             DefaultAuditDir,
		UploadDir:            DefaultUploadDir,
		Headless:             &headless,
	}
}

// Load reads a JSON config file and applies it over the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from HERP_* environment variables. Unset and
// malformed variables leave the current value alone.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("HERP_PORTAL_URL"); v != "" {
		c.PortalURL = v
	}
	if v, ok := envInt("HERP_PORT"); ok {
		c.Port = v
	}
	if v, ok := envInt("HERP_NAVIGATION_TIMEOUT_SEC"); ok {
		c.NavigationTimeoutSec = v
	}
	if v, ok := envInt("HERP_SETTLE_DELAY_SEC"); ok {
		c.SettleDelaySec = v
	}
	if v := os.Getenv("HERP_AUDIT_DIR"); v != "" {
		c.AuditDir = v
	}
	if v := os.Getenv("HERP_UPLOAD_DIR"); v != "" {
		c.UploadDir = v
	}
	if v := os.Getenv("HERP_HEADLESS"); v != "" {
		headless := v != "false" && v != "0"
		c.Headless = &headless
	}
}

// Validate checks ranges and required values.
func (c *Config) Validate() error {
	if c.PortalURL == "" {
		return fmt.Errorf("config error: 'portal_url' is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be in (0, 65535]")
	}
	if c.NavigationTimeoutSec <= 0 {
		return fmt.Errorf("config error: 'navigation_timeout_sec' must be positive")
	}
	if c.SettleDelaySec < 0 {
		return fmt.Errorf("config error: 'settle_delay_sec' must be non-negative")
	}
	if c.AuditDir == "" {
		return fmt.Errorf("config error: 'audit_dir' is required")
	}
	return nil
}

// NavigationTimeout returns the timeout as a duration.
func (c *Config) NavigationTimeout() time.Duration {
	return time.Duration(c.NavigationTimeoutSec) * time.Second
}

// SettleDelay returns the settle delay as a duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelaySec) * time.Second
}

// IsHeadless reports the headless setting, defaulting to true.
func (c *Config) IsHeadless() bool {
	return c.Headless == nil || *c.Headless
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
