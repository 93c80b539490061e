package app

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/avdave/steamwatch/core/config"
	coredatabase "github.com/avdave/steamwatch/core/database"
	"github.com/avdave/steamwatch/internal/shot"
	"github.com/avdave/steamwatch/internal/steam"
	"github.com/avdave/steamwatch/internal/tracking"
)

// SteamSection configures the profile fetcher. Intervals are plain seconds,
// same convention as the core rate_limit block.
type SteamSection struct {
	BaseURL        string `yaml:"base_url" envconfig:"STEAM_BASE_URL"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"STEAM_TIMEOUT_SECONDS"`
}

// TrackingSection configures the polling supervisor.
type TrackingSection struct {
	PollIntervalSeconds  int `yaml:"poll_interval_seconds" envconfig:"TRACKING_POLL_INTERVAL_SECONDS"`
	RetryIntervalSeconds int `yaml:"retry_interval_seconds" envconfig:"TRACKING_RETRY_INTERVAL_SECONDS"`
	Limit                int `yaml:"limit" envconfig:"TRACKING_LIMIT"`
}

// ShotSection configures the headless capture.
type ShotSection struct {
	ViewportWidth      int `yaml:"viewport_width" envconfig:"SHOT_VIEWPORT_WIDTH"`
	ViewportHeight     int `yaml:"viewport_height" envconfig:"SHOT_VIEWPORT_HEIGHT"`
	SettleDelaySeconds int `yaml:"settle_delay_seconds" envconfig:"SHOT_SETTLE_DELAY_SECONDS"`
	TimeoutSeconds     int `yaml:"timeout_seconds" envconfig:"SHOT_TIMEOUT_SECONDS"`
}

// Config aggregates core settings with the application sections.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Steam    SteamSection        `yaml:"steam"`
	Tracking TrackingSection     `yaml:"tracking"`
	Shot     ShotSection         `yaml:"shot"`

	AssetsDir string `yaml:"assets_dir" envconfig:"ASSETS_DIR"`
}

// Load reads the YAML config, applies environment overrides and validates the
// core section.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if cfg.Database.Host == "" || cfg.Database.Name == "" {
		return nil, fmt.Errorf("database.host and database.name are required")
	}
	if cfg.AssetsDir == "" {
		cfg.AssetsDir = "images"
	}
	return &cfg, nil
}

// CoreConfig exposes the embedded core configuration to the shared runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// SteamConfig converts the section to the fetcher's runtime config.
func (c *Config) SteamConfig() steam.Config {
	return steam.Config{
		BaseURL: c.Steam.BaseURL,
		Timeout: seconds(c.Steam.TimeoutSeconds),
	}
}

// TrackingConfig converts the section to the supervisor's runtime config.
func (c *Config) TrackingConfig() tracking.Config {
	return tracking.Config{
		PollInterval:  seconds(c.Tracking.PollIntervalSeconds),
		RetryInterval: seconds(c.Tracking.RetryIntervalSeconds),
		Limit:         c.Tracking.Limit,
	}
}

// ShotConfig converts the section to the capturer's runtime config.
func (c *Config) ShotConfig() shot.Config {
	return shot.Config{
		ViewportWidth:  c.Shot.ViewportWidth,
		ViewportHeight: c.Shot.ViewportHeight,
		SettleDelay:    seconds(c.Shot.SettleDelaySeconds),
		Timeout:        seconds(c.Shot.TimeoutSeconds),
	}
}
