// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	API       APIConfig       `mapstructure:"api"`
	Browser   BrowserConfig   `mapstructure:"browser"`
	Puppeteer PuppeteerConfig `mapstructure:"puppeteer"`
	Targets   []TargetConfig  `mapstructure:"targets"`
}

// ServerConfig controls the operational HTTP endpoint.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// CrawlerConfig governs the direct-fetch primary stage.
type CrawlerConfig struct {
	UserAgent         string `mapstructure:"user_agent"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_seconds"`
	Concurrency       int    `mapstructure:"concurrency"`
	DomainDelaySec    int    `mapstructure:"domain_delay_seconds"`
}

// APIConfig gates the ATS API detection stage.
type APIConfig struct {
	DetectionEnabled bool `mapstructure:"detection_enabled"`
}

// BrowserConfig gates and configures both browser stages.
type BrowserConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	Headless      bool    `mapstructure:"headless"`
	UserAgent     string  `mapstructure:"user_agent"`
	NavTimeoutMs  int     `mapstructure:"nav_timeout_ms"`
	WaitSelector  string  `mapstructure:"wait_selector"`
	WaitTimeoutMs int     `mapstructure:"wait_timeout_ms"`
	SettleDelayMs int     `mapstructure:"settle_delay_ms"`
	DomainQPS     float64 `mapstructure:"domain_qps"`
}

// PuppeteerConfig points at the remote browser-automation service.
type PuppeteerConfig struct {
	ServiceURL    string `mapstructure:"service_url"`
	GracePeriodMs int    `mapstructure:"grace_period_ms"`
}

// TargetConfig is one company to crawl.
type TargetConfig struct {
	Name         string `mapstructure:"name"`
	CareerURL    string `mapstructure:"career_url"`
	WaitSelector string `mapstructure:"wait_selector"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("JOBSCRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
	v.SetDefault("crawler.user_agent", "talentwire-jobs-crawler/1.0")
	v.SetDefault("crawler.request_timeout_seconds", 15)
	v.SetDefault("crawler.concurrency", 2)
	v.SetDefault("crawler.domain_delay_seconds", 1)
	v.SetDefault("api.detection_enabled", true)
	v.SetDefault("browser.enabled", false)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.nav_timeout_ms", 30000)
	v.SetDefault("browser.wait_timeout_ms", 5000)
	v.SetDefault("browser.settle_delay_ms", 2000)
	v.SetDefault("browser.domain_qps", 1)
	v.SetDefault("puppeteer.grace_period_ms", 10000)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Crawler.RequestTimeoutSec <= 0 {
		return fmt.Errorf("crawler.request_timeout_seconds must be > 0")
	}
	if c.Browser.Enabled && c.Browser.NavTimeoutMs <= 0 {
		return fmt.Errorf("browser.nav_timeout_ms must be > 0 when browser is enabled")
	}
	for i, target := range c.Targets {
		if target.Name == "" {
			return fmt.Errorf("targets[%d].name must be set", i)
		}
		if target.CareerURL == "" {
			return fmt.Errorf("targets[%d].career_url must be set", i)
		}
	}
	return nil
}

// RequestTimeout converts the primary-stage timeout into a duration.
func (c CrawlerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// DomainDelay converts the per-domain delay into a duration.
func (c CrawlerConfig) DomainDelay() time.Duration {
	return time.Duration(c.DomainDelaySec) * time.Second
}

// NavTimeout converts the navigation timeout into a duration.
func (c BrowserConfig) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutMs) * time.Millisecond
}

// WaitTimeout converts the selector-wait timeout into a duration.
func (c BrowserConfig) WaitTimeout() time.Duration {
	return time.Duration(c.WaitTimeoutMs) * time.Millisecond
}

// SettleDelay converts the post-render settle period into a duration.
func (c BrowserConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

// GracePeriod converts the remote-service grace period into a duration.
func (c PuppeteerConfig) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodMs) * time.Millisecond
}
