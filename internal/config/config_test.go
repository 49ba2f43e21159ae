package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("server.port = %d", cfg.Server.Port)
	}
	if !cfg.API.DetectionEnabled {
		t.Fatal("api.detection_enabled should default to true")
	}
	if cfg.Browser.Enabled {
		t.Fatal("browser.enabled should default to false")
	}
	if !cfg.Browser.Headless {
		t.Fatal("browser.headless should default to true")
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
logging:
  development: false
crawler:
  user_agent: test-agent
  request_timeout_seconds: 45
api:
  detection_enabled: false
browser:
  enabled: true
  headless: false
  nav_timeout_ms: 20000
  wait_selector: ".jobs-list"
puppeteer:
  service_url: http://browser-svc:3000
  grace_period_ms: 5000
targets:
  - name: Acme
    career_url: https://acme.example/careers
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("server.port = %d", cfg.Server.Port)
	}
	if cfg.API.DetectionEnabled {
		t.Fatal("api.detection_enabled should be overridden to false")
	}
	if !cfg.Browser.Enabled || cfg.Browser.Headless {
		t.Fatalf("browser config not overridden: %+v", cfg.Browser)
	}
	if cfg.Puppeteer.ServiceURL != "http://browser-svc:3000" {
		t.Fatalf("puppeteer.service_url = %q", cfg.Puppeteer.ServiceURL)
	}
	if len(cfg.Targets) != 1 || cfg.Targets[0].Name != "Acme" {
		t.Fatalf("targets = %+v", cfg.Targets)
	}
	if got := cfg.Browser.NavTimeout().Milliseconds(); got != 20000 {
		t.Fatalf("nav timeout = %dms", got)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "zero request timeout",
			mutate:  func(c *Config) { c.Crawler.RequestTimeoutSec = 0 },
			wantErr: "request_timeout_seconds",
		},
		{
			name: "browser enabled without nav timeout",
			mutate: func(c *Config) {
				c.Browser.Enabled = true
				c.Browser.NavTimeoutMs = 0
			},
			wantErr: "nav_timeout_ms",
		},
		{
			name:    "target without career url",
			mutate:  func(c *Config) { c.Targets = []TargetConfig{{Name: "Acme"}} },
			wantErr: "career_url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.mutate(&cfg)
			err = cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
