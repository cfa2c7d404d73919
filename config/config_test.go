package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := New()

	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.Storage.Backend != BackendBolt {
		t.Errorf("Storage.Backend = %q, want bolt", cfg.Storage.Backend)
	}
	if cfg.History.Cap != 1000 {
		t.Errorf("History.Cap = %d, want 1000", cfg.History.Cap)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	content := `
addr: ":9090"
log:
  level: debug
  format: text
storage:
  backend: memory
history:
  cap: 50
rate_limit:
  requests: 10
  window_seconds: 30
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Addr)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Errorf("Storage.Backend = %q, want memory", cfg.Storage.Backend)
	}
	if cfg.History.Cap != 50 {
		t.Errorf("History.Cap = %d, want 50", cfg.History.Cap)
	}
	if cfg.RateLimit.Window().Seconds() != 30 {
		t.Errorf("RateLimit.Window() = %v, want 30s", cfg.RateLimit.Window())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty addr",
			mutate:  func(c *Config) { c.Addr = "" },
			wantErr: true,
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
		},
		{
			name:    "bad backend",
			mutate:  func(c *Config) { c.Storage.Backend = "etcd" },
			wantErr: true,
		},
		{
			name: "bolt without path",
			mutate: func(c *Config) {
				c.Storage.Backend = BackendBolt
				c.Storage.Path = ""
			},
			wantErr: true,
		},
		{
			name: "redis without url",
			mutate: func(c *Config) {
				c.Storage.Backend = BackendRedis
				c.Storage.RedisURL = ""
			},
			wantErr: true,
		},
		{
			name:    "negative history cap",
			mutate:  func(c *Config) { c.History.Cap = -1 },
			wantErr: true,
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.RateLimit.Requests = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
