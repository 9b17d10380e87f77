package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: engine-1
database:
  host: localhost
  port: 5432
  name: auction_db
  user: auction
  password: secret
scheduler:
  interval: 10s
auto_extend:
  threshold: 3m
  extension: 6m
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "engine-1" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "engine-1")
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
	if cfg.Scheduler.Interval != 10*time.Second {
		t.Errorf("Scheduler.Interval = %v, want 10s", cfg.Scheduler.Interval)
	}
	if cfg.AutoExtend.Threshold != 3*time.Minute {
		t.Errorf("AutoExtend.Threshold = %v, want 3m", cfg.AutoExtend.Threshold)
	}
	if cfg.AutoExtend.Extension != 6*time.Minute {
		t.Errorf("AutoExtend.Extension = %v, want 6m", cfg.AutoExtend.Extension)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
instance:
  id: engine-1
database:
  host: localhost
  name: auction_db
  user: auction
  password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Password != "secret123" {
		t.Errorf("Database.Password = %q, want %q", cfg.Database.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
instance:
  id: engine-1
database:
  host: localhost
  name: auction_db
  user: auction
  password: secret
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Database.Port != DefaultDBPort {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, DefaultDBPort)
	}
	if cfg.Database.SSLMode != DefaultDBSSLMode {
		t.Errorf("Database.SSLMode = %q, want %q", cfg.Database.SSLMode, DefaultDBSSLMode)
	}
	if cfg.Scheduler.Interval != DefaultSchedulerInterval {
		t.Errorf("Scheduler.Interval = %v, want %v", cfg.Scheduler.Interval, DefaultSchedulerInterval)
	}
	if cfg.Scheduler.Concurrency != DefaultSchedulerConcurrency {
		t.Errorf("Scheduler.Concurrency = %d, want %d", cfg.Scheduler.Concurrency, DefaultSchedulerConcurrency)
	}
	if cfg.AutoExtend.Threshold != DefaultAutoExtendThreshold {
		t.Errorf("AutoExtend.Threshold = %v, want %v", cfg.AutoExtend.Threshold, DefaultAutoExtendThreshold)
	}
	if cfg.AutoExtend.Extension != DefaultAutoExtendExtension {
		t.Errorf("AutoExtend.Extension = %v, want %v", cfg.AutoExtend.Extension, DefaultAutoExtendExtension)
	}
	if cfg.Notifier.BufferSize != DefaultNotifierBufferSize {
		t.Errorf("Notifier.BufferSize = %d, want %d", cfg.Notifier.BufferSize, DefaultNotifierBufferSize)
	}
	if cfg.Health.Port != DefaultHealthPort {
		t.Errorf("Health.Port = %d, want %d", cfg.Health.Port, DefaultHealthPort)
	}
}

func TestLoadAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{
			name: "valid config",
			yaml: `
instance:
  id: engine-1
database:
  host: localhost
  name: auction_db
  user: auction
  password: secret
`,
			wantErr: false,
		},
		{
			name: "missing instance id",
			yaml: `
database:
  host: localhost
  name: auction_db
  user: auction
  password: secret
`,
			wantErr: true,
		},
		{
			name: "missing database host",
			yaml: `
instance:
  id: engine-1
database:
  name: auction_db
  user: auction
  password: secret
`,
			wantErr: true,
		},
		{
			name: "min conns exceeds max conns",
			yaml: `
instance:
  id: engine-1
database:
  host: localhost
  name: auction_db
  user: auction
  password: secret
  max_conns: 2
  min_conns: 5
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, tt.yaml)
			_, err := LoadAndValidate(path)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadAndValidate error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}
