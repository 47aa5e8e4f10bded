package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
selfdb:
  base_url: https://db.example.com
  api_key: key-1
  email: tool@example.com
  password: secret
stream:
  channels:
    - channel: orders
      event: insert
    - channel: users
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SelfDB.BaseURL != "https://db.example.com" {
		t.Errorf("BaseURL = %q", cfg.SelfDB.BaseURL)
	}
	if len(cfg.Stream.Channels) != 2 {
		t.Fatalf("channels = %d, want 2", len(cfg.Stream.Channels))
	}
	if cfg.Stream.Channels[0].Event != "insert" {
		t.Errorf("channels[0].event = %q, want insert", cfg.Stream.Channels[0].Event)
	}
	if cfg.Stream.Channels[1].Event != "" {
		t.Errorf("channels[1].event = %q, want empty (wildcard)", cfg.Stream.Channels[1].Event)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SELFDB_API_KEY", "from-env")

	path := writeConfig(t, `
selfdb:
  base_url: http://localhost:8000
  api_key: ${SELFDB_API_KEY}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SelfDB.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want from-env", cfg.SelfDB.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadAndValidate_Defaults(t *testing.T) {
	path := writeConfig(t, `
selfdb:
  base_url: http://localhost:8000
`)

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}
	if cfg.SelfDB.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.SelfDB.Timeout, DefaultTimeout)
	}
	if cfg.SelfDB.MaxRetries != DefaultMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", cfg.SelfDB.MaxRetries, DefaultMaxRetries)
	}
	if cfg.Recorder.BatchSize != DefaultBatchSize {
		t.Errorf("BatchSize = %d, want %d", cfg.Recorder.BatchSize, DefaultBatchSize)
	}
	if cfg.Recorder.FlushInterval != time.Second {
		t.Errorf("FlushInterval = %v, want 1s", cfg.Recorder.FlushInterval)
	}
	if cfg.Recorder.Database.Port != DefaultDBPort {
		t.Errorf("db port = %d, want %d", cfg.Recorder.Database.Port, DefaultDBPort)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ToolConfig)
		wantErr string
	}{
		{
			name:    "valid",
			mutate:  func(*ToolConfig) {},
			wantErr: "",
		},
		{
			name:    "bad scheme",
			mutate:  func(c *ToolConfig) { c.SelfDB.BaseURL = "localhost:8000" },
			wantErr: "base_url",
		},
		{
			name: "empty channel",
			mutate: func(c *ToolConfig) {
				c.Stream.Channels = []ChannelConfig{{Channel: ""}}
			},
			wantErr: "channel is required",
		},
		{
			name:    "zero batch size",
			mutate:  func(c *ToolConfig) { c.Recorder.BatchSize = -1 },
			wantErr: "batch_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &ToolConfig{}
			cfg.applyDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRecorder(t *testing.T) {
	cfg := &ToolConfig{}
	cfg.applyDefaults()

	// Defaults alone lack DB credentials.
	if err := cfg.ValidateRecorder(); err == nil {
		t.Fatal("expected error for missing database settings")
	}

	cfg.Recorder.Database.Host = "localhost"
	cfg.Recorder.Database.Name = "selfdb"
	cfg.Recorder.Database.User = "recorder"
	cfg.Recorder.Database.Password = "secret"
	if err := cfg.ValidateRecorder(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
