package selfdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Selfdb-io/selfdb-go/realtime"
)

func TestRealtimeEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		want    string
		wantErr bool
	}{
		{"http", "http://localhost:8000", "ws://localhost:8000/realtime", false},
		{"https", "https://db.example.com", "wss://db.example.com/realtime", false},
		{"trailing slash", "http://localhost:8000/", "ws://localhost:8000/realtime", false},
		{"with path", "https://db.example.com/selfdb", "wss://db.example.com/selfdb/realtime", false},
		{"unsupported scheme", "ftp://db.example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RealtimeEndpoint(tt.base)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("RealtimeEndpoint(%q) = %q, want %q", tt.base, got, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{BaseURL: "http://localhost:8000"}, false},
		{"valid with realtime override", Config{BaseURL: "http://localhost:8000", RealtimeURL: "wss://rt.example.com"}, false},
		{"missing base URL", Config{}, true},
		{"bad scheme", Config{BaseURL: "ftp://x"}, true},
		{"no host", Config{BaseURL: "http://"}, true},
		{"bad realtime scheme", Config{BaseURL: "http://localhost", RealtimeURL: "http://rt"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{BaseURL: "http://localhost:8000"}
	cfg.applyDefaults()

	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.HeartbeatInterval != 30*time.Second {
		t.Errorf("HeartbeatInterval = %v, want 30s", cfg.HeartbeatInterval)
	}
	if cfg.ReconnectPolicy != realtime.DefaultReconnectPolicy() {
		t.Errorf("ReconnectPolicy = %+v, want default", cfg.ReconnectPolicy)
	}
	if cfg.Logger == nil {
		t.Error("Logger should default to slog.Default()")
	}
}

func TestNew(t *testing.T) {
	t.Run("wires all clients", func(t *testing.T) {
		client, err := New(Config{BaseURL: "http://localhost:8000", APIKey: "key"})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if client.Auth == nil || client.Database == nil || client.Storage == nil || client.Realtime == nil {
			t.Error("all service clients should be non-nil")
		}
		if client.Realtime.State() != realtime.StateDisconnected {
			t.Errorf("realtime state = %v, want disconnected before Connect", client.Realtime.State())
		}
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		if _, err := New(Config{}); err == nil {
			t.Error("expected error for empty config")
		}
	})
}

// TestSharedSession checks that a login through Auth authenticates
// subsequent Database calls on the same client.
func TestSharedSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			json.NewEncoder(w).Encode(map[string]string{
				"access_token":  "access-1",
				"refresh_token": "refresh-1",
			})
		case "/api/v1/tables":
			if got := r.Header.Get("Authorization"); got != "Bearer access-1" {
				t.Errorf("Authorization = %q, want Bearer access-1", got)
			}
			if got := r.Header.Get("apikey"); got != "key" {
				t.Errorf("apikey = %q, want key", got)
			}
			json.NewEncoder(w).Encode([]map[string]string{{"name": "orders"}})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, APIKey: "key"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := client.Auth.Login(context.Background(), "a@b.c", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	tables, err := client.Database.ListTables(context.Background())
	if err != nil {
		t.Fatalf("ListTables failed: %v", err)
	}
	if len(tables) != 1 || tables[0].Name != "orders" {
		t.Errorf("tables = %+v", tables)
	}
}
