package config

import "time"

// ToolConfig is the root configuration for the cmd tools.
type ToolConfig struct {
	SelfDB   SelfDBConfig   `yaml:"selfdb"`
	Stream   StreamConfig   `yaml:"stream"`
	Recorder RecorderConfig `yaml:"recorder"`
}

// SelfDBConfig holds backend connection settings.
type SelfDBConfig struct {
	BaseURL     string        `yaml:"base_url"`
	RealtimeURL string        `yaml:"realtime_url"`
	APIKey      string        `yaml:"api_key"`
	Email       string        `yaml:"email"`
	Password    string        `yaml:"password"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
}

// StreamConfig lists the realtime channels to subscribe to.
type StreamConfig struct {
	Channels []ChannelConfig `yaml:"channels"`
}

// ChannelConfig is one channel/event-filter pair.
type ChannelConfig struct {
	Channel string `yaml:"channel"`
	Event   string `yaml:"event"`
}

// RecorderConfig holds settings for cmd/recorder.
type RecorderConfig struct {
	Database      DBConfig      `yaml:"database"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}
