package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL       = "http://localhost:8000"
	DefaultTimeout       = 30 * time.Second
	DefaultMaxRetries    = 3
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 10
	DefaultMinConns      = 2
	DefaultBatchSize     = 500
	DefaultFlushInterval = 1 * time.Second
)

func (c *ToolConfig) applyDefaults() {
	if c.SelfDB.BaseURL == "" {
		c.SelfDB.BaseURL = DefaultBaseURL
	}
	if c.SelfDB.Timeout == 0 {
		c.SelfDB.Timeout = DefaultTimeout
	}
	if c.SelfDB.MaxRetries == 0 {
		c.SelfDB.MaxRetries = DefaultMaxRetries
	}

	applyDBDefaults(&c.Recorder.Database)

	if c.Recorder.BatchSize == 0 {
		c.Recorder.BatchSize = DefaultBatchSize
	}
	if c.Recorder.FlushInterval == 0 {
		c.Recorder.FlushInterval = DefaultFlushInterval
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
