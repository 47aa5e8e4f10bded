package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *ToolConfig) Validate() error {
	if c.SelfDB.BaseURL == "" {
		return errors.New("selfdb.base_url is required")
	}
	if !strings.HasPrefix(c.SelfDB.BaseURL, "http://") && !strings.HasPrefix(c.SelfDB.BaseURL, "https://") {
		return fmt.Errorf("selfdb.base_url must start with http:// or https://, got %q", c.SelfDB.BaseURL)
	}

	for i, ch := range c.Stream.Channels {
		if ch.Channel == "" {
			return fmt.Errorf("stream.channels[%d].channel is required", i)
		}
	}

	if c.Recorder.BatchSize < 1 {
		return errors.New("recorder.batch_size must be >= 1")
	}

	return nil
}

// ValidateRecorder additionally checks the database section, which only
// cmd/recorder needs.
func (c *ToolConfig) ValidateRecorder() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.Recorder.Database.validate("recorder.database")
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
