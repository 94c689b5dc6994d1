package ingest

import (
	"strings"
	"time"
)

// Config holds configuration for the bucket notification listener.
type Config struct {
	// Enabled starts the listener together with the HTTP server.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Prefix filters notifications by object key prefix.
	Prefix string `mapstructure:"prefix" default:""`
	// Suffix filters notifications by object key suffix (e.g. .mp4).
	Suffix string `mapstructure:"suffix" default:""`
	// Events is a comma separated list of notification types.
	Events string `mapstructure:"events" default:"s3:ObjectCreated:*"`
	// Workers is how many events are processed concurrently.
	Workers int `mapstructure:"workers" default:"4"`
	// ReconnectSeconds is the pause before re-subscribing after the stream ends.
	ReconnectSeconds int `mapstructure:"reconnect_seconds" default:"5"`
}

// EventList splits Events into its entries.
func (c Config) EventList() []string {
	var out []string
	for _, e := range strings.Split(c.Events, ",") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		out = []string{"s3:ObjectCreated:*"}
	}
	return out
}

// WorkerCount returns the configured worker count, at least 1.
func (c Config) WorkerCount() int {
	if c.Workers <= 0 {
		return 1
	}
	return c.Workers
}

// ReconnectDelay returns the pause between subscriptions.
func (c Config) ReconnectDelay() time.Duration {
	if c.ReconnectSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.ReconnectSeconds) * time.Second
}
