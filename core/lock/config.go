package lock

import "time"

// Lock modes.
const (
	ModeLocal = "local"
	ModeRedis = "redis"
	ModeNone  = "none"
)

// Config holds the redis connection and the locking knobs built on it.
type Config struct {
	// Addr is the redis address. Empty disables every redis-backed feature.
	Addr string `mapstructure:"addr" default:""`
	// Password for AUTH, if any.
	Password string `mapstructure:"password" default:""`
	// DB selects the redis logical database.
	DB int `mapstructure:"db" default:"0"`
	// LockMode is local, redis or none.
	LockMode string `mapstructure:"lock_mode" default:"local"`
	// LockTTLSeconds bounds how long a crashed holder can keep a device locked.
	LockTTLSeconds int `mapstructure:"lock_ttl_seconds" default:"120"`
	// LockWaitSeconds bounds how long Acquire waits for a busy device.
	LockWaitSeconds int `mapstructure:"lock_wait_seconds" default:"30"`
	// Dedupe enables cross-process duplicate delivery detection.
	Dedupe bool `mapstructure:"dedupe" default:"false"`
	// DedupeTTLHours is how long a processed event key is remembered.
	DedupeTTLHours int `mapstructure:"dedupe_ttl_hours" default:"24"`
}

// IsValidMode checks if the configured lock mode is known.
func (c Config) IsValidMode() bool {
	switch c.LockMode {
	case ModeLocal, ModeRedis, ModeNone:
		return true
	default:
		return false
	}
}

// LockTTL returns the redis lock expiry.
func (c Config) LockTTL() time.Duration {
	if c.LockTTLSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// LockWait returns the maximum wait for a busy lock.
func (c Config) LockWait() time.Duration {
	if c.LockWaitSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.LockWaitSeconds) * time.Second
}

// DedupeTTL returns how long processed event keys live.
func (c Config) DedupeTTL() time.Duration {
	if c.DedupeTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.DedupeTTLHours) * time.Hour
}
