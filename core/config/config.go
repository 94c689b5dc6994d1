package config

import (
	"fmt"
	"reflect"
	"strings"

	"inventory-ledger/core/database"
	"inventory-ledger/core/lock"
	"inventory-ledger/core/logger"
	"inventory-ledger/core/reconcile"
	"inventory-ledger/core/server"
	"inventory-ledger/core/storage"
	"inventory-ledger/core/vision"
	"inventory-ledger/feature/ingest"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the video bucket (e.g., GCS, S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Vision holds configuration for the video analysis service.
	Vision vision.Config `mapstructure:"vision"`
	// Redis holds the redis connection used for locking and deduplication.
	Redis lock.Config `mapstructure:"redis"`
	// Reconcile holds the matching and alerting thresholds.
	Reconcile reconcile.Config `mapstructure:"reconcile"`
	// Ingest holds configuration for the bucket notification listener.
	Ingest ingest.Config `mapstructure:"ingest"`
}

// Validate rejects settings that would otherwise fail late.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if c.Reconcile.MatchThreshold <= 0 || c.Reconcile.MatchThreshold > 1 {
		return fmt.Errorf("reconcile.match_threshold must be in (0, 1], got %v", c.Reconcile.MatchThreshold)
	}
	if c.Reconcile.AlertThreshold < 0 {
		return fmt.Errorf("reconcile.alert_threshold must not be negative, got %d", c.Reconcile.AlertThreshold)
	}
	if !c.Reconcile.IsValidRemovalPolicy() {
		return fmt.Errorf("unknown reconcile.removal_policy: %s", c.Reconcile.RemovalPolicy)
	}
	if !c.Redis.IsValidMode() {
		return fmt.Errorf("unknown redis.lock_mode: %s", c.Redis.LockMode)
	}
	if c.Redis.LockMode == lock.ModeRedis && c.Redis.Addr == "" {
		return fmt.Errorf("redis.lock_mode %q requires redis.addr", lock.ModeRedis)
	}
	return nil
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	// We construct the path to .env
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
