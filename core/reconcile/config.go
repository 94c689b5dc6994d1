package reconcile

// Removal policies applied when a matched removal finds quantity 1.
const (
	RemovalDelete = "delete"
	RemovalZero   = "zero"
)

// Default tuning values.
const (
	DefaultMatchThreshold = 0.65
	DefaultAlertThreshold = 3
)

// Config holds the reconciliation tuning knobs.
type Config struct {
	// MatchThreshold is the minimum similarity for an observation to match a record.
	MatchThreshold float64 `mapstructure:"match_threshold" default:"0.65"`
	// AlertThreshold raises an alert when an event has strictly more observations.
	AlertThreshold int `mapstructure:"alert_threshold" default:"3"`
	// RemovalPolicy is "delete" or "zero".
	RemovalPolicy string `mapstructure:"removal_policy" default:"delete"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		MatchThreshold: DefaultMatchThreshold,
		AlertThreshold: DefaultAlertThreshold,
		RemovalPolicy:  RemovalDelete,
	}
}

// IsValidRemovalPolicy checks if the configured policy is known.
func (c Config) IsValidRemovalPolicy() bool {
	switch c.RemovalPolicy {
	case RemovalDelete, RemovalZero:
		return true
	default:
		return false
	}
}
