// Package loader mounts optional HTTP features onto the Fiber app.
//
// cmd/start builds each feature with its dependencies already injected, hands
// them to a Manager and calls LoadAll once the global middleware is in place.
//
// # Feature Interface
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// IsEnabled lets a feature opt out at runtime, e.g. inventory without a ledger
// database. Skipped features are logged; a Load error aborts startup and names
// the feature that failed.
package loader
