// Package config provides configuration management for the inventory ledger.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP port, API key, timeouts
//   - Storage: bucket credentials and the video bucket name
//   - Log: level, format and optional rotating file
//   - Database: MySQL or SQLite connection details
//   - Vision: analysis service endpoint, timeout and auth
//   - Redis: lock mode and deduplication
//   - Reconcile: match threshold, alert threshold, removal policy
//   - Ingest: bucket notification listener
//
// Every key maps to an environment variable, e.g. RECONCILE_MATCH_THRESHOLD sets
// reconcile.match_threshold. Defaults come from the `default` struct tags of each
// section's Config type.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
