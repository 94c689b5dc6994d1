// Package integrity provides system health checks for the ledger.
//
// Unlike the 'inventory' package which reconciles item movements, this package
// validates the infrastructure the ledger depends on.
//
// # Checks Provided
//
//   - Storage: Checks that the video bucket exists and samples objects whose path and
//     metadata yield no owner or device. Those uploads would be skipped on ingest.
//   - Schema: Validates that the 'inventory' and 'batch_alerts' tables match the gorm
//     models (columns, declared types).
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/storage : Runs storage check (supports ?fix=true and ?limit=).
//   - GET /integrity/schema : Runs schema check.
package integrity
