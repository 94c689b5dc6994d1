// Package inventory is the ledger feature: it turns uploaded videos into inventory changes.
//
// # Pipeline
//
// For every finalized upload the Service:
//
//  1. Resolves the owner and device from object metadata or the object path
//     (users/{u}/devices/{d}/... or uploads/{u}/{d}/...). Unrecognized paths are skipped.
//  2. Claims the event (optional redis deduplication) and collapses concurrent
//     deliveries of the same object into one execution.
//  3. Asks the vision service what was added and removed.
//  4. Locks the device, loads its snapshot, plans with core/reconcile and commits
//     the mutations plus any alert in one transaction.
//
// A vision failure aborts the event before anything is written; a failed event releases
// its claim so a redelivery can retry it.
//
// # HTTP
//
//   - POST /events/object-finalized: process one upload (?dry_run=true to plan only)
//   - GET /inventory/:deviceId: list a device's records
//   - GET /inventory/:deviceId/export: xlsx workbook of records and alerts
//   - GET /alerts: list alerts (?device=, ?status=, ?limit=)
//
// # Storage
//
// The Store reads 'inventory' and 'batch_alerts' through gorm. Quantity changes are
// relative SQL updates, and a mutation that touches no row rolls the whole plan back.
package inventory
