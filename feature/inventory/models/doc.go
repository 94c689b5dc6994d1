// Package models defines the persisted shape of the ledger.
//
// InventoryItem maps to the 'inventory' table, one row per distinct item per device.
// BatchAlert maps to 'batch_alerts'; its change log is stored as a JSON text column.
// Both types convert to and from the plain records used by core/reconcile so the
// engine never sees gorm tags.
package models
