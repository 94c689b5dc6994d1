// Package database handles ledger database connections and schema inspection.
//
// It wraps GORM to configure MySQL (production) or SQLite (local runs and tests)
// connections from the application's configuration.
//
// # Connect
//
// Connect opens the database for the configured driver, applies pool settings and
// verifies the connection with a bounded ping.
//
// # Schema Inspection
//
// The inventory and batch_alerts tables are owned outside this service. GetTableColumns
// reads the live column list so the integrity feature can compare it against the GORM
// models the ledger store writes through. Migrate exists for local databases only.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "inventory")
package database
