package models

import (
	"time"

	"inventory-ledger/core/reconcile"
)

// InventoryItem represents one row of the 'inventory' table.
type InventoryItem struct {
	ID             string    `gorm:"column:id;primaryKey;type:varchar(36)"`
	Name           string    `gorm:"column:name;type:varchar(255);not null"`
	NameNormalized string    `gorm:"column:name_normalized;type:varchar(255);not null"`
	Category       string    `gorm:"column:category;type:varchar(100);not null;default:uncategorized"`
	Quantity       int       `gorm:"column:quantity;not null;default:0"`
	LastDetected   time.Time `gorm:"column:last_detected"`
	SourceDeviceID string    `gorm:"column:source_device_id;type:varchar(128);index:idx_inventory_device"`
	OwnerID        string    `gorm:"column:owner_id;type:varchar(128);index"`
	CreatedAt      time.Time `gorm:"column:created_at;precision:6;autoCreateTime"`
}

// TableName overrides the table name.
func (InventoryItem) TableName() string {
	return "inventory"
}

// ToRecord converts the row into the engine's record type.
func (i InventoryItem) ToRecord() reconcile.Record {
	return reconcile.Record{
		ID:             i.ID,
		Name:           i.Name,
		NameNormalized: i.NameNormalized,
		Category:       i.Category,
		Quantity:       i.Quantity,
		LastDetected:   i.LastDetected,
		DeviceID:       i.SourceDeviceID,
		OwnerID:        i.OwnerID,
	}
}

// ItemFromRecord builds a row from a freshly created record.
func ItemFromRecord(r reconcile.Record) InventoryItem {
	return InventoryItem{
		ID:             r.ID,
		Name:           r.Name,
		NameNormalized: r.NameNormalized,
		Category:       r.Category,
		Quantity:       r.Quantity,
		LastDetected:   r.LastDetected,
		SourceDeviceID: r.DeviceID,
		OwnerID:        r.OwnerID,
	}
}

// BatchAlert represents one row of the 'batch_alerts' table.
type BatchAlert struct {
	ID        string                  `gorm:"column:id;primaryKey;type:varchar(36)"`
	OwnerID   string                  `gorm:"column:owner_id;type:varchar(128);index"`
	DeviceID  string                  `gorm:"column:device_id;type:varchar(128);index"`
	Timestamp time.Time               `gorm:"column:timestamp"`
	Changes   []reconcile.ChangeEntry `gorm:"column:changes;type:text;serializer:json"`
	Status    string                  `gorm:"column:status;type:varchar(16);not null;default:pending;index"`
}

// TableName overrides the table name.
func (BatchAlert) TableName() string {
	return "batch_alerts"
}

// ToAlert converts the row into the engine's alert type.
func (b BatchAlert) ToAlert() reconcile.Alert {
	return reconcile.Alert{
		ID:        b.ID,
		OwnerID:   b.OwnerID,
		DeviceID:  b.DeviceID,
		Timestamp: b.Timestamp,
		Changes:   b.Changes,
		Status:    b.Status,
	}
}

// AlertFromDomain builds a row from an alert.
func AlertFromDomain(a reconcile.Alert) BatchAlert {
	return BatchAlert{
		ID:        a.ID,
		OwnerID:   a.OwnerID,
		DeviceID:  a.DeviceID,
		Timestamp: a.Timestamp,
		Changes:   a.Changes,
		Status:    a.Status,
	}
}

// All returns every model owned by the ledger, for migration and schema checks.
func All() []any {
	return []any{&InventoryItem{}, &BatchAlert{}}
}
