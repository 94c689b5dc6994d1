package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventory-ledger/core/reconcile"
	"inventory-ledger/feature/inventory/models"

	"gorm.io/gorm"
)

// ErrNoDatabase is returned when the store has no connection.
var ErrNoDatabase = errors.New("database connection not available")

// Store reads and writes the ledger tables.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore creates a store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// LoadSnapshot reads every record of a device in creation order.
func (s *Store) LoadSnapshot(ctx context.Context, deviceID string) (*reconcile.Snapshot, error) {
	items, err := s.ListInventory(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	records := make([]reconcile.Record, len(items))
	for i, item := range items {
		records[i] = item.ToRecord()
	}
	return reconcile.NewSnapshot(records), nil
}

// ListInventory returns a device's rows in creation order.
func (s *Store) ListInventory(ctx context.Context, deviceID string) ([]models.InventoryItem, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	var items []models.InventoryItem
	err := s.db.WithContext(ctx).
		Where("source_device_id = ?", deviceID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory for device %s: %w", deviceID, err)
	}
	return items, nil
}

// AlertFilter narrows ListAlerts. Empty fields match everything.
type AlertFilter struct {
	DeviceID string
	Status   string
	Limit    int
}

// ListAlerts returns alerts newest first.
func (s *Store) ListAlerts(ctx context.Context, f AlertFilter) ([]models.BatchAlert, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	q := s.db.WithContext(ctx).Order("timestamp DESC, id ASC")
	if f.DeviceID != "" {
		q = q.Where("device_id = ?", f.DeviceID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var alerts []models.BatchAlert
	if err := q.Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// Commit applies the mutations and the optional alert in one transaction. Either
// everything is written or nothing is. Quantity changes are relative so that a
// concurrent writer's change is never overwritten. Created rows get created_at
// one microsecond apart in mutation order, so the next snapshot lists them in
// the order they were planned.
func (s *Store) Commit(ctx context.Context, mutations []reconcile.Mutation, alert *reconcile.Alert) error {
	if s.db == nil {
		return ErrNoDatabase
	}
	if len(mutations) == 0 && alert == nil {
		return nil
	}

	base := s.now().UTC().Truncate(time.Microsecond)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created := 0
		for _, m := range mutations {
			createdAt := base.Add(time.Duration(created) * time.Microsecond)
			if m.Type == reconcile.MutationCreate {
				created++
			}
			if err := applyMutation(tx, m, createdAt); err != nil {
				return fmt.Errorf("%s %s: %w", m.Type, m.RecordID, err)
			}
		}
		if alert != nil {
			row := models.AlertFromDomain(*alert)
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("create alert %s: %w", alert.ID, err)
			}
		}
		return nil
	})
}

func applyMutation(tx *gorm.DB, m reconcile.Mutation, createdAt time.Time) error {
	item := func() *gorm.DB {
		return tx.Model(&models.InventoryItem{}).Where("id = ?", m.RecordID)
	}

	switch m.Type {
	case reconcile.MutationCreate:
		if m.Record == nil {
			return errors.New("create without record")
		}
		row := models.ItemFromRecord(*m.Record)
		row.CreatedAt = createdAt
		return tx.Create(&row).Error
	case reconcile.MutationIncrement:
		return expectRow(item().Updates(map[string]any{
			"quantity":      gorm.Expr("quantity + ?", 1),
			"last_detected": m.DetectedAt,
		}))
	case reconcile.MutationDecrement:
		return expectRow(item().Where("quantity > ?", 0).
			Update("quantity", gorm.Expr("quantity - ?", 1)))
	case reconcile.MutationZero:
		return expectRow(item().Update("quantity", 0))
	case reconcile.MutationDelete:
		return expectRow(tx.Where("id = ?", m.RecordID).Delete(&models.InventoryItem{}))
	default:
		return fmt.Errorf("unknown mutation type %q", m.Type)
	}
}

// expectRow turns a write that touched nothing into an error so the
// transaction rolls back instead of committing a partial plan.
func expectRow(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
