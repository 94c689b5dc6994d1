package inventory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"inventory-ledger/core/database"
	"inventory-ledger/core/reconcile"
	"inventory-ledger/core/vision"
	"inventory-ledger/feature/inventory/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, 10, 21, 9, 30, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, models.All()...))
	return db
}

type fakeAnalyzer struct {
	mu       sync.Mutex
	movement *vision.Movement
	err      error
	delay    time.Duration
	calls    atomic.Int32
	lastURI  string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, objectURI string) (*vision.Movement, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastURI = objectURI
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.movement, nil
}

func movement(added, removed []reconcile.Observation) *vision.Movement {
	return &vision.Movement{Added: added, Removed: removed}
}

func obs(name, category string) reconcile.Observation {
	return reconcile.Observation{Name: name, Category: category}
}

func newTestService(db *gorm.DB, analyzer vision.Analyzer, opts ...Option) *Service {
	n := 0
	engine := reconcile.NewEngine(reconcile.DefaultConfig(), reconcile.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("item-%d", n)
	}))
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(NewStore(db), analyzer, engine, zap.NewNop(), opts...)
}

func seedItem(t *testing.T, db *gorm.DB, id, name, category, device string, qty int, createdAt time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.InventoryItem{
		ID:             id,
		Name:           name,
		NameNormalized: name,
		Category:       category,
		Quantity:       qty,
		LastDetected:   createdAt,
		SourceDeviceID: device,
		OwnerID:        "u1",
		CreatedAt:      createdAt,
	}).Error)
}

func loadItem(t *testing.T, db *gorm.DB, id string) (models.InventoryItem, bool) {
	t.Helper()
	var item models.InventoryItem
	err := db.Where("id = ?", id).Take(&item).Error
	if err == gorm.ErrRecordNotFound {
		return item, false
	}
	require.NoError(t, err)
	return item, true
}
