package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"inventory-ledger/core/lock"
	"inventory-ledger/core/reconcile"
	"inventory-ledger/feature/inventory/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const videoPath = "users/u1/devices/fridge-1/clip.mp4"

func TestHandleEvent_CreatesNewItem(t *testing.T) {
	db := newTestDB(t)
	an := &fakeAnalyzer{movement: movement([]reconcile.Observation{obs("apple", "fruit")}, nil)}
	svc := newTestService(db, an)

	res, err := svc.HandleEvent(context.Background(), Event{Bucket: "videos", Name: videoPath}, Options{})
	require.NoError(t, err)

	assert.True(t, res.Committed)
	assert.Equal(t, Identity{UserID: "u1", DeviceID: "fridge-1"}, res.Identity)
	assert.Equal(t, "gs://videos/"+videoPath, an.lastURI)
	assert.Nil(t, res.Outcome.Alert)

	item, ok := loadItem(t, db, "item-1")
	require.True(t, ok)
	assert.Equal(t, "apple", item.Name)
	assert.Equal(t, "fruit", item.Category)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, "fridge-1", item.SourceDeviceID)
	assert.Equal(t, "u1", item.OwnerID)
	assert.True(t, item.LastDetected.Equal(fixedNow))
}

func TestHandleEvent_FuzzyRemovalDecrements(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, "r1", "apple", "fruit", "fridge-1", 2, fixedNow)
	an := &fakeAnalyzer{movement: movement(nil, []reconcile.Observation{obs("aple", "fruit")})}

	res, err := newTestService(db, an).HandleEvent(context.Background(), Event{Bucket: "videos", Name: videoPath}, Options{})
	require.NoError(t, err)
	require.Len(t, res.Outcome.Plan.Mutations, 1)
	assert.Equal(t, reconcile.MutationDecrement, res.Outcome.Plan.Mutations[0].Type)

	item, _ := loadItem(t, db, "r1")
	assert.Equal(t, 1, item.Quantity)
}

func TestHandleEvent_LastUnitDeleted(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, "m1", "milk", "dairy", "fridge-1", 1, fixedNow)
	an := &fakeAnalyzer{movement: movement(nil, []reconcile.Observation{obs("milk", "dairy")})}

	_, err := newTestService(db, an).HandleEvent(context.Background(), Event{Bucket: "videos", Name: videoPath}, Options{})
	require.NoError(t, err)

	_, ok := loadItem(t, db, "m1")
	assert.False(t, ok)
}

func TestHandleEvent_AlertAboveThreshold(t *testing.T) {
	db := newTestDB(t)
	an := &fakeAnalyzer{movement: movement(
		[]reconcile.Observation{obs("apple", "fruit"), obs("banana", "fruit"), obs("cheese", "dairy")},
		[]reconcile.Observation{obs("ghost", "misc")},
	)}

	res, err := newTestService(db, an).HandleEvent(context.Background(), Event{Bucket: "videos", Name: videoPath}, Options{})
	require.NoError(t, err)
	require.NotNil(t, res.Outcome.Alert)
	assert.Equal(t, 1, res.Outcome.Plan.Summary.Unresolved)

	var alerts []models.BatchAlert
	require.NoError(t, db.Find(&alerts).Error)
	require.Len(t, alerts, 1)
	assert.Equal(t, "fridge-1", alerts[0].DeviceID)
	assert.Equal(t, reconcile.AlertStatusPending, alerts[0].Status)
	assert.Len(t, alerts[0].Changes, 3)
}

func TestHandleEvent_DryRunWritesNothing(t *testing.T) {
	db := newTestDB(t)
	an := &fakeAnalyzer{movement: movement([]reconcile.Observation{obs("apple", "fruit")}, nil)}

	res, err := newTestService(db, an).HandleEvent(context.Background(), Event{Bucket: "videos", Name: videoPath}, Options{DryRun: true})
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.False(t, res.Committed)
	assert.Len(t, res.Outcome.Plan.Mutations, 1)

	var count int64
	require.NoError(t, db.Model(&models.InventoryItem{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHandleEvent_UnrecognizedPathSkipped(t *testing.T) {
	db := newTestDB(t)
	an := &fakeAnalyzer{movement: movement(nil, nil)}

	res, err := newTestService(db, an).HandleEvent(context.Background(), Event{Bucket: "videos", Name: "misc/clip.mp4"}, Options{})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.ErrorIs(t, res.SkipErr, ErrUnrecognizedPath)
	assert.Zero(t, an.calls.Load())
}

func TestHandleEvent_AnalysisFailureWritesNothing(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, "m1", "milk", "dairy", "fridge-1", 1, fixedNow)
	an := &fakeAnalyzer{err: errors.New("vision down")}

	res, err := newTestService(db, an).HandleEvent(context.Background(), Event{Bucket: "videos", Name: videoPath}, Options{})
	assert.ErrorContains(t, err, "vision down")
	assert.Nil(t, res)

	item, ok := loadItem(t, db, "m1")
	require.True(t, ok)
	assert.Equal(t, 1, item.Quantity)
}

type memoryDeduper struct {
	mu      sync.Mutex
	claimed map[string]bool
}

func (m *memoryDeduper) Claim(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claimed[key] {
		return false, nil
	}
	m.claimed[key] = true
	return true, nil
}

func (m *memoryDeduper) Forget(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claimed, key)
	return nil
}

func TestHandleEvent_DuplicateDeliverySkipped(t *testing.T) {
	db := newTestDB(t)
	an := &fakeAnalyzer{movement: movement([]reconcile.Observation{obs("apple", "fruit")}, nil)}
	dd := &memoryDeduper{claimed: map[string]bool{}}
	svc := newTestService(db, an, WithDeduper(dd))
	ev := Event{Bucket: "videos", Name: videoPath}

	_, err := svc.HandleEvent(context.Background(), ev, Options{})
	require.NoError(t, err)

	res, err := svc.HandleEvent(context.Background(), ev, Options{})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.ErrorIs(t, res.SkipErr, ErrDuplicateEvent)
	assert.Equal(t, int32(1), an.calls.Load())

	item, _ := loadItem(t, db, "item-1")
	assert.Equal(t, 1, item.Quantity)
}

func TestHandleEvent_FailureReleasesClaim(t *testing.T) {
	db := newTestDB(t)
	an := &fakeAnalyzer{err: errors.New("timeout")}
	dd := &memoryDeduper{claimed: map[string]bool{}}
	svc := newTestService(db, an, WithDeduper(dd))
	ev := Event{Bucket: "videos", Name: videoPath}

	_, err := svc.HandleEvent(context.Background(), ev, Options{})
	require.Error(t, err)
	assert.Empty(t, dd.claimed)
}

func TestHandleEvent_ConcurrentEventsSameDevice(t *testing.T) {
	db := newTestDB(t)
	an := &fakeAnalyzer{
		movement: movement([]reconcile.Observation{obs("apple", "fruit")}, nil),
		delay:    5 * time.Millisecond,
	}
	svc := newTestService(db, an, WithLocker(lock.NewLocal()))

	var wg sync.WaitGroup
	for _, name := range []string{
		"users/u1/devices/fridge-1/a.mp4",
		"users/u1/devices/fridge-1/b.mp4",
		"users/u1/devices/fridge-1/c.mp4",
	} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := svc.HandleEvent(context.Background(), Event{Bucket: "videos", Name: name}, Options{})
			assert.NoError(t, err)
		}(name)
	}
	wg.Wait()

	var items []models.InventoryItem
	require.NoError(t, db.Find(&items).Error)
	require.Len(t, items, 1, "serialized events must resolve to the same record")
	assert.Equal(t, 3, items[0].Quantity)
}

func TestHandleEvent_InvalidEvent(t *testing.T) {
	_, err := newTestService(newTestDB(t), &fakeAnalyzer{}).HandleEvent(context.Background(), Event{Name: videoPath}, Options{})
	assert.Error(t, err)
}

func TestService_InventoryAndAlerts(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, "a", "apple", "fruit", "fridge-1", 2, fixedNow)
	require.NoError(t, db.Create(&models.BatchAlert{ID: "al", DeviceID: "fridge-1", Status: "pending", Timestamp: fixedNow}).Error)

	svc := newTestService(db, &fakeAnalyzer{})
	records, err := svc.Inventory(context.Background(), "fridge-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "fridge-1", records[0].DeviceID)

	alerts, err := svc.Alerts(context.Background(), AlertFilter{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "al", alerts[0].ID)
}

func TestHandleEvent_CancelledCallerDoesNotFailSharedCaller(t *testing.T) {
	db := newTestDB(t)
	an := &fakeAnalyzer{
		movement: movement([]reconcile.Observation{obs("apple", "fruit")}, nil),
		delay:    150 * time.Millisecond,
	}
	svc := newTestService(db, an, WithLocker(lock.NewLocal()))
	ev := Event{Bucket: "videos", Name: videoPath}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.HandleEvent(ctxA, ev, Options{})
		errA <- err
	}()
	require.Eventually(t, func() bool { return an.calls.Load() == 1 }, time.Second, time.Millisecond)

	type outcome struct {
		res *Result
		err error
	}
	doneB := make(chan outcome, 1)
	go func() {
		res, err := svc.HandleEvent(context.Background(), ev, Options{})
		doneB <- outcome{res, err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	b := <-doneB
	require.NoError(t, b.err)
	assert.True(t, b.res.Committed)
	assert.Equal(t, int32(1), an.calls.Load())

	item, ok := loadItem(t, db, "item-1")
	require.True(t, ok)
	assert.Equal(t, 1, item.Quantity)
}

func TestHandleEvent_DeclinedCommitWritesNothing(t *testing.T) {
	db := newTestDB(t)
	seedItem(t, db, "m1", "milk", "dairy", "fridge-1", 2, fixedNow)
	an := &fakeAnalyzer{movement: movement(
		[]reconcile.Observation{obs("apple", "fruit")},
		[]reconcile.Observation{obs("milk", "dairy")},
	)}
	dd := &memoryDeduper{claimed: map[string]bool{}}
	svc := newTestService(db, an, WithDeduper(dd))
	ev := Event{Bucket: "videos", Name: videoPath}

	var seen *Result
	res, err := svc.HandleEvent(context.Background(), ev, Options{Confirm: func(r *Result) bool {
		seen = r
		return false
	}})
	require.NoError(t, err)

	require.NotNil(t, seen)
	require.NotNil(t, seen.Outcome)
	assert.Len(t, seen.Outcome.Plan.Mutations, 2)
	assert.False(t, res.Committed)
	assert.True(t, res.Declined)
	assert.Empty(t, dd.claimed, "declined event can be replayed")

	var count int64
	require.NoError(t, db.Model(&models.InventoryItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	item, _ := loadItem(t, db, "m1")
	assert.Equal(t, 2, item.Quantity)

	res, err = svc.HandleEvent(context.Background(), ev, Options{Confirm: func(*Result) bool { return true }})
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.False(t, res.Declined)
	item, _ = loadItem(t, db, "m1")
	assert.Equal(t, 1, item.Quantity)
}

func TestHandleEvent_ConfirmSkippedWhenNothingToWrite(t *testing.T) {
	db := newTestDB(t)
	an := &fakeAnalyzer{movement: movement(nil, nil)}

	asked := false
	res, err := newTestService(db, an).HandleEvent(context.Background(), Event{Bucket: "videos", Name: videoPath}, Options{
		Confirm: func(*Result) bool { asked = true; return false },
	})
	require.NoError(t, err)
	assert.False(t, asked)
	assert.True(t, res.Committed)
}
