package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory-ledger/core/lock"
	"inventory-ledger/core/reconcile"
	"inventory-ledger/core/storage"
	"inventory-ledger/core/vision"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrDuplicateEvent marks an event that was already processed elsewhere.
var ErrDuplicateEvent = errors.New("duplicate event")

// Event is a finalized upload.
type Event struct {
	Bucket   string            `json:"bucket"`
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Key identifies the event for deduplication.
func (e Event) Key() string {
	return e.Bucket + "/" + strings.TrimPrefix(e.Name, "/")
}

// Options alters how one event is handled.
type Options struct {
	// DryRun plans without committing or claiming the event.
	DryRun bool

	// Confirm, when set, sees the planned result before anything is written.
	// Returning false drops the plan and releases the event claim. It runs
	// under the device lock and is skipped when the plan writes nothing.
	Confirm func(*Result) bool
}

// Result describes what happened to one event.
type Result struct {
	Event      Event              `json:"event"`
	Identity   Identity           `json:"identity"`
	ObjectURI  string             `json:"object_uri,omitempty"`
	Movement   *vision.Movement   `json:"movement,omitempty"`
	Outcome    *reconcile.Outcome `json:"outcome,omitempty"`
	DryRun     bool               `json:"dry_run"`
	Committed  bool               `json:"committed"`
	Declined   bool               `json:"declined,omitempty"`
	Skipped    bool               `json:"skipped"`
	SkipReason string             `json:"skip_reason,omitempty"`
	SkipErr    error              `json:"-"`
}

// Service runs the per-event pipeline: identity, analysis, plan, commit.
type Service struct {
	store    *Store
	analyzer vision.Analyzer
	engine   *reconcile.Engine
	locker   lock.Locker
	deduper  lock.Deduper
	scheme   string
	logger   *zap.Logger
	now      func() time.Time
	inflight singleflight.Group
}

// Option customizes the service.
type Option func(*Service)

// WithLocker sets the per-device locker. Defaults to an in-process keyed mutex.
func WithLocker(l lock.Locker) Option {
	return func(s *Service) {
		if l != nil {
			s.locker = l
		}
	}
}

// WithDeduper sets the cross-process duplicate detector.
func WithDeduper(d lock.Deduper) Option {
	return func(s *Service) {
		if d != nil {
			s.deduper = d
		}
	}
}

// WithClock overrides the detection timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithScheme sets the URI scheme of objects sent for analysis.
func WithScheme(scheme string) Option {
	return func(s *Service) {
		s.scheme = scheme
	}
}

// NewService creates a new inventory service.
func NewService(store *Store, analyzer vision.Analyzer, engine *reconcile.Engine, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:    store,
		analyzer: analyzer,
		engine:   engine,
		locker:   lock.NewLocal(),
		deduper:  lock.Noop{},
		scheme:   "gs",
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleEvent processes one finalized upload. Unrecognized paths and duplicate
// deliveries come back as skipped results with a nil error. Concurrent calls for
// the same object share one execution, which outlives any single caller's
// cancellation; each caller still returns as soon as its own ctx is done.
func (s *Service) HandleEvent(ctx context.Context, ev Event, opts Options) (*Result, error) {
	if strings.TrimSpace(ev.Bucket) == "" || strings.TrimSpace(ev.Name) == "" {
		return nil, errors.New("event requires bucket and name")
	}

	key := ev.Key()
	if opts.DryRun {
		key = "dry-run:" + key
	}
	shared := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(key, func() (any, error) {
		return s.process(shared, ev, opts)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Shared {
			s.logger.Debug("Collapsed concurrent delivery", zap.String("object", ev.Key()))
		}
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Result), nil
	}
}

func (s *Service) process(ctx context.Context, ev Event, opts Options) (*Result, error) {
	res := &Result{Event: ev, DryRun: opts.DryRun}
	l := s.logger.With(zap.String("bucket", ev.Bucket), zap.String("object", ev.Name))

	id, err := ExtractIdentity(ev.Name, ev.Metadata)
	if err != nil {
		l.Warn("Skipping event", zap.Error(err))
		return res.skip(err), nil
	}
	res.Identity = id
	l = l.With(zap.String("user_id", id.UserID), zap.String("device_id", id.DeviceID))

	if !opts.DryRun {
		claimed, err := s.deduper.Claim(ctx, ev.Key())
		if err != nil {
			return nil, fmt.Errorf("failed to claim event: %w", err)
		}
		if !claimed {
			l.Info("Skipping duplicate event")
			return res.skip(ErrDuplicateEvent), nil
		}
	}

	if err := s.run(ctx, res, opts, l); err != nil {
		if !opts.DryRun {
			s.forget(ctx, ev, l)
		}
		l.Error("Event failed", zap.Error(err))
		return nil, err
	}
	if res.Declined {
		s.forget(ctx, ev, l)
	}
	return res, nil
}

func (s *Service) forget(ctx context.Context, ev Event, l *zap.Logger) {
	if err := s.deduper.Forget(context.WithoutCancel(ctx), ev.Key()); err != nil {
		l.Warn("Failed to release event claim", zap.Error(err))
	}
}

func (s *Service) run(ctx context.Context, res *Result, opts Options, l *zap.Logger) error {
	res.ObjectURI = storage.ObjectURI(s.scheme, res.Event.Bucket, res.Event.Name)

	movement, err := s.analyzer.Analyze(ctx, res.ObjectURI)
	if err != nil {
		return fmt.Errorf("analysis failed for %s: %w", res.ObjectURI, err)
	}
	res.Movement = movement

	release, err := s.locker.Acquire(ctx, "device:"+res.Identity.DeviceID)
	if err != nil {
		return err
	}
	defer release()

	snap, err := s.store.LoadSnapshot(ctx, res.Identity.DeviceID)
	if err != nil {
		return err
	}

	outcome := s.engine.Reconcile(reconcile.Input{
		Added:      movement.Added,
		Removed:    movement.Removed,
		Discarded:  movement.Discarded,
		OwnerID:    res.Identity.UserID,
		DeviceID:   res.Identity.DeviceID,
		DetectedAt: s.now().UTC(),
	}, snap)
	res.Outcome = outcome

	for _, obs := range outcome.Plan.Unresolved {
		l.Warn("Removal matched no item",
			zap.String("name", obs.Name),
			zap.String("category", reconcile.NormalizeCategory(obs.Category)),
		)
	}

	if res.DryRun {
		l.Info("Planned event (dry run)", planFields(outcome)...)
		return nil
	}

	writes := len(outcome.Plan.Mutations) > 0 || outcome.Alert != nil
	if opts.Confirm != nil && writes && !opts.Confirm(res) {
		res.Declined = true
		l.Info("Plan declined, nothing written", planFields(outcome)...)
		return nil
	}

	if err := s.store.Commit(ctx, outcome.Plan.Mutations, outcome.Alert); err != nil {
		return fmt.Errorf("failed to commit plan: %w", err)
	}
	res.Committed = true
	l.Info("Reconciled event", planFields(outcome)...)
	return nil
}

func (r *Result) skip(reason error) *Result {
	r.Skipped = true
	r.SkipErr = reason
	r.SkipReason = reason.Error()
	return r
}

func planFields(o *reconcile.Outcome) []zap.Field {
	sum := o.Plan.Summary
	fields := []zap.Field{
		zap.Int("observed", sum.Observed),
		zap.Int("created", sum.Created),
		zap.Int("incremented", sum.Incremented),
		zap.Int("decremented", sum.Decremented),
		zap.Int("deleted", sum.Deleted),
		zap.Int("zeroed", sum.Zeroed),
		zap.Int("unresolved", sum.Unresolved),
	}
	if o.Alert != nil {
		fields = append(fields, zap.String("alert_id", o.Alert.ID))
	}
	return fields
}

// Inventory returns the records of a device.
func (s *Service) Inventory(ctx context.Context, deviceID string) ([]reconcile.Record, error) {
	items, err := s.store.ListInventory(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	records := make([]reconcile.Record, len(items))
	for i, item := range items {
		records[i] = item.ToRecord()
	}
	return records, nil
}

// Alerts returns alerts matching f.
func (s *Service) Alerts(ctx context.Context, f AlertFilter) ([]reconcile.Alert, error) {
	rows, err := s.store.ListAlerts(ctx, f)
	if err != nil {
		return nil, err
	}
	alerts := make([]reconcile.Alert, len(rows))
	for i, row := range rows {
		alerts[i] = row.ToAlert()
	}
	return alerts, nil
}
