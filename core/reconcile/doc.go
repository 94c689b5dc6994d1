// Package reconcile implements the inventory reconciliation engine.
//
// A video event reports items as added or removed. Nothing links an observation to a
// ledger row except its name and category, so every observation is resolved by fuzzy
// name similarity within its category, then turned into a ledger mutation.
//
// # Components
//
// 1. Score: Dice coefficient over character bigrams, after stripping whitespace and
// folding case.
//
// 2. Snapshot: the device's records, loaded once per event and mutated in place so
// that later observations in the same event see the effects of earlier ones.
//
// 3. Resolver: picks the highest-scoring record of the same category, keeping the first
// on ties, and rejects anything below the match threshold.
//
// 4. Planner: runs all additions, then all removals, emitting create / increment /
// decrement / delete (or zero) mutations and a change log.
//
// 5. AlertTrigger: raises one pending alert when the event carried more observations
// than the alert threshold.
//
// # Concurrency
//
// The engine is pure and holds no locks. Two events for the same device planned from
// independent snapshots can race; callers serialize per device (see core/lock) and
// commit relative quantity updates.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(reconcile.DefaultConfig())
//	snap := reconcile.NewSnapshot(records)
//	outcome := engine.Reconcile(reconcile.Input{
//	    Added:      movement.Added,
//	    Removed:    movement.Removed,
//	    OwnerID:    "user-1",
//	    DeviceID:   "fridge-1",
//	    DetectedAt: time.Now(),
//	}, snap)
//	err := store.Commit(ctx, outcome.Plan.Mutations, outcome.Alert)
package reconcile
