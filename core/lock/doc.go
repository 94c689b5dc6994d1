// Package lock serializes ledger writes per device and detects duplicate event
// deliveries.
//
// Two events for the same device planned from independent snapshots can both decide
// to create the same item. Holding a per-device lock across load, plan and commit
// removes that race.
//
// # Lockers
//
//   - Local: in-process keyed mutex, the default for a single instance.
//   - RedisLocker: SET NX PX with a random token, released by a compare-and-delete
//     script so an expired holder never frees a lock it no longer owns.
//   - Noop: for single-writer deployments and tests.
//
// # Deduplication
//
// Storage notifications are delivered at least once. RedisDeduper claims an event key
// with SET NX for DedupeTTLHours; a failed event is forgotten so a redelivery can
// retry it.
//
// # Usage
//
//	locker, err := lock.New(cfg.Redis, client)
//	release, err := locker.Acquire(ctx, "device:"+deviceID)
//	if err != nil {
//	    return err
//	}
//	defer release()
package lock
