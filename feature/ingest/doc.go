// Package ingest feeds the ledger from storage notifications.
//
// The Listener subscribes to "object created" events of the video bucket with
// minio's ListenBucketNotification, decodes the URL encoded object keys, and hands
// each upload with its user metadata to the inventory service through a small worker
// pool. Handler failures are logged by the service and never stop the stream; when the
// stream ends the listener re-subscribes after a delay.
//
// Notifications are delivered at least once. Enable redis deduplication when several
// instances listen to the same bucket.
package ingest
