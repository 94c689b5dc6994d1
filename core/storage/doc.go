// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client and exposes the few operations the ledger needs
// around uploaded videos. It supports AWS S3, GCS interoperability endpoints and
// self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Operations
//
//   - BucketExists: Verifies access to the video bucket.
//   - MakeBucket: Creates the bucket during integrity fixes.
//   - ListObjects: Lists uploaded videos (supports prefix/recursive).
//   - StatObject: Reads an object's user metadata (userId, deviceId).
//   - ListenBucketNotification: Streams "object created" events for ingest.
//
// ObjectURI builds the scheme://bucket/object form handed to the vision service.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "videos")
package storage
