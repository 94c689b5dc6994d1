package checks

import (
	"context"
	"fmt"
	"strings"

	"inventory-ledger/core/storage"
	"inventory-ledger/feature/inventory"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const (
	// DefaultScanLimit bounds how many objects one storage check lists.
	DefaultScanLimit = 1000
	maxSamples       = 20
)

// StorageReport describes the video bucket.
type StorageReport struct {
	Bucket       string   `json:"bucket"`
	Exists       bool     `json:"exists"`
	Scanned      int      `json:"scanned"`
	Recognized   int      `json:"recognized"`
	Unrecognized []string `json:"unrecognized"`
	Truncated    bool     `json:"truncated"`
}

// CheckStorage verifies the bucket exists and samples up to limit objects,
// reporting the ones no owner and device can be derived from. Such uploads
// would be skipped by the ledger.
func CheckStorage(ctx context.Context, client storage.Client, bucket string, limit int) (*StorageReport, error) {
	if limit <= 0 {
		limit = DefaultScanLimit
	}
	report := &StorageReport{Bucket: bucket, Unrecognized: []string{}}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	report.Exists = exists
	if !exists {
		return report, nil
	}

	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := minio.ListObjectsOptions{Recursive: true, WithMetadata: true}
	for obj := range client.ListObjects(listCtx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", bucket, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		if report.Scanned == limit {
			report.Truncated = true
			break
		}
		report.Scanned++

		if _, err := inventory.ExtractIdentity(obj.Key, obj.UserMetadata); err != nil {
			if len(report.Unrecognized) < maxSamples {
				report.Unrecognized = append(report.Unrecognized, obj.Key)
			}
			continue
		}
		report.Recognized++
	}

	return report, nil
}

// FixStorage creates the bucket when it is missing.
func FixStorage(ctx context.Context, client storage.Client, bucket, region string, logger *zap.Logger) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		logger.Error("Failed to create bucket", zap.String("bucket", bucket), zap.Error(err))
		return err
	}
	logger.Info("Created missing bucket", zap.String("bucket", bucket))
	return nil
}
