package integrity

import (
	"context"
	"errors"

	"inventory-ledger/core/storage"
	"inventory-ledger/feature/integrity/checks"
	"inventory-ledger/feature/inventory/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNoDatabase is returned by schema checks when no database is connected.
var ErrNoDatabase = errors.New("database connection not available")

// Service handles integrity checks.
type Service struct {
	client storage.Client
	bucket string
	region string
	logger *zap.Logger
	db     *gorm.DB
}

// NewService creates a new integrity service.
func NewService(client storage.Client, bucket, region string, logger *zap.Logger, db *gorm.DB) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		region: region,
		logger: logger,
		db:     db,
	}
}

// CheckStorage reports on the video bucket.
func (s *Service) CheckStorage(ctx context.Context, limit int) (*checks.StorageReport, error) {
	return checks.CheckStorage(ctx, s.client, s.bucket, limit)
}

// FixStorage creates the video bucket if it is missing.
func (s *Service) FixStorage(ctx context.Context) error {
	return checks.FixStorage(ctx, s.client, s.bucket, s.region, s.logger)
}

// CheckSchema compares the ledger tables with their models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	return checks.CheckSchema(s.db, models.All()...)
}
