package cmd

import (
	"context"
	"fmt"

	"inventory-ledger/core/config"
	"inventory-ledger/core/database"
	"inventory-ledger/core/lock"
	"inventory-ledger/core/logger"
	"inventory-ledger/core/reconcile"
	"inventory-ledger/core/storage"
	"inventory-ledger/core/vision"
	"inventory-ledger/feature/inventory"
	"inventory-ledger/feature/inventory/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime holds the shared dependencies every command builds the same way.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	storage storage.Client
	redis   *redis.Client
}

// bootstrap loads config and logger, then connects storage, the database and
// redis. A missing database only fails when requireDB is set.
func bootstrap(ctx context.Context, requireDB bool) (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: logg}

	rt.storage, err = storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	if conn, err := database.Connect(cfg.Database); err != nil {
		if requireDB {
			return nil, fmt.Errorf("database connection required: %w", err)
		}
		logg.Warn("Optional database connection failed", zap.Error(err))
	} else {
		rt.db = conn
		logg.Info("Connected to ledger database", zap.String("driver", cfg.Database.Driver))
		if cfg.Database.AutoMigrate {
			if err := database.Migrate(conn, models.All()...); err != nil {
				return nil, err
			}
			logg.Info("Ledger schema migrated")
		}
	}

	if cfg.Redis.Addr != "" {
		rt.redis, err = lock.NewClient(ctx, cfg.Redis)
		if err != nil {
			if cfg.Redis.LockMode == lock.ModeRedis {
				return nil, err
			}
			logg.Warn("Redis unavailable, falling back to in-process locking", zap.Error(err))
		}
	}

	return rt, nil
}

// inventoryService wires the reconciliation pipeline.
func (rt *runtime) inventoryService(ctx context.Context) (*inventory.Service, error) {
	var rc redis.UniversalClient
	if rt.redis != nil {
		rc = rt.redis
	}

	locker, err := lock.New(rt.cfg.Redis, rc)
	if err != nil {
		return nil, err
	}

	ts, err := vision.NewTokenSource(ctx, rt.cfg.Vision)
	if err != nil {
		return nil, err
	}

	svc := inventory.NewService(
		inventory.NewStore(rt.db),
		vision.NewClient(rt.cfg.Vision, ts),
		reconcile.NewEngine(rt.cfg.Reconcile),
		rt.logger,
		inventory.WithLocker(locker),
		inventory.WithDeduper(lock.NewDeduper(rt.cfg.Redis, rc)),
		inventory.WithScheme(rt.cfg.Vision.Scheme),
	)
	return svc, nil
}

// Close releases connections and flushes the logger.
func (rt *runtime) Close() {
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
	if rt.db != nil {
		if sqlDB, err := rt.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = rt.logger.Sync()
}

// readService builds an inventory service for queries only. It never analyzes.
func (rt *runtime) readService() *inventory.Service {
	return inventory.NewService(inventory.NewStore(rt.db), nil, reconcile.NewEngine(rt.cfg.Reconcile), rt.logger)
}
