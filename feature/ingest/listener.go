package ingest

import (
	"context"
	"net/url"
	"time"

	"inventory-ledger/core/storage"
	"inventory-ledger/feature/inventory"

	"github.com/minio/minio-go/v7/pkg/notification"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EventHandler processes one finalized upload.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev inventory.Event, opts inventory.Options) (*inventory.Result, error)
}

// Listener turns bucket notifications into ledger events.
type Listener struct {
	client  storage.Client
	bucket  string
	cfg     Config
	handler EventHandler
	logger  *zap.Logger
}

// NewListener creates a listener for bucket.
func NewListener(client storage.Client, bucket string, cfg Config, handler EventHandler, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{
		client:  client,
		bucket:  bucket,
		cfg:     cfg,
		handler: handler,
		logger:  logger.With(zap.String("component", "ingest"), zap.String("bucket", bucket)),
	}
}

// Run subscribes to the bucket and processes events until ctx is cancelled.
// When the stream ends it re-subscribes after the reconnect delay.
func (l *Listener) Run(ctx context.Context) error {
	events := make(chan inventory.Event, l.cfg.WorkerCount())

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < l.cfg.WorkerCount(); i++ {
		g.Go(func() error {
			for ev := range events {
				l.process(gctx, ev)
			}
			return nil
		})
	}

	l.subscribe(ctx, events)
	close(events)
	_ = g.Wait()

	return ctx.Err()
}

func (l *Listener) subscribe(ctx context.Context, events chan<- inventory.Event) {
	for {
		l.logger.Info("Listening for bucket notifications",
			zap.String("prefix", l.cfg.Prefix),
			zap.String("suffix", l.cfg.Suffix),
			zap.Strings("events", l.cfg.EventList()),
		)

		stream := l.client.ListenBucketNotification(ctx, l.bucket, l.cfg.Prefix, l.cfg.Suffix, l.cfg.EventList())
		for info := range stream {
			if info.Err != nil {
				l.logger.Warn("Notification stream error", zap.Error(info.Err))
				continue
			}
			for _, ev := range toEvents(info, l.logger) {
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.cfg.ReconnectDelay()):
			l.logger.Info("Notification stream closed, reconnecting")
		}
	}
}

func (l *Listener) process(ctx context.Context, ev inventory.Event) {
	res, err := l.handler.HandleEvent(ctx, ev, inventory.Options{})
	if err != nil {
		// Already logged with full context by the service.
		return
	}
	if res.Skipped {
		l.logger.Debug("Event skipped", zap.String("object", ev.Name), zap.String("reason", res.SkipReason))
	}
}

// toEvents extracts ledger events from one notification batch. Object keys
// arrive URL encoded.
func toEvents(info notification.Info, logger *zap.Logger) []inventory.Event {
	out := make([]inventory.Event, 0, len(info.Records))
	for _, rec := range info.Records {
		key, err := url.QueryUnescape(rec.S3.Object.Key)
		if err != nil {
			logger.Warn("Undecodable object key", zap.String("key", rec.S3.Object.Key), zap.Error(err))
			continue
		}
		out = append(out, inventory.Event{
			Bucket:   rec.S3.Bucket.Name,
			Name:     key,
			Metadata: rec.S3.Object.UserMetadata,
		})
	}
	return out
}
