package usecase

import (
	"context"
	"time"

	"travel-records-service/internal/domain/entity"
	"travel-records-service/internal/domain/repository"
	"travel-records-service/pkg/logger"
	"travel-records-service/pkg/metrics"
)

// MirrorWorker copies record snapshots to a RecordMirror in the background.
// Only the newest pending snapshot is kept; older ones are dropped.
type MirrorWorker struct {
	mirror  repository.RecordMirror
	pending chan []entity.Record
	timeout time.Duration
	metrics *metrics.Metrics
	logger  logger.Logger
}

// NewMirrorWorker creates a worker for mirror. timeout bounds each sync.
func NewMirrorWorker(mirror repository.RecordMirror, timeout time.Duration, m *metrics.Metrics, log logger.Logger) *MirrorWorker {
	return &MirrorWorker{
		mirror:  mirror,
		pending: make(chan []entity.Record, 1),
		timeout: timeout,
		metrics: m,
		logger:  log.With("mirror", mirror.Name()),
	}
}

// Publish queues a snapshot, replacing one that has not been synced yet.
// It never blocks.
func (w *MirrorWorker) Publish(records []entity.Record) {
	for {
		select {
		case w.pending <- records:
			return
		default:
		}
		select {
		case <-w.pending:
		default:
		}
	}
}

// Run syncs snapshots until ctx is cancelled, then flushes the last pending one
func (w *MirrorWorker) Run(ctx context.Context) {
	w.logger.Info("Mirror worker started")
	for {
		select {
		case <-ctx.Done():
			select {
			case records := <-w.pending:
				w.sync(context.Background(), records)
			default:
			}
			w.logger.Info("Mirror worker stopped")
			return
		case records := <-w.pending:
			w.sync(ctx, records)
		}
	}
}

func (w *MirrorWorker) sync(parent context.Context, records []entity.Record) {
	ctx, cancel := context.WithTimeout(parent, w.timeout)
	defer cancel()

	start := time.Now()
	if err := w.mirror.Sync(ctx, records); err != nil {
		w.metrics.MirrorSyncs.WithLabelValues("error").Inc()
		w.logger.Error("Failed to sync records to mirror", "records", len(records), "error", err)
		return
	}
	w.metrics.MirrorSyncs.WithLabelValues("ok").Inc()
	w.logger.Debug("Synced records to mirror", "records", len(records), "duration", time.Since(start))
}
