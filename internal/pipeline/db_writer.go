package pipeline

import (
	"context"
	"log/slog"
	"time"

	"fleet-monitor/simulator/internal/domain"
	"fleet-monitor/simulator/internal/log"
	"fleet-monitor/simulator/internal/metrics"
)

type BatchStore interface {
	BatchInsert(ctx context.Context, snaps []*domain.Snapshot) error
}

type DBWriter struct {
	ch         <-chan *domain.Snapshot
	db         BatchStore
	batchSize  int
	flushMS    int
	retryDelay time.Duration
	log        *log.Logger
}

func NewDBWriter(
	ch <-chan *domain.Snapshot,
	db BatchStore,
	batchSize int,
	flushMS int,
	lg *log.Logger,
) *DBWriter {
	return &DBWriter{
		ch:         ch,
		db:         db,
		batchSize:  max(batchSize, 1),
		flushMS:    max(flushMS, 1),
		retryDelay: 500 * time.Millisecond,
		log:        lg,
	}
}

func (w *DBWriter) Run(ctx context.Context) {
	batch := make([]*domain.Snapshot, 0, w.batchSize)
	ticker := time.NewTicker(time.Duration(w.flushMS) * time.Millisecond)
	defer ticker.Stop()

	// The final flush runs even after ctx is cancelled.
	flushCtx := context.WithoutCancel(ctx)

	for {
		select {
		case msg, ok := <-w.ch:
			if !ok {
				if len(batch) > 0 {
					w.flush(flushCtx, batch)
				}
				return
			}
			batch = append(batch, msg)
			if len(batch) >= w.batchSize {
				w.flush(flushCtx, batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(flushCtx, batch)
				batch = batch[:0]
			}

		case <-ctx.Done():
			if len(batch) > 0 {
				w.flush(flushCtx, batch)
			}
			return
		}
	}
}

func (w *DBWriter) flush(ctx context.Context, batch []*domain.Snapshot) {
	err := w.db.BatchInsert(ctx, batch)
	if err != nil {
		w.log.Warn("db write failed, retrying", slog.Int("batch", len(batch)), slog.Any("err", err))
		time.Sleep(w.retryDelay)
		err = w.db.BatchInsert(ctx, batch)
		if err != nil {
			w.log.Error("db write permanently failed", slog.Int("batch", len(batch)), slog.Any("err", err))
			metrics.DBWriteFailures.Add(int64(len(batch)))
			return
		}
	}
	metrics.DBWriteSuccess.Add(int64(len(batch)))
}
