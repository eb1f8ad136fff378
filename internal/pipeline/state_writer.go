package pipeline

import (
	"context"
	"log/slog"

	"fleet-monitor/simulator/internal/domain"
	"fleet-monitor/simulator/internal/log"
)

type StateStore interface {
	PipelineStateUpdate(ctx context.Context, s *domain.Snapshot) error
}

// StateWriter mirrors every snapshot into the live state store. Ticks are
// paced at hundreds of milliseconds, so there is nothing to batch.
type StateWriter struct {
	ch    <-chan *domain.Snapshot
	store StateStore
	log   *log.Logger
}

func NewStateWriter(ch <-chan *domain.Snapshot, store StateStore, lg *log.Logger) *StateWriter {
	return &StateWriter{ch: ch, store: store, log: lg}
}

func (w *StateWriter) Run(ctx context.Context) {
	for {
		select {
		case msg, ok := <-w.ch:
			if !ok {
				return
			}
			if err := w.store.PipelineStateUpdate(ctx, msg); err != nil {
				w.log.Warn("state update failed", slog.Int64("vehicle_id", msg.VehicleID), slog.Any("err", err))
			}

		case <-ctx.Done():
			return
		}
	}
}
