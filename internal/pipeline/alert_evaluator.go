package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"fleet-monitor/simulator/internal/domain"
	"fleet-monitor/simulator/internal/log"
)

type AlertStore interface {
	InsertAlert(ctx context.Context, runID string, vehicleID int64, alert domain.Alert) error
}

type AlertDeduper interface {
	CheckAlertDedup(ctx context.Context, vehicleID int64, t domain.AlertType) (bool, error)
	SetAlertDedup(ctx context.Context, vehicleID int64, t domain.AlertType) error
	PublishAlert(ctx context.Context, payload []byte) error
}

// AlertEvaluator records the alerts attached to snapshots. Either backing
// store may be nil.
type AlertEvaluator struct {
	ch    <-chan *domain.Snapshot
	db    AlertStore
	dedup AlertDeduper
	log   *log.Logger
}

func NewAlertEvaluator(
	ch <-chan *domain.Snapshot,
	db AlertStore,
	dedup AlertDeduper,
	lg *log.Logger,
) *AlertEvaluator {
	return &AlertEvaluator{
		ch:    ch,
		db:    db,
		dedup: dedup,
		log:   lg,
	}
}

func (e *AlertEvaluator) Run(ctx context.Context) {
	for {
		select {
		case msg, ok := <-e.ch:
			if !ok {
				return
			}
			e.evaluate(context.WithoutCancel(ctx), msg)

		case <-ctx.Done():
			return
		}
	}
}

func (e *AlertEvaluator) evaluate(ctx context.Context, msg *domain.Snapshot) {
	for _, alert := range msg.Alerts {
		if e.dedup != nil {
			isDuplicate, err := e.dedup.CheckAlertDedup(ctx, msg.VehicleID, alert.Type)
			if err != nil {
				e.log.Warn("alert dedup check failed", slog.String("type", string(alert.Type)), slog.Any("err", err))
				continue
			}
			if isDuplicate {
				continue
			}
		}

		if e.db != nil {
			if err := e.db.InsertAlert(ctx, msg.RunID, msg.VehicleID, alert); err != nil {
				e.log.Warn("alert insert failed", slog.String("type", string(alert.Type)), slog.Any("err", err))
				continue
			}
		}

		e.log.Info("alert raised",
			slog.String("type", string(alert.Type)),
			slog.String("severity", string(alert.Severity)),
			slog.Float64("value", alert.Value),
			slog.String("plate", msg.Plate))

		if e.dedup == nil {
			continue
		}
		if err := e.dedup.SetAlertDedup(ctx, msg.VehicleID, alert.Type); err != nil {
			e.log.Warn("alert dedup set failed", slog.String("type", string(alert.Type)), slog.Any("err", err))
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"run_id":       msg.RunID,
			"vehicle_id":   msg.VehicleID,
			"plate":        msg.Plate,
			"alert_type":   string(alert.Type),
			"severity":     string(alert.Severity),
			"value":        alert.Value,
			"triggered_at": time.Now().Unix(),
		})
		if err := e.dedup.PublishAlert(ctx, payload); err != nil {
			e.log.Warn("alert publish failed", slog.Any("err", err))
		}
	}
}
