package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fleet-monitor/simulator/internal/config"
	"fleet-monitor/simulator/internal/domain"
)

type TimescaleStore struct {
	pool *pgxpool.Pool
}

func ConnString(cfg *config.Config) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?pool_max_conns=%d",
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBMaxConns,
	)
}

func NewTimescaleStore(ctx context.Context, cfg *config.Config) (*TimescaleStore, error) {
	pool, err := pgxpool.New(ctx, ConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create db pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &TimescaleStore{pool: pool}, nil
}

func (s *TimescaleStore) Close() {
	s.pool.Close()
}

func (s *TimescaleStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

var telemetryColumns = []string{
	"timestamp",
	"run_id",
	"vehicle_id",
	"plate",
	"leg",
	"tick",
	"latitude",
	"longitude",
	"speed_kmh",
	"fuel_pct",
	"cargo_temp_celsius",
	"status",
	"raw_payload",
}

func telemetryRows(snaps []*domain.Snapshot) [][]interface{} {
	rows := make([][]interface{}, len(snaps))
	for i, s := range snaps {
		raw, _ := json.Marshal(s)
		rows[i] = []interface{}{
			s.Timestamp,
			s.RunID,
			s.VehicleID,
			s.Plate,
			s.LegLabel,
			s.Tick,
			s.Position.Lat,
			s.Position.Lng,
			s.SpeedKmh,
			s.FuelPct,
			s.CargoTempC,
			string(s.Status),
			string(raw),
		}
	}
	return rows
}

func (s *TimescaleStore) BatchInsert(ctx context.Context, snaps []*domain.Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	_, err := s.pool.CopyFrom(
		ctx,
		pgx.Identifier{"simulated_telemetry"},
		telemetryColumns,
		pgx.CopyFromRows(telemetryRows(snaps)),
	)
	if err != nil {
		return fmt.Errorf("CopyFrom failed for batch of %d: %w", len(snaps), err)
	}

	return nil
}

func (s *TimescaleStore) InsertAlert(
	ctx context.Context,
	runID string,
	vehicleID int64,
	alert domain.Alert,
) error {
	query := `
		INSERT INTO simulated_alerts
			(run_id, vehicle_id, alert_type, severity, triggered_value, created_at)
		VALUES
			($1, $2, $3, $4, $5, NOW())
		ON CONFLICT DO NOTHING
	`
	_, err := s.pool.Exec(
		ctx,
		query,
		runID,
		vehicleID,
		string(alert.Type),
		string(alert.Severity),
		alert.Value,
	)
	return err
}

var recallColumns = []string{
	"run_id",
	"vehicle_id",
	"plate",
	"succeeded",
	"error",
	"depot_lat",
	"depot_lng",
	"created_at",
}

func recallRows(runID string, report domain.RecallReport, now time.Time) [][]interface{} {
	rows := make([][]interface{}, len(report.Outcomes))
	for i, o := range report.Outcomes {
		var errText *string
		if o.Err != nil {
			msg := o.Err.Error()
			errText = &msg
		}
		rows[i] = []interface{}{
			runID,
			o.VehicleID,
			o.Plate,
			o.Succeeded,
			errText,
			report.Depot.Lat,
			report.Depot.Lng,
			now,
		}
	}
	return rows
}

func (s *TimescaleStore) RecordRecall(ctx context.Context, runID string, report domain.RecallReport) error {
	if len(report.Outcomes) == 0 {
		return nil
	}

	_, err := s.pool.CopyFrom(
		ctx,
		pgx.Identifier{"recall_outcomes"},
		recallColumns,
		pgx.CopyFromRows(recallRows(runID, report, time.Now())),
	)
	if err != nil {
		return fmt.Errorf("CopyFrom failed for %d recall outcomes: %w", len(report.Outcomes), err)
	}
	return nil
}
