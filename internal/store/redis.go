package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fleet-monitor/simulator/internal/config"
	"fleet-monitor/simulator/internal/domain"
)

const (
	geoKey           = "fleet:sim:geo"
	telemetryChannel = "fleet:sim:telemetry"
	alertChannel     = "fleet:sim:alerts"
	recallKey        = "fleet:recall:last"
	recallChannel    = "fleet:recall"
	stateTTL         = 30 * time.Second
	alertDedupTTL    = 5 * time.Minute
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     4,
		MinIdleConns: 1,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func vehicleStateKey(vehicleID int64) string {
	return fmt.Sprintf("vehicle:%d:state", vehicleID)
}

func alertDedupKey(vehicleID int64, t domain.AlertType) string {
	return fmt.Sprintf("alert:%d:%s", vehicleID, string(t))
}

func stateFields(s *domain.Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"run_id":       s.RunID,
		"vehicle_id":   s.VehicleID,
		"plate":        s.Plate,
		"driver":       s.Driver,
		"leg":          s.LegLabel,
		"lat":          s.Position.Lat,
		"lng":          s.Position.Lng,
		"speed_kmh":    s.SpeedKmh,
		"fuel_pct":     s.FuelPct,
		"cargo_temp_c": s.CargoTempC,
		"status":       string(s.Status),
		"tick":         s.Tick,
		"timestamp":    s.Timestamp.Unix(),
	}
}

// PipelineStateUpdate mirrors one snapshot: state hash, GEO position and a
// pub/sub message, sent in a single round trip.
func (r *RedisStore) PipelineStateUpdate(ctx context.Context, s *domain.Snapshot) error {
	pubPayload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	key := vehicleStateKey(s.VehicleID)
	pipe := r.client.Pipeline()

	pipe.HSet(ctx, key, stateFields(s))
	pipe.Expire(ctx, key, stateTTL)
	pipe.GeoAdd(ctx, geoKey, &redis.GeoLocation{
		Name:      s.Plate,
		Longitude: s.Position.Lng,
		Latitude:  s.Position.Lat,
	})
	pipe.Publish(ctx, telemetryChannel, pubPayload)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline failed: %w", err)
	}
	return nil
}

func (r *RedisStore) CheckAlertDedup(ctx context.Context, vehicleID int64, t domain.AlertType) (bool, error) {
	count, err := r.client.Exists(ctx, alertDedupKey(vehicleID, t)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check failed: %w", err)
	}
	return count > 0, nil
}

func (r *RedisStore) SetAlertDedup(ctx context.Context, vehicleID int64, t domain.AlertType) error {
	return r.client.Set(ctx, alertDedupKey(vehicleID, t), "1", alertDedupTTL).Err()
}

func (r *RedisStore) PublishAlert(ctx context.Context, payload []byte) error {
	return r.client.Publish(ctx, alertChannel, payload).Err()
}

// RecordRecall stores the last recall report and announces it.
func (r *RedisStore) RecordRecall(ctx context.Context, runID string, report domain.RecallReport) error {
	payload, err := json.Marshal(struct {
		RunID string `json:"run_id"`
		domain.RecallReport
	}{runID, report})
	if err != nil {
		return fmt.Errorf("failed to marshal recall report: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, recallKey, payload, 0)
	pipe.Publish(ctx, recallChannel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline failed: %w", err)
	}
	return nil
}
