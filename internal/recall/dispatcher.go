package recall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fleet-monitor/simulator/internal/backend"
	"fleet-monitor/simulator/internal/domain"
	"fleet-monitor/simulator/internal/log"
	"fleet-monitor/simulator/internal/metrics"
)

var ErrFleetList = errors.New("fleet listing failed")

const (
	DefaultStatus = domain.StatusAvailable
	DefaultDelay  = 100 * time.Millisecond
)

// Fleet is the subset of the backend API the dispatcher needs.
type Fleet interface {
	ListVehicles(ctx context.Context) ([]domain.VehicleSummary, error)
	UpdateLocation(ctx context.Context, vehicleID int64, pos domain.Position) error
	UpdateVehicle(ctx context.Context, vehicleID int64, upd backend.VehicleUpdate) error
}

// Dispatcher returns every vehicle of the fleet to the depot, one vehicle at
// a time.
type Dispatcher struct {
	fleet Fleet
	delay time.Duration
	sleep func(ctx context.Context, d time.Duration) error
	log   *log.Logger
}

func NewDispatcher(fleet Fleet, delay time.Duration, lg *log.Logger) *Dispatcher {
	return &Dispatcher{
		fleet: fleet,
		delay: delay,
		sleep: sleepContext,
		log:   lg,
	}
}

// RecallAll lists the fleet once and then, per vehicle, resets its position
// to depot and rewrites its record with status. A vehicle counts as recalled
// when the position reset succeeds; the record update's outcome is logged
// but does not affect the result. Cancelling ctx stops the batch between
// vehicles; calls already under way for a vehicle run to completion.
func (d *Dispatcher) RecallAll(ctx context.Context, depot domain.Position, status domain.Status) (domain.RecallReport, error) {
	if status == "" {
		status = DefaultStatus
	}

	vehicles, err := d.fleet.ListVehicles(ctx)
	if err != nil {
		return domain.RecallReport{}, fmt.Errorf("%w: %w", ErrFleetList, err)
	}
	d.log.Info("recalling fleet", slog.Int("vehicles", len(vehicles)),
		slog.Float64("depot_lat", depot.Lat), slog.Float64("depot_lng", depot.Lng))

	outcomes := make([]domain.RecallOutcome, 0, len(vehicles))
	for i, v := range vehicles {
		if err := ctx.Err(); err != nil {
			return domain.NewRecallReport(depot, outcomes), err
		}

		outcomes = append(outcomes, d.recallOne(ctx, v, depot, status))

		if i < len(vehicles)-1 && d.delay > 0 {
			if err := d.sleep(ctx, d.delay); err != nil {
				return domain.NewRecallReport(depot, outcomes), err
			}
		}
	}

	return domain.NewRecallReport(depot, outcomes), ctx.Err()
}

func (d *Dispatcher) recallOne(ctx context.Context, v domain.VehicleSummary, depot domain.Position, status domain.Status) domain.RecallOutcome {
	out := domain.RecallOutcome{VehicleID: v.ID, Plate: v.Plate}
	ctx = context.WithoutCancel(ctx)

	out.Err = d.fleet.UpdateLocation(ctx, v.ID, depot)

	upd := backend.VehicleUpdate{
		Plate:  v.Plate,
		Brand:  v.Brand,
		Type:   v.Type,
		Status: string(status),
	}
	if err := d.fleet.UpdateVehicle(ctx, v.ID, upd); err != nil {
		d.log.Warn("status update failed", slog.String("plate", v.Plate), slog.Any("err", err))
	}

	out.Succeeded = out.Err == nil
	if out.Succeeded {
		metrics.RecallSucceeded.Add(1)
		d.log.Info("vehicle returned to depot", slog.String("plate", v.Plate), slog.String("brand", v.Brand))
	} else {
		metrics.RecallFailed.Add(1)
		d.log.Warn("failed to move vehicle", slog.String("plate", v.Plate), slog.Any("err", out.Err))
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ActiveVehicles filters a listing down to vehicles currently on the road.
func ActiveVehicles(vs []domain.VehicleSummary) []domain.VehicleSummary {
	var out []domain.VehicleSummary
	for _, v := range vs {
		if v.Status == string(domain.StatusOnTrip) || v.Status == string(domain.StatusActive) {
			out = append(out, v)
		}
	}
	return out
}
