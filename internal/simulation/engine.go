package simulation

import (
	"context"
	"log/slog"
	"time"

	"fleet-monitor/simulator/internal/domain"
	"fleet-monitor/simulator/internal/environment"
	"fleet-monitor/simulator/internal/log"
	"fleet-monitor/simulator/internal/metrics"
	"fleet-monitor/simulator/internal/route"
	"fleet-monitor/simulator/internal/telemetry"
)

// Pusher delivers one tick's telemetry to the backend.
type Pusher interface {
	Push(ctx context.Context, vehicleID int64, pos domain.Position, status domain.Status) telemetry.PushResult
}

// Sink receives every snapshot the engine emits. Observe must not block for
// long: it runs inside the tick.
type Sink interface {
	Observe(s domain.Snapshot)
}

type SinkFunc func(s domain.Snapshot)

func (f SinkFunc) Observe(s domain.Snapshot) { f(s) }

type Sinks []Sink

func (ss Sinks) Observe(s domain.Snapshot) {
	for _, sink := range ss {
		sink.Observe(s)
	}
}

type Vehicle struct {
	ID    int64
	Plate string
	Brand string
}

type Engine struct {
	interp *route.Interpolator
	env    *environment.Model
	pusher Pusher
	pacer  Pacer
	rules  []domain.AlertRule
	log    *log.Logger
	now    func() time.Time

	runID   string
	driver  string
	vehicle Vehicle

	state domain.VehicleTelemetryState
}

type EngineOptions struct {
	Interpolator *route.Interpolator
	Environment  *environment.Model
	Pusher       Pusher
	Pacer        Pacer
	Rules        []domain.AlertRule
	Logger       *log.Logger

	RunID   string
	Driver  string
	Vehicle Vehicle
}

func NewEngine(opts EngineOptions) *Engine {
	e := &Engine{
		interp:  opts.Interpolator,
		env:     opts.Environment,
		pusher:  opts.Pusher,
		pacer:   opts.Pacer,
		rules:   opts.Rules,
		log:     opts.Logger,
		now:     time.Now,
		runID:   opts.RunID,
		driver:  opts.Driver,
		vehicle: opts.Vehicle,
		state:   domain.NewVehicleTelemetryState(),
	}
	if e.pacer == nil {
		e.pacer = NoopPacer{}
	}
	if e.rules == nil {
		e.rules = domain.DefaultAlertRules
	}
	return e
}

func (e *Engine) State() domain.VehicleTelemetryState {
	return e.state
}

type Summary struct {
	RunID        string
	Ticks        int
	Completed    bool
	PushFailures int
	Final        domain.VehicleTelemetryState
}

// Run drives the vehicle over the whole route, one tick per interpolated
// step. It returns ctx's error when interrupted; the summary is valid
// either way.
func (e *Engine) Run(ctx context.Context, sink Sink) (Summary, error) {
	sum := Summary{RunID: e.runID}
	total := e.interp.Len()

	e.log.Info("simulation started",
		slog.Int64("vehicle_id", e.vehicle.ID),
		slog.String("plate", e.vehicle.Plate),
		slog.Int("ticks", total))

	for st := range e.interp.Steps() {
		if err := ctx.Err(); err != nil {
			return e.finish(sum, err)
		}

		res := e.tick(ctx, st, sum.Ticks, sink)
		sum.Ticks++
		if !res.OK() {
			// Telemetry loss is accepted; the run continues.
			sum.PushFailures++
			e.log.Debug("telemetry push failed", slog.Int("tick", sum.Ticks), slog.Any("err", res.Err()))
		}

		if sum.Ticks < total {
			if err := e.pacer.Wait(ctx); err != nil {
				return e.finish(sum, err)
			}
		}
	}

	sum.Completed = true
	return e.finish(sum, nil)
}

func (e *Engine) finish(sum Summary, err error) (Summary, error) {
	sum.Final = e.state
	e.log.Info("simulation finished",
		slog.Int("ticks", sum.Ticks),
		slog.Bool("completed", sum.Completed),
		slog.Int("push_failures", sum.PushFailures),
		slog.Float64("fuel_pct", e.state.FuelPct),
		slog.Float64("cargo_temp_c", e.state.CargoTempC))
	return sum, err
}

func (e *Engine) tick(ctx context.Context, st route.Step, n int, sink Sink) telemetry.PushResult {
	s := &e.state

	s.SpeedKmh = min(s.SpeedKmh+domain.SpeedStepKmh, domain.TargetSpeedKmh)
	s.FuelPct -= domain.FuelPerTickPct
	s.CargoTempC = e.env.Step(s.CargoTempC)
	s.Status = domain.DeriveStatus(s.CargoTempC)
	s.Position = st.Position

	res := e.pusher.Push(ctx, e.vehicle.ID, s.Position, s.Status)
	metrics.TicksExecuted.Add(1)

	if sink != nil {
		sink.Observe(domain.Snapshot{
			RunID:      e.runID,
			Tick:       n,
			Timestamp:  e.now(),
			VehicleID:  e.vehicle.ID,
			Plate:      e.vehicle.Plate,
			Driver:     e.driver,
			Leg:        st.Leg,
			Step:       st.Step,
			LegLabel:   e.interp.Route().LegLabel(st.Leg),
			Position:   s.Position,
			SpeedKmh:   s.SpeedKmh,
			FuelPct:    s.FuelPct,
			CargoTempC: s.CargoTempC,
			Status:     s.Status,
			Alerts:     domain.EvaluateAlerts(e.rules, s),
		})
	}
	return res
}
