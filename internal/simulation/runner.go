package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"fleet-monitor/simulator/internal/auth"
	"fleet-monitor/simulator/internal/backend"
	"fleet-monitor/simulator/internal/domain"
	"fleet-monitor/simulator/internal/environment"
	"fleet-monitor/simulator/internal/log"
	"fleet-monitor/simulator/internal/route"
	"fleet-monitor/simulator/internal/telemetry"
)

var (
	ErrIdentityLookup    = errors.New("vehicle identity lookup failed")
	ErrNoVehicleAssigned = errors.New("no vehicle assigned to driver")
)

// Runner wires a simulation run against a live backend: login, identity
// lookup, then the tick loop. Both setup steps are fatal.
type Runner struct {
	BaseURL     string
	HTTPClient  *http.Client
	Credentials auth.Credentials
	Route       domain.Route
	Source      environment.Source
	Pacer       Pacer
	Logger      *log.Logger
	RunID       string
}

func (r *Runner) Run(ctx context.Context, sink Sink) (Summary, error) {
	interp, err := route.NewInterpolator(r.Route)
	if err != nil {
		return Summary{RunID: r.RunID}, err
	}

	api, sess, err := r.login(ctx)
	if err != nil {
		return Summary{RunID: r.RunID}, err
	}

	v, err := LookupVehicle(ctx, api)
	if err != nil {
		return Summary{RunID: r.RunID}, err
	}

	lg := r.Logger.With(slog.String("run_id", r.RunID), slog.String("driver", sess.Username))
	engine := NewEngine(EngineOptions{
		Interpolator: interp,
		Environment:  environment.NewModel(r.Source),
		Pusher:       telemetry.NewSyncClient(api),
		Pacer:        r.Pacer,
		Logger:       lg,
		RunID:        r.RunID,
		Driver:       sess.Username,
		Vehicle:      v,
	})
	return engine.Run(ctx, sink)
}

// ReportIncident flags the driver's own vehicle as MAINTENANCE.
func (r *Runner) ReportIncident(ctx context.Context) (Vehicle, error) {
	api, _, err := r.login(ctx)
	if err != nil {
		return Vehicle{}, err
	}
	v, err := LookupVehicle(ctx, api)
	if err != nil {
		return Vehicle{}, err
	}

	upd := backend.VehicleUpdate{
		Plate:  v.Plate,
		Brand:  v.Brand,
		Type:   "Truck",
		Status: string(domain.StatusMaintenance),
	}
	if err := api.UpdateVehicle(ctx, v.ID, upd); err != nil {
		return v, fmt.Errorf("incident report for %s: %w", v.Plate, err)
	}
	r.Logger.Info("incident reported", slog.String("run_id", r.RunID), slog.String("plate", v.Plate))
	return v, nil
}

func (r *Runner) login(ctx context.Context) (*backend.Client, *auth.Session, error) {
	sess, err := auth.Login(ctx, backend.NewClient(r.BaseURL, r.HTTPClient), r.Credentials)
	if err != nil {
		return nil, nil, err
	}
	if sess.Expired(time.Now()) {
		r.Logger.Warn("session token already expired", slog.Time("exp", sess.ExpiresAt))
	}
	r.Logger.Info("logged in",
		slog.String("run_id", r.RunID),
		slog.String("username", sess.Username),
		slog.String("subject", sess.Subject))
	return sess.Client(r.BaseURL, r.HTTPClient), sess, nil
}

// LookupVehicle resolves the vehicle assigned to the authenticated driver.
func LookupVehicle(ctx context.Context, api *backend.Client) (Vehicle, error) {
	me, err := api.Me(ctx)
	if err != nil {
		return Vehicle{}, fmt.Errorf("%w: %w", ErrIdentityLookup, err)
	}
	if me.VehicleID == nil {
		return Vehicle{}, fmt.Errorf("%w: %w", ErrIdentityLookup, ErrNoVehicleAssigned)
	}
	return Vehicle{ID: *me.VehicleID, Plate: me.VehiclePlate, Brand: me.VehicleBrand}, nil
}
