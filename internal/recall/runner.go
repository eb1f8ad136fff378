package recall

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"fleet-monitor/simulator/internal/auth"
	"fleet-monitor/simulator/internal/backend"
	"fleet-monitor/simulator/internal/domain"
	"fleet-monitor/simulator/internal/log"
)

// Recorder persists a finished report. Recording is best-effort.
type Recorder interface {
	RecordRecall(ctx context.Context, runID string, report domain.RecallReport) error
}

type Runner struct {
	BaseURL     string
	HTTPClient  *http.Client
	Credentials auth.Credentials
	Depot       domain.Position
	Status      domain.Status
	Delay       time.Duration
	Logger      *log.Logger
	RunID       string
	Recorders   []Recorder
}

// Run logs in with the runner's own credentials and recalls the fleet.
func (r *Runner) Run(ctx context.Context) (domain.RecallReport, error) {
	api, err := r.client(ctx)
	if err != nil {
		return domain.RecallReport{}, err
	}

	lg := r.Logger.With(slog.String("run_id", r.RunID))
	report, err := NewDispatcher(api, r.Delay, lg).RecallAll(ctx, r.Depot, r.Status)
	if err != nil && len(report.Outcomes) == 0 {
		return report, err
	}

	for _, rec := range r.Recorders {
		if rerr := rec.RecordRecall(context.WithoutCancel(ctx), r.RunID, report); rerr != nil {
			lg.Warn("failed to record recall report", slog.Any("err", rerr))
		}
	}
	lg.Info("recall finished",
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed),
		slog.Any("failed_plates", report.FailedPlates))
	return report, err
}

// List returns the fleet as seen by the runner's credentials.
func (r *Runner) List(ctx context.Context) ([]domain.VehicleSummary, error) {
	api, err := r.client(ctx)
	if err != nil {
		return nil, err
	}
	return api.ListVehicles(ctx)
}

func (r *Runner) client(ctx context.Context) (*backend.Client, error) {
	sess, err := auth.Login(ctx, backend.NewClient(r.BaseURL, r.HTTPClient), r.Credentials)
	if err != nil {
		return nil, err
	}
	if sess.Expired(time.Now()) {
		r.Logger.Warn("session token already expired", slog.Time("exp", sess.ExpiresAt))
	}
	return sess.Client(r.BaseURL, r.HTTPClient), nil
}
