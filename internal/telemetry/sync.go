package telemetry

import (
	"context"
	"errors"

	"fleet-monitor/simulator/internal/backend"
	"fleet-monitor/simulator/internal/domain"
	"fleet-monitor/simulator/internal/metrics"
)

// PushResult reports the outcome of both calls of one push. The caller
// decides whether to act on it.
type PushResult struct {
	LocationErr error
	StatusErr   error
}

func (r PushResult) OK() bool {
	return r.LocationErr == nil && r.StatusErr == nil
}

func (r PushResult) Err() error {
	return errors.Join(r.LocationErr, r.StatusErr)
}

// SyncClient pushes position and status to the backend once per tick.
// There is no retry, backoff or queueing.
type SyncClient struct {
	api *backend.Client
}

func NewSyncClient(api *backend.Client) *SyncClient {
	return &SyncClient{api: api}
}

// Push issues the location and status updates independently; a failed
// location update does not skip the status update. Cancelling ctx does not
// abort calls already started.
func (c *SyncClient) Push(ctx context.Context, vehicleID int64, pos domain.Position, status domain.Status) PushResult {
	ctx = context.WithoutCancel(ctx)

	var res PushResult
	res.LocationErr = c.api.UpdateLocation(ctx, vehicleID, pos)
	res.StatusErr = c.api.UpdateVehicle(ctx, vehicleID, backend.VehicleUpdate{Status: string(status)})

	if res.LocationErr != nil {
		metrics.PushLocationFailures.Add(1)
	}
	if res.StatusErr != nil {
		metrics.PushStatusFailures.Add(1)
	}
	if res.OK() {
		metrics.PushSuccess.Add(1)
	}
	return res
}
