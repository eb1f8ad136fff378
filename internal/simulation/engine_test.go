package simulation

import (
	"context"
	"errors"
	"math"
	"testing"

	"fleet-monitor/simulator/internal/domain"
	"fleet-monitor/simulator/internal/environment"
	"fleet-monitor/simulator/internal/route"
	"fleet-monitor/simulator/internal/telemetry"
)

var clujBudapest = domain.Route{
	{Name: "Cluj-Napoca, RO", Lat: 46.7712, Lng: 23.5889},
	{Name: "Budapest, HU", Lat: 47.4979, Lng: 19.0402},
}

type pushCall struct {
	vehicleID int64
	pos       domain.Position
	status    domain.Status
}

type fakePusher struct {
	calls []pushCall
	fail  bool
}

func (p *fakePusher) Push(ctx context.Context, vehicleID int64, pos domain.Position, status domain.Status) telemetry.PushResult {
	p.calls = append(p.calls, pushCall{vehicleID, pos, status})
	if p.fail {
		return telemetry.PushResult{LocationErr: errors.New("unreachable"), StatusErr: errors.New("unreachable")}
	}
	return telemetry.PushResult{}
}

type collector struct {
	snaps []domain.Snapshot
}

func (c *collector) Observe(s domain.Snapshot) { c.snaps = append(c.snaps, s) }

func newTestEngine(t *testing.T, r domain.Route, src environment.Source, p Pusher) *Engine {
	t.Helper()
	in, err := route.NewInterpolator(r)
	if err != nil {
		t.Fatal(err)
	}
	return NewEngine(EngineOptions{
		Interpolator: in,
		Environment:  environment.NewModel(src),
		Pusher:       p,
		Pacer:        NoopPacer{},
		RunID:        "run-1",
		Driver:       "Dragos",
		Vehicle:      Vehicle{ID: 7, Plate: "CJ-07-TRK"},
	})
}

func TestTickCount(t *testing.T) {
	for _, r := range []domain.Route{clujBudapest, route.DefaultRoute()} {
		p := &fakePusher{}
		c := &collector{}
		sum, err := newTestEngine(t, r, environment.FixedSource(0.5), p).Run(context.Background(), c)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		want := route.StepsPerLeg * r.Legs()
		if sum.Ticks != want || len(p.calls) != want || len(c.snaps) != want || !sum.Completed {
			t.Errorf("legs=%d: ticks=%d pushes=%d snaps=%d completed=%v, want %d",
				r.Legs(), sum.Ticks, len(p.calls), len(c.snaps), sum.Completed, want)
		}
	}
}

// Never warming: the truck reaches cruise speed, burns 2.5% fuel and holds
// the cargo at the floor.
func TestScenarioNoWarming(t *testing.T) {
	p := &fakePusher{}
	c := &collector{}
	e := newTestEngine(t, clujBudapest, environment.FixedSource(0.99), p)

	if s := e.State(); s.Status != domain.StatusIdle {
		t.Fatalf("initial status = %s", s.Status)
	}

	sum, err := e.Run(context.Background(), c)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	f := sum.Final
	if f.SpeedKmh != 90 {
		t.Errorf("speed = %v", f.SpeedKmh)
	}
	if math.Abs(f.FuelPct-97.5) > 1e-9 {
		t.Errorf("fuel = %v", f.FuelPct)
	}
	if f.CargoTempC != -22.0 {
		t.Errorf("cargo temp = %v", f.CargoTempC)
	}
	if f.Status != domain.StatusOnTrip {
		t.Errorf("status = %s", f.Status)
	}

	start, end := clujBudapest[0], clujBudapest[1]
	want := domain.Position{
		Lat: start.Lat + (end.Lat-start.Lat)*49/50,
		Lng: start.Lng + (end.Lng-start.Lng)*49/50,
	}
	if f.Position != want {
		t.Errorf("final position = %+v, want %+v", f.Position, want)
	}
	if f.Position == end.Position() {
		t.Error("final position reached Budapest exactly")
	}

	last := c.snaps[len(c.snaps)-1]
	if last.LegLabel != "Cluj-Napoca, RO->Budapest, HU" || last.Step != 49 || last.Tick != 49 {
		t.Errorf("last snapshot = %+v", last)
	}
	if last.Plate != "CJ-07-TRK" || last.Driver != "Dragos" || last.RunID != "run-1" {
		t.Errorf("identity fields = %q %q %q", last.Plate, last.Driver, last.RunID)
	}
}

// Always warming: +0.5 °C per tick flips the status once the cargo passes -18.
func TestScenarioAlwaysWarming(t *testing.T) {
	c := &collector{}
	_, err := newTestEngine(t, clujBudapest, environment.FixedSource(0), &fakePusher{}).Run(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}

	after5 := c.snaps[4]
	if after5.CargoTempC != -19.5 || after5.Status != domain.StatusOnTrip {
		t.Errorf("after 5 ticks: temp=%v status=%s", after5.CargoTempC, after5.Status)
	}
	after8 := c.snaps[7]
	if after8.CargoTempC != -18.0 || after8.Status != domain.StatusOnTrip {
		t.Errorf("after 8 ticks: temp=%v status=%s", after8.CargoTempC, after8.Status)
	}
	after9 := c.snaps[8]
	if after9.CargoTempC != -17.5 || after9.Status != domain.StatusMaintenance {
		t.Errorf("after 9 ticks: temp=%v status=%s", after9.CargoTempC, after9.Status)
	}
	if after9.AlertMessage() != "CRITICAL: CARGO TEMP HIGH!" {
		t.Errorf("alert = %q", after9.AlertMessage())
	}
}

func TestTickInvariants(t *testing.T) {
	c := &collector{}
	p := &fakePusher{}
	_, err := newTestEngine(t, route.DefaultRoute(), environment.NewPCGSource(99), p).Run(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}

	prevSpeed, prevFuel := 0.0, 100.0
	for i, s := range c.snaps {
		n := float64(i + 1)
		if s.SpeedKmh < prevSpeed || s.SpeedKmh > 90 {
			t.Fatalf("tick %d: speed %v after %v", i, s.SpeedKmh, prevSpeed)
		}
		if want := math.Min(5*n, 90); s.SpeedKmh != want {
			t.Fatalf("tick %d: speed %v, want %v", i, s.SpeedKmh, want)
		}
		if s.FuelPct > prevFuel || math.Abs(s.FuelPct-(100-0.05*n)) > 1e-9 {
			t.Fatalf("tick %d: fuel %v", i, s.FuelPct)
		}
		if s.CargoTempC < -22.0 {
			t.Fatalf("tick %d: cargo temp %v below floor", i, s.CargoTempC)
		}
		if s.Status != domain.DeriveStatus(s.CargoTempC) {
			t.Fatalf("tick %d: status %s for temp %v", i, s.Status, s.CargoTempC)
		}
		if p.calls[i].pos != s.Position || p.calls[i].status != s.Status || p.calls[i].vehicleID != 7 {
			t.Fatalf("tick %d: pushed %+v, snapshot %+v", i, p.calls[i], s)
		}
		prevSpeed, prevFuel = s.SpeedKmh, s.FuelPct
	}
	if c.snaps[17].SpeedKmh != 90 || c.snaps[16].SpeedKmh != 85 {
		t.Errorf("cruise speed should be reached on tick 18")
	}
}

func TestFuelHasNoFloor(t *testing.T) {
	r := domain.Route{}
	for i := 0; i < 42; i++ {
		r = append(r, domain.Waypoint{Name: "wp", Lat: float64(i) / 10, Lng: 0})
	}
	sum, err := newTestEngine(t, r, environment.FixedSource(0.5), &fakePusher{}).Run(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Ticks != 41*50 {
		t.Fatalf("ticks = %d", sum.Ticks)
	}
	if math.Abs(sum.Final.FuelPct-(100-0.05*41*50)) > 1e-6 || sum.Final.FuelPct >= 0 {
		t.Errorf("fuel = %v", sum.Final.FuelPct)
	}
}

func TestPushFailuresDoNotStopRun(t *testing.T) {
	p := &fakePusher{fail: true}
	sum, err := newTestEngine(t, clujBudapest, environment.FixedSource(0.5), p).Run(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Completed || sum.Ticks != 50 || sum.PushFailures != 50 {
		t.Errorf("summary = %+v", sum)
	}
}

type cancelAfter struct {
	n      int
	cancel context.CancelFunc
	waits  int
}

func (p *cancelAfter) Wait(ctx context.Context) error {
	p.waits++
	if p.waits == p.n {
		p.cancel()
	}
	return ctx.Err()
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := newTestEngine(t, route.DefaultRoute(), environment.FixedSource(0.5), &fakePusher{})
	e.pacer = &cancelAfter{n: 3, cancel: cancel}

	c := &collector{}
	sum, err := e.Run(ctx, c)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if sum.Completed || sum.Ticks != 3 || len(c.snaps) != 3 {
		t.Errorf("summary = %+v, snapshots = %d", sum, len(c.snaps))
	}
	if sum.Final.SpeedKmh != 15 {
		t.Errorf("final speed = %v", sum.Final.SpeedKmh)
	}
}

func TestCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &fakePusher{}
	sum, err := newTestEngine(t, clujBudapest, environment.FixedSource(0.5), p).Run(ctx, nil)
	if !errors.Is(err, context.Canceled) || sum.Ticks != 0 || len(p.calls) != 0 {
		t.Errorf("sum=%+v err=%v pushes=%d", sum, err, len(p.calls))
	}
}
