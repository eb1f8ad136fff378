package route

import (
	"errors"
	"math/rand/v2"
	"testing"

	"fleet-monitor/simulator/internal/domain"
)

var clujBudapest = domain.Route{
	{Name: "Cluj-Napoca, RO", Lat: 46.7712, Lng: 23.5889},
	{Name: "Budapest, HU", Lat: 47.4979, Lng: 19.0402},
}

func TestNewInterpolatorRejectsShortRoutes(t *testing.T) {
	for _, r := range []domain.Route{nil, {}, clujBudapest[:1]} {
		if _, err := NewInterpolator(r); !errors.Is(err, ErrTooFewWaypoints) {
			t.Errorf("NewInterpolator(%d waypoints) err = %v", len(r), err)
		}
	}
}

func TestLen(t *testing.T) {
	in, err := NewInterpolator(DefaultRoute())
	if err != nil {
		t.Fatal(err)
	}
	if in.Len() != 5*StepsPerLeg {
		t.Errorf("Len() = %d, want %d", in.Len(), 5*StepsPerLeg)
	}

	n := 0
	for range in.Steps() {
		n++
	}
	if n != in.Len() {
		t.Errorf("Steps yielded %d, want %d", n, in.Len())
	}
}

func TestPositionFormula(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		start := domain.Waypoint{Name: "a", Lat: rng.Float64()*180 - 90, Lng: rng.Float64()*360 - 180}
		end := domain.Waypoint{Name: "b", Lat: rng.Float64()*180 - 90, Lng: rng.Float64()*360 - 180}
		s := rng.IntN(StepsPerLeg)

		in, err := NewInterpolator(domain.Route{start, end})
		if err != nil {
			t.Fatal(err)
		}
		got := in.Position(0, s)
		wantLat := start.Lat + (end.Lat-start.Lat)*float64(s)/float64(StepsPerLeg)
		wantLng := start.Lng + (end.Lng-start.Lng)*float64(s)/float64(StepsPerLeg)
		if got.Lat != wantLat || got.Lng != wantLng {
			t.Fatalf("Position(0, %d) = %+v, want %v,%v", s, got, wantLat, wantLng)
		}
	}
}

func TestStepsAreHalfOpen(t *testing.T) {
	in, _ := NewInterpolator(DefaultRoute())
	last := DefaultRoute()[len(DefaultRoute())-1]

	var prev Step
	first := true
	for st := range in.Steps() {
		if st.Position == last.Position() {
			t.Fatalf("final waypoint emitted at leg %d step %d", st.Leg, st.Step)
		}
		if st.Step == 0 && st.Position != in.Route()[st.Leg].Position() {
			t.Errorf("leg %d does not start at its waypoint", st.Leg)
		}
		if !first && st.Leg == prev.Leg && st.Step != prev.Step+1 {
			t.Errorf("steps out of order: %+v after %+v", st, prev)
		}
		prev, first = st, false
	}
	if prev.Leg != 4 || prev.Step != StepsPerLeg-1 {
		t.Errorf("last step = %+v", prev)
	}
}

func TestStepsRestartAndStopEarly(t *testing.T) {
	in, _ := NewInterpolator(clujBudapest)

	n := 0
	for range in.Steps() {
		n++
		if n == 10 {
			break
		}
	}
	if n != 10 {
		t.Fatalf("early break yielded %d", n)
	}

	for st := range in.Steps() {
		if st.Leg != 0 || st.Step != 0 {
			t.Errorf("restart began at %+v", st)
		}
		break
	}
}

func TestInterpolatorCopiesRoute(t *testing.T) {
	r := append(domain.Route(nil), clujBudapest...)
	in, _ := NewInterpolator(r)
	r[0].Lat = 0
	if in.Position(0, 0).Lat != 46.7712 {
		t.Error("interpolator shares the caller's route")
	}
}
